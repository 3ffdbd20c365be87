package chart

import (
	"math"

	"github.com/verte-zerg/chartcard/internal/model"
)

const (
	// FallbackWidth is the pixel width used before the container has been measured.
	FallbackWidth = 300.0

	pixelPadding = 48.0
	pixelInset   = 20.0
)

// Layout derives plot dimensions from the measured container.
type Layout struct {
	ChartHeight   float64
	Inset         float64
	Padding       float64
	Margin        float64
	FallbackWidth float64

	containerWidth float64
	measured       bool
}

// PixelLayout returns the reference sizing for pixel surfaces.
func PixelLayout(chartHeight float64) Layout {
	return Layout{
		ChartHeight:   chartHeight,
		Inset:         pixelInset,
		Padding:       pixelPadding,
		Margin:        DefaultMargin,
		FallbackWidth: FallbackWidth,
	}
}

// Measure records the container's current content width. Zero or negative widths are
// treated as not yet measured.
func (l *Layout) Measure(containerWidth float64) {
	if containerWidth <= 0 || math.IsNaN(containerWidth) {
		l.measured = false
		l.containerWidth = 0
		return
	}
	l.measured = true
	l.containerWidth = containerWidth
}

// Measured reports whether a real container width is known.
func (l Layout) Measured() bool {
	return l.measured
}

// Dimensions returns the plot size for the last measurement. The fallback width applies
// only until a container has been measured; a container narrower than the padding gets a
// zero-width plot.
func (l Layout) Dimensions() model.Dimensions {
	width := l.FallbackWidth
	if l.measured {
		width = l.containerWidth - l.Padding
	}
	height := l.ChartHeight - l.Inset
	if height < 0 {
		height = 0
	}
	return model.Dimensions{Width: nonNegative(width), Height: nonNegative(height)}
}
