// Package chart maps labeled datasets onto line and bar chart geometry.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/chartcard/internal/model"
)

// Kind selects how a dataset is drawn.
type Kind string

const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

const (
	// DefaultMargin keeps the tallest element off the top edge of the plot.
	DefaultMargin = 40.0
	// DefaultTooltipWidth is used when the surface cannot measure its tooltip.
	DefaultTooltipWidth = 80.0
	// DefaultTooltipLift is the distance between the anchor and the tooltip top.
	DefaultTooltipLift = 40.0

	barFill = 0.8
)

// ParseKind parses "line" or "bar". An empty string means line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "line":
		return KindLine, nil
	case "bar":
		return KindBar, nil
	default:
		return KindLine, fmt.Errorf("unknown chart type %q (use line or bar)", s)
	}
}

// Point is a position inside the plot area.
type Point struct {
	X float64
	Y float64
}

// Bar is a rectangle inside the plot area; Y is its top edge.
type Bar struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Geometry holds a sanitized dataset scaled into fixed dimensions.
type Geometry struct {
	dims     model.Dimensions
	margin   float64
	values   []float64
	maxValue float64
}

// NewGeometry prepares points for plotting. Negative or non-finite values plot as zero and
// an all-zero dataset scales against 1.
func NewGeometry(points []model.DataPoint, dims model.Dimensions, margin float64) Geometry {
	g := Geometry{
		dims: model.Dimensions{
			Width:  nonNegative(dims.Width),
			Height: nonNegative(dims.Height),
		},
		margin: nonNegative(margin),
		values: make([]float64, len(points)),
	}
	for i, p := range points {
		v := nonNegative(p.Value)
		g.values[i] = v
		if v > g.maxValue {
			g.maxValue = v
		}
	}
	if g.maxValue <= 0 {
		g.maxValue = 1
	}
	return g
}

// Len returns the number of plotted elements.
func (g Geometry) Len() int {
	return len(g.values)
}

// Dimensions returns the sanitized plot size.
func (g Geometry) Dimensions() model.Dimensions {
	return g.dims
}

// MaxValue returns the scaling reference, never below 1 for all-zero data.
func (g Geometry) MaxValue() float64 {
	return g.maxValue
}

func (g Geometry) usableHeight() float64 {
	u := g.dims.Height - g.margin
	if u < 0 {
		return 0
	}
	return u
}

func (g Geometry) scaled(i int) float64 {
	return g.values[i] / g.maxValue * g.usableHeight()
}

// LinePoint returns the position of point i for a line chart.
func (g Geometry) LinePoint(i int) Point {
	n := len(g.values)
	if i < 0 || i >= n {
		return Point{}
	}
	x := g.dims.Width / 2
	if n > 1 {
		x = g.dims.Width * float64(i) / float64(n-1)
	}
	if x > g.dims.Width {
		x = g.dims.Width
	}
	return Point{X: x, Y: g.dims.Height - g.scaled(i)}
}

// LinePoints returns every line chart point in dataset order.
func (g Geometry) LinePoints() []Point {
	out := make([]Point, len(g.values))
	for i := range g.values {
		out[i] = g.LinePoint(i)
	}
	return out
}

func (g Geometry) slotWidth() float64 {
	if len(g.values) == 0 {
		return 0
	}
	return g.dims.Width / float64(len(g.values))
}

// Bar returns the rectangle of bar i.
func (g Geometry) Bar(i int) Bar {
	if i < 0 || i >= len(g.values) {
		return Bar{}
	}
	slot := g.slotWidth()
	width := slot * barFill
	height := g.scaled(i)
	return Bar{
		X:      slot*float64(i) + (slot-width)/2,
		Y:      g.dims.Height - height,
		Width:  width,
		Height: height,
	}
}

// Bars returns every bar in dataset order.
func (g Geometry) Bars() []Bar {
	out := make([]Bar, len(g.values))
	for i := range g.values {
		out[i] = g.Bar(i)
	}
	return out
}

// SlotCenter returns the horizontal center of element i: the point itself for a line
// chart and the middle of the bar slot for a bar chart.
func (g Geometry) SlotCenter(kind Kind, i int) float64 {
	if kind == KindBar {
		return g.slotWidth() * (float64(i) + 0.5)
	}
	return g.LinePoint(i).X
}

// Anchor returns the point a tooltip for element i points at.
func (g Geometry) Anchor(kind Kind, i int) Point {
	if kind == KindBar {
		b := g.Bar(i)
		return Point{X: b.X + b.Width/2, Y: b.Y}
	}
	return g.LinePoint(i)
}

// Tooltip returns the top-left corner of a tooltip box for element i, centered above the
// anchor and clamped so it stays inside the plot horizontally and below the top edge.
func (g Geometry) Tooltip(kind Kind, i int, tooltipWidth, lift float64) Point {
	a := g.Anchor(kind, i)
	x := a.X - tooltipWidth/2
	y := a.Y - lift
	maxX := g.dims.Width - tooltipWidth
	if maxX < 0 {
		maxX = 0
	}
	if x > maxX {
		x = maxX
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return Point{X: x, Y: y}
}

// HitTest maps a pointer position to an element index, or -1 when it is outside the plot.
func (g Geometry) HitTest(kind Kind, x, y float64) int {
	n := len(g.values)
	if n == 0 || math.IsNaN(x) || math.IsNaN(y) {
		return -1
	}
	if x < 0 || x > g.dims.Width || y < 0 || y > g.dims.Height {
		return -1
	}
	if kind == KindBar {
		slot := g.slotWidth()
		if slot <= 0 {
			return 0
		}
		idx := int(x / slot)
		if idx >= n {
			idx = n - 1
		}
		return idx
	}
	if n == 1 || g.dims.Width <= 0 {
		return 0
	}
	idx := int(math.Round(x * float64(n-1) / g.dims.Width))
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
