package cardview

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/chartcard/internal/canvas"
	"github.com/verte-zerg/chartcard/internal/chart"
	"github.com/verte-zerg/chartcard/internal/model"
)

const (
	// PlotLeft and PlotRight are the cell gutters around the plot.
	PlotLeft  = 2
	PlotRight = 2
	// PixelsPerRow maps the configured pixel chart height onto terminal rows.
	PixelsPerRow = 20

	minRows         = 3
	marginDots      = 4
	tooltipLiftDots = 4
	fallbackCols    = 80
)

const (
	layerHighlight = iota
	layerSeries
)

type cellClass int

const (
	classNone cellClass = iota
	classSeries
	classHighlight
	classTooltip
)

type cell struct {
	s     string
	class cellClass
}

// Layout returns a dot-unit layout for a plot that is rows cells tall. Widths are measured
// from the full terminal width via ContainerWidth.
func Layout(rows int) chart.Layout {
	if rows < minRows {
		rows = minRows
	}
	return chart.Layout{
		ChartHeight:   float64(rows * 4),
		Inset:         1,
		Padding:       float64(2*(PlotLeft+PlotRight) + 1),
		Margin:        marginDots,
		FallbackWidth: float64(2*(fallbackCols-PlotLeft-PlotRight) - 1),
	}
}

// ContainerWidth converts a terminal width in cells to dots.
func ContainerWidth(cols int) float64 {
	return float64(cols * 2)
}

// RowsForHeight maps a pixel chart height to plot rows.
func RowsForHeight(px int) int {
	rows := int(math.Round(float64(px) / PixelsPerRow))
	if rows < minRows {
		return minRows
	}
	return rows
}

// MeasureTooltip returns the width in dots of a padded tooltip line.
func MeasureTooltip(text string) float64 {
	return float64((runewidth.StringWidth(text) + 2) * 2)
}

// Options returns chart options wired for terminal rendering.
func Options(cfg model.CardConfig, kind chart.Kind) chart.Options {
	return chart.Options{
		Title:          cfg.Title,
		Description:    cfg.Description,
		Kind:           kind,
		Color:          cfg.Color,
		Layout:         Layout(RowsForHeight(cfg.ChartHeight)),
		Period:         cfg.Period,
		MeasureTooltip: MeasureTooltip,
		TooltipLift:    tooltipLiftDots,
	}
}

// PlotSize returns the plot size in cells for scene dimensions in dots.
func PlotSize(dims model.Dimensions) (cols, rows int) {
	cols = int(math.Floor(dims.Width/2)) + 1
	rows = int(math.Floor(dims.Height/4)) + 1
	return cols, rows
}

// Render draws the whole card: header, plot and axis labels.
func Render(s chart.Scene, st Styles, useColor bool) string {
	lines := []string{Header(s, st, useColor)}
	gutter := strings.Repeat(" ", PlotLeft)
	for _, row := range Plot(s, st, useColor) {
		lines = append(lines, gutter+row)
	}
	labels := Labels(s)
	if useColor {
		labels = st.Label.Render(labels)
	}
	lines = append(lines, gutter+labels)
	return strings.Join(lines, "\n")
}

// Header renders the title, optional description and the period switch.
func Header(s chart.Scene, st Styles, useColor bool) string {
	title := s.Title
	desc := s.Description
	if useColor {
		title = st.Title.Render(title)
		if desc != "" {
			desc = st.Description.Render(desc)
		}
	}
	lines := []string{title}
	if desc != "" {
		lines = append(lines, desc)
	}
	lines = append(lines, periodSwitch(s.Period, st, useColor))
	gutter := strings.Repeat(" ", PlotLeft)
	for i := range lines {
		lines[i] = gutter + lines[i]
	}
	return strings.Join(lines, "\n")
}

func periodSwitch(active model.Period, st Styles, useColor bool) string {
	parts := make([]string, 0, 3)
	for _, p := range model.Periods() {
		label := p.Title()
		switch {
		case useColor && p == active:
			parts = append(parts, st.ActivePeriod.Render(" "+label+" "))
		case useColor:
			parts = append(parts, st.InactivePeriod.Render(" "+label+" "))
		case p == active:
			parts = append(parts, "["+label+"]")
		default:
			parts = append(parts, " "+label+" ")
		}
	}
	return strings.Join(parts, " ")
}

// Plot draws the scene's elements and tooltip; each returned row is exactly as wide as
// the plot in cells.
func Plot(s chart.Scene, st Styles, useColor bool) []string {
	cols, rows := PlotSize(s.Dims)
	cv := canvas.New(cols, rows, 2)
	switch s.Kind {
	case chart.KindBar:
		drawBars(cv, s)
	default:
		drawLine(cv, s)
	}

	grid := make([][]cell, rows)
	for y := 0; y < rows; y++ {
		grid[y] = make([]cell, cols)
		for x := 0; x < cols; x++ {
			r, layer := cv.Cell(x, y)
			c := cell{s: string(r)}
			switch layer {
			case layerHighlight:
				c.class = classHighlight
			case layerSeries:
				c.class = classSeries
			}
			grid[y][x] = c
		}
	}
	if s.Tooltip != nil && rows > 0 {
		row := int(s.Tooltip.Y / 4)
		if row >= rows {
			row = rows - 1
		}
		col := int(s.Tooltip.X / 2)
		placeText(grid[row], col, " "+s.Tooltip.Text+" ", classTooltip)
	}

	out := make([]string, rows)
	for y, row := range grid {
		out[y] = renderRow(row, st, useColor)
	}
	return out
}

func drawLine(cv *canvas.Canvas, s chart.Scene) {
	for i, p := range s.Points {
		x, y := canvas.Round(p.X), canvas.Round(p.Y)
		if i == 0 {
			cv.Set(layerSeries, x, y)
		} else {
			prev := s.Points[i-1]
			cv.Line(layerSeries, canvas.Round(prev.X), canvas.Round(prev.Y), x, y)
		}
		if i == s.Hovered {
			cv.FillRect(layerHighlight, x-1, y-1, x+1, y+1)
		}
	}
}

func drawBars(cv *canvas.Canvas, s chart.Scene) {
	bottom := canvas.Round(s.Dims.Height)
	for i, b := range s.Bars {
		layer := layerSeries
		if i == s.Hovered {
			layer = layerHighlight
		}
		x0 := canvas.Round(b.X)
		x1 := canvas.Round(b.X+b.Width) - 1
		if x1 < x0 {
			x1 = x0
		}
		cv.FillRect(layer, x0, canvas.Round(b.Y), x1, bottom)
	}
}

// Labels lays out axis labels under their elements, skipping labels that would overlap.
func Labels(s chart.Scene) string {
	cols, _ := PlotSize(s.Dims)
	row := make([]cell, cols)
	for i := range row {
		row[i] = cell{s: " "}
	}
	if len(s.Labels) == 0 {
		return strings.Repeat(" ", cols)
	}
	maxWidth := cols/len(s.Labels) - 1
	if maxWidth < 1 {
		maxWidth = 1
	}
	next := 0
	for _, l := range s.Labels {
		text := runewidth.Truncate(l.Text, maxWidth, "")
		w := runewidth.StringWidth(text)
		if w == 0 {
			continue
		}
		start := canvas.Round(l.X/2) - w/2
		if start > cols-w {
			start = cols - w
		}
		if start < 0 {
			start = 0
		}
		if start < next {
			continue
		}
		placeText(row, start, text, classNone)
		next = start + w + 1
	}
	var b strings.Builder
	for _, c := range row {
		b.WriteString(c.s)
	}
	return b.String()
}

// placeText writes text into row starting at col, truncated to fit. Wide runes occupy
// their cell plus empty continuation cells.
func placeText(row []cell, col int, text string, class cellClass) {
	if col < 0 {
		col = 0
	}
	if col >= len(row) {
		return
	}
	text = runewidth.Truncate(text, len(row)-col, "")
	pos := col
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if pos+rw > len(row) {
			break
		}
		row[pos] = cell{s: string(r), class: class}
		for k := 1; k < rw; k++ {
			row[pos+k] = cell{class: class}
		}
		pos += rw
	}
}

func renderRow(row []cell, st Styles, useColor bool) string {
	var b strings.Builder
	var run strings.Builder
	current := classNone
	flush := func() {
		if run.Len() == 0 {
			return
		}
		b.WriteString(styleFor(current, st, useColor, run.String()))
		run.Reset()
	}
	for _, c := range row {
		if c.class != current {
			flush()
			current = c.class
		}
		run.WriteString(c.s)
	}
	flush()
	return b.String()
}

func styleFor(class cellClass, st Styles, useColor bool, s string) string {
	if !useColor {
		return s
	}
	switch class {
	case classSeries:
		return st.Series.Render(s)
	case classHighlight:
		return st.Highlight.Render(s)
	case classTooltip:
		return st.Tooltip.Render(s)
	default:
		return s
	}
}
