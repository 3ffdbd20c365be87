package chart

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/chartcard/internal/model"
)

// DefaultColor is the theme primary used when no series color is configured.
const DefaultColor = "#7C5CFF"

// Options configure a Card.
type Options struct {
	Title       string
	Description string
	Kind        Kind
	Color       string
	Layout      Layout
	Period      model.Period

	// MeasureTooltip returns the rendered width of a tooltip text in plot units.
	// When nil every tooltip is DefaultTooltipWidth wide.
	MeasureTooltip func(text string) float64
	// TooltipLift overrides DefaultTooltipLift when positive.
	TooltipLift float64
}

// Label is an axis label placed under element X.
type Label struct {
	Text string
	X    float64
}

// Tooltip is a positioned tooltip box.
type Tooltip struct {
	Text   string
	X      float64
	Y      float64
	Width  float64
	Anchor Point
}

// Scene is everything a renderer needs to draw the card once.
type Scene struct {
	Title       string
	Description string
	Kind        Kind
	Color       string
	Period      model.Period
	Dims        model.Dimensions
	Margin      float64
	Points      []Point
	Bars        []Bar
	Labels      []Label
	Values      []model.DataPoint
	Hovered     int
	Tooltip     *Tooltip
}

// Card is a chart with a period switch, container-driven layout and hover state.
// It is not safe for concurrent use; all calls are expected from one event loop.
type Card struct {
	opts     Options
	selector *Selector
	layout   Layout
	hover    Hover
	points   []model.DataPoint
	geom     Geometry
}

// NewCard builds a card over ds starting at opts.Period.
func NewCard(opts Options, ds Datasets) *Card {
	if opts.Kind == "" {
		opts.Kind = KindLine
	}
	if opts.Color == "" {
		opts.Color = DefaultColor
	}
	c := &Card{
		opts:     opts,
		selector: NewSelector(ds, opts.Period),
		layout:   opts.Layout,
	}
	c.points = c.selector.Points()
	c.recompute()
	return c
}

// Period returns the active period.
func (c *Card) Period() model.Period {
	return c.selector.Period()
}

// Kind returns the chart kind.
func (c *Card) Kind() Kind {
	return c.opts.Kind
}

// SelectPeriod switches datasets, clears hover and re-measures.
func (c *Card) SelectPeriod(p model.Period) {
	c.points = c.selector.Select(p)
	c.hover.Clear()
	if c.layout.Measured() {
		c.layout.Measure(c.layout.containerWidth)
	}
	c.recompute()
}

// SetDatasets swaps all series, keeping the active period.
func (c *Card) SetDatasets(ds Datasets) {
	c.selector.SetDatasets(ds)
	c.points = c.selector.Points()
	c.hover.Clear()
	c.recompute()
}

// SetKind switches between line and bar drawing.
func (c *Card) SetKind(k Kind) {
	if k != KindLine && k != KindBar {
		return
	}
	c.opts.Kind = k
}

// ToggleKind flips between line and bar.
func (c *Card) ToggleKind() {
	if c.opts.Kind == KindBar {
		c.opts.Kind = KindLine
		return
	}
	c.opts.Kind = KindBar
}

// SetTitle replaces the card title.
func (c *Card) SetTitle(title string) {
	c.opts.Title = title
}

// SetChartHeight replaces the configured total chart height.
func (c *Card) SetChartHeight(h float64) {
	c.layout.ChartHeight = h
	c.recompute()
}

// Resize records a new container width.
func (c *Card) Resize(containerWidth float64) {
	c.layout.Measure(containerWidth)
	c.recompute()
}

// Dimensions returns the current plot size.
func (c *Card) Dimensions() model.Dimensions {
	return c.geom.Dimensions()
}

// Points returns a copy of the active dataset.
func (c *Card) Points() []model.DataPoint {
	return clonePoints(c.points)
}

// Geometry returns the current geometry.
func (c *Card) Geometry() Geometry {
	return c.geom
}

// PointerEnter hovers element i.
func (c *Card) PointerEnter(i int) {
	if i < 0 || i >= len(c.points) {
		return
	}
	c.hover.Enter(i)
}

// PointerLeave handles the pointer leaving element i.
func (c *Card) PointerLeave(i int) {
	c.hover.Leave(i)
}

// PointerMove hit-tests a position in plot coordinates and updates hover.
func (c *Card) PointerMove(x, y float64) {
	idx := c.geom.HitTest(c.opts.Kind, x, y)
	if cur, ok := c.hover.Current(); ok && cur != idx {
		c.PointerLeave(cur)
	}
	if idx < 0 {
		return
	}
	c.hover.Enter(idx)
}

// ClearHover returns hover to idle.
func (c *Card) ClearHover() {
	c.hover.Clear()
}

// StepHover moves hover by delta, starting from the first or last element when idle.
func (c *Card) StepHover(delta int) {
	n := len(c.points)
	if n == 0 {
		return
	}
	idx, ok := c.hover.Current()
	switch {
	case !ok && delta >= 0:
		idx = 0
	case !ok:
		idx = n - 1
	default:
		idx += delta
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	c.hover.Enter(idx)
}

// HoverIndex returns the hovered index, if any.
func (c *Card) HoverIndex() (int, bool) {
	return c.hover.Current()
}

// Scene computes a renderable snapshot of the card.
func (c *Card) Scene() Scene {
	s := Scene{
		Title:       c.opts.Title,
		Description: c.opts.Description,
		Kind:        c.opts.Kind,
		Color:       c.opts.Color,
		Period:      c.selector.Period(),
		Dims:        c.geom.Dimensions(),
		Margin:      c.layout.Margin,
		Values:      clonePoints(c.points),
		Hovered:     -1,
	}
	if c.opts.Kind == KindBar {
		s.Bars = c.geom.Bars()
	} else {
		s.Points = c.geom.LinePoints()
	}
	s.Labels = make([]Label, len(c.points))
	for i, p := range c.points {
		s.Labels[i] = Label{Text: p.Label, X: c.geom.SlotCenter(c.opts.Kind, i)}
	}
	if idx, ok := c.hover.Current(); ok && idx < len(c.points) {
		s.Hovered = idx
		s.Tooltip = c.tooltip(idx)
	}
	return s
}

func (c *Card) tooltip(idx int) *Tooltip {
	text := TooltipText(c.points[idx])
	width := DefaultTooltipWidth
	if c.opts.MeasureTooltip != nil {
		if w := c.opts.MeasureTooltip(text); w > 0 {
			width = w
		}
	}
	lift := DefaultTooltipLift
	if c.opts.TooltipLift > 0 {
		lift = c.opts.TooltipLift
	}
	pos := c.geom.Tooltip(c.opts.Kind, idx, width, lift)
	return &Tooltip{
		Text:   text,
		X:      pos.X,
		Y:      pos.Y,
		Width:  width,
		Anchor: c.geom.Anchor(c.opts.Kind, idx),
	}
}

func (c *Card) recompute() {
	c.geom = NewGeometry(c.points, c.layout.Dimensions(), c.layout.Margin)
	if idx, ok := c.hover.Current(); ok && idx >= len(c.points) {
		c.hover.Clear()
	}
}

// TooltipText formats a point as "<label>: <value>".
func TooltipText(p model.DataPoint) string {
	return fmt.Sprintf("%s: %s", p.Label, FormatValue(p.Value))
}

// FormatValue renders integral values with thousands separators and others with two
// decimals.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}
