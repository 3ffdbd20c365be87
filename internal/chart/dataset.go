package chart

import "github.com/verte-zerg/chartcard/internal/model"

// Datasets holds one ordered series per period.
type Datasets map[model.Period][]model.DataPoint

// NewDatasets copies series so later changes by the caller are not observed.
func NewDatasets(series map[model.Period][]model.DataPoint) Datasets {
	out := make(Datasets, len(series))
	for p, points := range series {
		out[p] = clonePoints(points)
	}
	return out
}

// Selector holds the active period and hands out copies of its dataset.
type Selector struct {
	datasets Datasets
	period   model.Period
}

// NewSelector starts on the given period; invalid periods start on day.
func NewSelector(ds Datasets, initial model.Period) *Selector {
	if !initial.Valid() {
		initial = model.PeriodDay
	}
	return &Selector{datasets: NewDatasets(ds), period: initial}
}

// Period returns the active period.
func (s *Selector) Period() model.Period {
	return s.period
}

// Select makes p the active period and returns its points. Unknown periods are ignored.
func (s *Selector) Select(p model.Period) []model.DataPoint {
	if p.Valid() {
		s.period = p
	}
	return s.Points()
}

// SetDatasets replaces every series and keeps the active period.
func (s *Selector) SetDatasets(ds Datasets) {
	s.datasets = NewDatasets(ds)
}

// Points returns a copy of the active dataset in original order.
func (s *Selector) Points() []model.DataPoint {
	return clonePoints(s.datasets[s.period])
}

func clonePoints(points []model.DataPoint) []model.DataPoint {
	if points == nil {
		return nil
	}
	out := make([]model.DataPoint, len(points))
	copy(out, points)
	return out
}
