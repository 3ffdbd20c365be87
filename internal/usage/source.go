// Package usage provides usage-metrics sources for the chart card.
package usage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/verte-zerg/chartcard/internal/model"
)

// Source reads usage metrics for an organization.
type Source interface {
	GetUsageMetrics(ctx context.Context, orgID string) (model.UsageMetrics, error)
}

// Static serves metrics held in memory.
type Static struct {
	mu      sync.RWMutex
	metrics map[string]model.UsageMetrics
}

// NewStatic returns a Static source holding ms, keyed by OrgID.
func NewStatic(ms ...model.UsageMetrics) *Static {
	s := &Static{metrics: make(map[string]model.UsageMetrics, len(ms))}
	for _, m := range ms {
		s.Put(m)
	}
	return s
}

// Put stores or replaces the metrics for m.OrgID.
func (s *Static) Put(m model.UsageMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics[m.OrgID] = cloneMetrics(m)
}

// GetUsageMetrics implements Source.
func (s *Static) GetUsageMetrics(ctx context.Context, orgID string) (model.UsageMetrics, error) {
	if err := ctx.Err(); err != nil {
		return model.UsageMetrics{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.metrics[orgID]
	if !ok {
		return model.UsageMetrics{}, fmt.Errorf("org %q: %w", orgID, model.ErrUsageNotFound)
	}
	return cloneMetrics(m), nil
}

// Fallback reads from Primary and falls back to Secondary when Primary has no
// metrics for the org. Other errors are returned as is.
type Fallback struct {
	Primary   Source
	Secondary Source
}

// GetUsageMetrics implements Source.
func (f Fallback) GetUsageMetrics(ctx context.Context, orgID string) (model.UsageMetrics, error) {
	m, err := f.Primary.GetUsageMetrics(ctx, orgID)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, model.ErrUsageNotFound) || f.Secondary == nil {
		return model.UsageMetrics{}, err
	}
	return f.Secondary.GetUsageMetrics(ctx, orgID)
}

func cloneMetrics(m model.UsageMetrics) model.UsageMetrics {
	out := m
	if m.Series == nil {
		return out
	}
	out.Series = make(map[model.Period][]model.DataPoint, len(m.Series))
	for p, pts := range m.Series {
		out.Series[p] = append([]model.DataPoint(nil), pts...)
	}
	return out
}
