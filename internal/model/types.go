// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUsageNotFound is returned by usage sources that hold no metrics for an org.
var ErrUsageNotFound = errors.New("usage metrics not found")

// DataPoint is a single labeled value in a dataset.
type DataPoint struct {
	Value float64
	Label string
}

// Period selects one of the preset datasets.
type Period int

const (
	PeriodDay Period = iota
	PeriodWeek
	PeriodMonth
)

// Periods returns all periods in switch order.
func Periods() []Period {
	return []Period{PeriodDay, PeriodWeek, PeriodMonth}
}

func (p Period) String() string {
	switch p {
	case PeriodDay:
		return "day"
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	default:
		return "unknown"
	}
}

// Title returns the display name used by period switches.
func (p Period) Title() string {
	switch p {
	case PeriodDay:
		return "Day"
	case PeriodWeek:
		return "Week"
	case PeriodMonth:
		return "Month"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	return p >= PeriodDay && p <= PeriodMonth
}

// ParsePeriod parses "day", "week" or "month" (case-insensitive).
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "d":
		return PeriodDay, nil
	case "week", "w":
		return PeriodWeek, nil
	case "month", "m":
		return PeriodMonth, nil
	default:
		return PeriodDay, fmt.Errorf("unknown period %q (use day, week or month)", s)
	}
}

// Dimensions is the measured plot size in surface units.
type Dimensions struct {
	Width  float64
	Height float64
}

// CardConfig holds the chart card properties.
type CardConfig struct {
	Title       string
	Description string
	Type        string
	Color       string
	ChartHeight int
	Period      Period
	OrgID       string
}

// DefaultChartHeight is the total chart height in pixels when none is configured.
const DefaultChartHeight = 200

// DefaultCardConfig returns a line chart of the day series at the default height.
func DefaultCardConfig() CardConfig {
	return CardConfig{
		Title:       "API Requests",
		Type:        "line",
		Color:       "#7C5CFF",
		ChartHeight: DefaultChartHeight,
		Period:      PeriodDay,
	}
}

// UsageMetrics summarizes API usage for an organization.
type UsageMetrics struct {
	OrgID         string
	OrgName       string
	Plan          string
	TotalRequests int64
	ErrorRate     float64
	AvgLatencyMs  float64
	UpdatedAt     time.Time
	Series        map[Period][]DataPoint
}

// SeriesTotal sums the values of one period's series.
func (u UsageMetrics) SeriesTotal(p Period) float64 {
	var total float64
	for _, pt := range u.Series[p] {
		total += pt.Value
	}
	return total
}
