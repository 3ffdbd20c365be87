package usage

import (
	"time"

	"github.com/verte-zerg/chartcard/internal/model"
)

// SampleOrgID is the org served by the built-in sample data.
const SampleOrgID = "demo"

var (
	sampleDay = []model.DataPoint{
		{Value: 1200, Label: "Mon"},
		{Value: 1400, Label: "Tue"},
		{Value: 1100, Label: "Wed"},
		{Value: 1700, Label: "Thu"},
		{Value: 1900, Label: "Fri"},
		{Value: 800, Label: "Sat"},
		{Value: 600, Label: "Sun"},
	}
	sampleWeek = []model.DataPoint{
		{Value: 8200, Label: "W1"},
		{Value: 9100, Label: "W2"},
		{Value: 7600, Label: "W3"},
		{Value: 10400, Label: "W4"},
	}
	sampleMonth = []model.DataPoint{
		{Value: 32000, Label: "Jan"},
		{Value: 29500, Label: "Feb"},
		{Value: 35200, Label: "Mar"},
		{Value: 36800, Label: "Apr"},
		{Value: 34100, Label: "May"},
		{Value: 38900, Label: "Jun"},
		{Value: 41200, Label: "Jul"},
		{Value: 40300, Label: "Aug"},
		{Value: 43700, Label: "Sep"},
		{Value: 45100, Label: "Oct"},
		{Value: 44200, Label: "Nov"},
		{Value: 48600, Label: "Dec"},
	}
)

// SampleMetrics returns the built-in demo metrics for orgID.
func SampleMetrics(orgID string) model.UsageMetrics {
	m := model.UsageMetrics{
		OrgID:        orgID,
		OrgName:      "Demo Org",
		Plan:         "pro",
		ErrorRate:    0.012,
		AvgLatencyMs: 184.5,
		UpdatedAt:    time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		Series: map[model.Period][]model.DataPoint{
			model.PeriodDay:   append([]model.DataPoint(nil), sampleDay...),
			model.PeriodWeek:  append([]model.DataPoint(nil), sampleWeek...),
			model.PeriodMonth: append([]model.DataPoint(nil), sampleMonth...),
		},
	}
	m.TotalRequests = int64(m.SeriesTotal(model.PeriodMonth))
	return m
}

// Sample returns a Static source that serves the demo metrics for any of orgIDs,
// or for SampleOrgID when none are given.
func Sample(orgIDs ...string) *Static {
	if len(orgIDs) == 0 {
		orgIDs = []string{SampleOrgID}
	}
	s := NewStatic()
	for _, id := range orgIDs {
		s.Put(SampleMetrics(id))
	}
	return s
}
