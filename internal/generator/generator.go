// Package generator builds mock usage metrics.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/chartcard/internal/model"
)

var (
	dayLabels   = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	weekLabels  = []string{"W1", "W2", "W3", "W4"}
	monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	plans       = []string{"free", "pro", "team", "enterprise"}
)

// Generator produces randomized usage metrics.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

// New returns a Generator seeded with seed, or with the current time when seed is 0.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed)), now: time.Now}
}

// Usage builds a full set of metrics for orgID. Daily values dip on weekends and
// monthly values follow a gentle upward trend.
func (g *Generator) Usage(orgID string) model.UsageMetrics {
	base := 800 + g.rnd.Float64()*1200
	day := make([]model.DataPoint, len(dayLabels))
	for i, label := range dayLabels {
		v := base
		if i >= 5 {
			v *= 0.55
		}
		day[i] = model.DataPoint{Label: label, Value: applyNoise(g.rnd, v, 0.15)}
	}

	week := make([]model.DataPoint, len(weekLabels))
	for i, label := range weekLabels {
		week[i] = model.DataPoint{Label: label, Value: applyNoise(g.rnd, base*6, 0.1)}
	}

	month := make([]model.DataPoint, len(monthLabels))
	var total float64
	for i, label := range monthLabels {
		trend := 1 + float64(i)*0.03
		v := applyNoise(g.rnd, base*26*trend, 0.08)
		month[i] = model.DataPoint{Label: label, Value: v}
		total += v
	}

	return model.UsageMetrics{
		OrgID:         orgID,
		OrgName:       fmt.Sprintf("Org %s", orgID),
		Plan:          plans[g.rnd.Intn(len(plans))],
		TotalRequests: int64(total),
		ErrorRate:     math.Round(g.rnd.Float64()*500) / 10000,
		AvgLatencyMs:  math.Round((80+g.rnd.Float64()*320)*10) / 10,
		UpdatedAt:     g.now().UTC().Truncate(time.Second),
		Series: map[model.Period][]model.DataPoint{
			model.PeriodDay:   day,
			model.PeriodWeek:  week,
			model.PeriodMonth: month,
		},
	}
}

// applyNoise scales v by a random factor in [1-spread, 1+spread] and rounds to a whole count.
func applyNoise(rnd *rand.Rand, v, spread float64) float64 {
	if spread <= 0 {
		return math.Round(v)
	}
	factor := 1 + (rnd.Float64()*2-1)*spread
	return math.Round(v * factor)
}
