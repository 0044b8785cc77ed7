// Package report derives the dashboard, ranking table, detail and export
// views from a scored period.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/internal/domain/pipeline"
)

const (
	topPerformers  = 3
	needsAttention = 3
)

// TeamMetrics summarises the whole team for one period.
type TeamMetrics struct {
	TotalSales        decimal.Decimal `json:"totalSales"`
	TotalTransactions int             `json:"totalTransactions"`
	Employees         int             `json:"employees"`
	AverageTicket     float64         `json:"averageTicket"`
	AverageUPT        float64         `json:"averageUpt"`

	// AverageGrowth is the mean over employees that have a growth figure;
	// nil when none do.
	AverageGrowth *float64 `json:"averageGrowth"`
}

// Dashboard is the landing view.
type Dashboard struct {
	TopPerformers  []model.EnrichedEmployee `json:"topPerformers"`
	NeedsAttention []model.EnrichedEmployee `json:"needsAttention"`
	Team           TeamMetrics              `json:"team"`
}

// BuildDashboard picks the three best scores, the three weakest C or D
// employees (worst first) and the team metrics.
func BuildDashboard(res pipeline.Result) Dashboard {
	sorted := append([]model.EnrichedEmployee(nil), res.Employees...)
	pipeline.Order(sorted)

	d := Dashboard{
		TopPerformers:  []model.EnrichedEmployee{},
		NeedsAttention: []model.EnrichedEmployee{},
		Team:           Team(res),
	}
	for _, e := range sorted {
		if len(d.TopPerformers) == topPerformers {
			break
		}
		if e.Rating != nil {
			d.TopPerformers = append(d.TopPerformers, e)
		}
	}

	var weak []model.EnrichedEmployee
	for _, e := range sorted {
		if e.Rating != nil && (e.Rating.Letter == model.LetterC || e.Rating.Letter == model.LetterD) {
			weak = append(weak, e)
		}
	}
	for i := len(weak) - 1; i >= 0 && len(d.NeedsAttention) < needsAttention; i-- {
		d.NeedsAttention = append(d.NeedsAttention, weak[i])
	}
	return d
}

// Team computes the team metrics panel.
func Team(res pipeline.Result) TeamMetrics {
	b := res.Baseline
	t := TeamMetrics{
		TotalSales:        b.TotalSales,
		TotalTransactions: b.TotalTransactions,
		Employees:         len(res.Employees),
		AverageTicket:     b.BlendedAverageTicket,
		AverageUPT:        b.BlendedUnitsPerTransaction,
	}
	var sum float64
	var n int
	for _, e := range res.Employees {
		if e.Growth != nil {
			sum += *e.Growth
			n++
		}
	}
	if n > 0 {
		avg := sum / float64(n)
		t.AverageGrowth = &avg
	}
	return t
}
