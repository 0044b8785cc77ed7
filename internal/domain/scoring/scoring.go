// Package scoring rates employees against the team baseline and derives the
// badges shown next to each rating.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/salesdash/internal/domain/model"
)

// Default weights and band thresholds.
const (
	defaultSalesWeight  = 0.40
	defaultGrowthWeight = 0.30
	defaultTicketWeight = 0.15
	defaultUPTWeight    = 0.15

	defaultThresholdA = 75
	defaultThresholdB = 55
	defaultThresholdC = 40

	neutralGrowth = 50
	maxScoreValue = 100
	weightEpsilon = 1e-9
)

// Weights are the composite score weights; they must sum to 1.
type Weights struct {
	Sales  float64
	Growth float64
	Ticket float64
	UPT    float64
}

func (w Weights) valid() bool {
	if w.Sales < 0 || w.Growth < 0 || w.Ticket < 0 || w.UPT < 0 {
		return false
	}
	return math.Abs(w.Sales+w.Growth+w.Ticket+w.UPT-1) < weightEpsilon
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights overrides the component weights. Weights that are negative or
// do not sum to 1 are ignored.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		if w.valid() {
			e.weights = w
		}
	}
}

// WithThresholds overrides the lower bounds of bands A, B and C.
func WithThresholds(a, b, c float64) Option {
	return func(e *Engine) {
		if a > b && b > c && c > 0 && a <= maxScoreValue {
			e.thresholdA, e.thresholdB, e.thresholdC = a, b, c
		}
	}
}

// Engine computes ratings. It holds no state between calls.
type Engine struct {
	weights    Weights
	thresholdA float64
	thresholdB float64
	thresholdC float64
}

// NewEngine creates a rating engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights: Weights{
			Sales:  defaultSalesWeight,
			Growth: defaultGrowthWeight,
			Ticket: defaultTicketWeight,
			UPT:    defaultUPTWeight,
		},
		thresholdA: defaultThresholdA,
		thresholdB: defaultThresholdB,
		thresholdC: defaultThresholdC,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Rate scores an employee with the default weights.
func Rate(employee model.EmployeeAggregate, baseline model.TeamBaseline, growth *float64) (model.RatingResult, error) {
	return defaultEngine.Rate(employee, baseline, growth)
}

// Rate computes the weighted composite score and its band. growth may be
// nil when no previous period is available.
func (e *Engine) Rate(employee model.EmployeeAggregate, baseline model.TeamBaseline, growth *float64) (model.RatingResult, error) {
	if baseline.AverageSalesPerEmployee == 0 || baseline.BlendedAverageTicket == 0 || baseline.BlendedUnitsPerTransaction == 0 {
		return model.RatingResult{}, fmt.Errorf("rate %q: zero baseline: %w", employee.EmployeeName, model.ErrDivisionUndefined)
	}
	if !employee.AverageTicket.Valid || !employee.UnitsPerTransaction.Valid {
		return model.RatingResult{}, fmt.Errorf("rate %q: no transactions: %w", employee.EmployeeName, model.ErrDivisionUndefined)
	}

	sales := clamp(maxScoreValue * employee.TotalSales.InexactFloat64() / baseline.AverageSalesPerEmployee)
	ticket := clamp(maxScoreValue * employee.AverageTicket.Value / baseline.BlendedAverageTicket)
	upt := clamp(maxScoreValue * employee.UnitsPerTransaction.Value / baseline.BlendedUnitsPerTransaction)

	growthComponent := float64(neutralGrowth)
	if growth != nil && !math.IsNaN(*growth) && !math.IsInf(*growth, 0) {
		growthComponent = clamp(neutralGrowth + *growth)
	}

	score := sales*e.weights.Sales +
		growthComponent*e.weights.Growth +
		ticket*e.weights.Ticket +
		upt*e.weights.UPT

	return e.Classify(score), nil
}

// Classify maps a score to its band. Bands are closed at the lower bound.
func (e *Engine) Classify(score float64) model.RatingResult {
	r := model.RatingResult{Score: score}
	switch {
	case score >= e.thresholdA:
		r.Letter, r.Label, r.Color, r.Stars = model.LetterA, "Top Performer", "#27ae60", "⭐⭐⭐"
	case score >= e.thresholdB:
		r.Letter, r.Label, r.Color, r.Stars = model.LetterB, "Strong", "#3498db", "⭐⭐"
	case score >= e.thresholdC:
		r.Letter, r.Label, r.Color, r.Stars = model.LetterC, "Needs Help", "#f39c12", "⭐"
	default:
		r.Letter, r.Label, r.Color, r.Stars = model.LetterD, "Critical", "#e74c3c", "☆"
	}
	return r
}

// Classify maps a score to its band with the default thresholds.
func Classify(score float64) model.RatingResult {
	return defaultEngine.Classify(score)
}

// VsTeamSalesPercent is the employee's sales distance from the team average,
// in percent.
func VsTeamSalesPercent(employee model.EmployeeAggregate, baseline model.TeamBaseline) (float64, error) {
	if baseline.AverageSalesPerEmployee == 0 {
		return 0, fmt.Errorf("vs team %q: %w", employee.EmployeeName, model.ErrDivisionUndefined)
	}
	avg := baseline.AverageSalesPerEmployee
	return maxScoreValue * (employee.TotalSales.InexactFloat64() - avg) / avg, nil
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(maxScoreValue, v))
}
