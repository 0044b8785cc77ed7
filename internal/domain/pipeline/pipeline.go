// Package pipeline turns raw sales rows into the ranked, enriched employee
// list for one period.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/okian/salesdash/internal/domain/aggregate"
	"github.com/okian/salesdash/internal/domain/hrdir"
	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/internal/domain/scoring"
	"github.com/okian/salesdash/pkg/logger"
	"github.com/okian/salesdash/pkg/metrics"
)

// Input is everything one scoring pass needs.
type Input struct {
	Rows []model.TransactionRecord

	// Previous holds the preceding period; nil disables growth.
	Previous []model.TransactionRecord

	// Directory may be nil when no HR source is configured.
	Directory *hrdir.Directory

	Now    time.Time
	Engine *scoring.Engine
}

// Result is the scored period.
type Result struct {
	Employees   []model.EnrichedEmployee `json:"employees"`
	Baseline    model.TeamBaseline       `json:"baseline"`
	GeneratedAt time.Time                `json:"generatedAt"`
	Unmatched   []string                 `json:"unmatched,omitempty"`
}

// Score aggregates, rates and enriches every employee. It fails only when
// the team baseline cannot be computed; per-employee failures are recorded
// on the employee.
func Score(ctx context.Context, in Input) (Result, error) {
	log := logger.Get().Named("pipeline")
	engine := in.Engine
	if engine == nil {
		engine = scoring.NewEngine()
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	current := aggregate.Aggregate(ctx, in.Rows)
	baseline, err := aggregate.ComputeBaseline(current)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", model.ErrInsufficientData, err)
	}

	var growth map[string]float64
	if in.Previous != nil {
		growth = aggregate.Growth(current, aggregate.Aggregate(ctx, in.Previous))
	}

	res := Result{
		Employees:   make([]model.EnrichedEmployee, 0, len(current)),
		Baseline:    baseline,
		GeneratedAt: now,
	}
	distribution := make(map[string]int, 4)
	unrated := 0

	for name, agg := range current {
		e := model.EnrichedEmployee{EmployeeAggregate: agg}
		if g, ok := growth[name]; ok {
			e.Growth = &g
		}

		rating, err := engine.Rate(agg, baseline, e.Growth)
		if err != nil {
			if !errors.Is(err, model.ErrDivisionUndefined) {
				return Result{}, err
			}
			e.RatingError = err.Error()
			unrated++
			log.Debug(ctx, "employee not rated", logger.String("employee", name), logger.Error(err))
		} else {
			e.Rating = &rating
			status := scoring.Status(rating.Letter, e.Growth)
			e.Status = &status
			distribution[string(rating.Letter)]++
		}

		if v, err := scoring.VsTeamSalesPercent(agg, baseline); err == nil {
			e.VsTeamSalesPercent = model.Ratio{Value: v, Valid: true}
		}

		enrich(&e, in.Directory, now)
		if e.HR == nil && in.Directory.Len() > 0 {
			res.Unmatched = append(res.Unmatched, name)
			metrics.RecordHRMatchMiss()
		}
		res.Employees = append(res.Employees, e)
	}

	Order(res.Employees)
	sort.Strings(res.Unmatched)
	metrics.UpdateRatingDistribution(distribution, unrated)
	log.Info(ctx, "period scored",
		logger.Int("employees", len(res.Employees)),
		logger.Int("unrated", unrated),
		logger.Int("hr_unmatched", len(res.Unmatched)),
		logger.Bool("growth", growth != nil))
	return res, nil
}

// enrich attaches HR-derived badges. Without a match the employee keeps the
// Unknown tier and counts as full-time.
func enrich(e *model.EnrichedEmployee, dir *hrdir.Directory, now time.Time) {
	e.Experience = scoring.UnknownExperience
	e.EmploymentType = scoring.Employment(nil)

	p, err := dir.Lookup(e.EmployeeName)
	if err != nil {
		return
	}
	e.HR = &p
	if months, ok := scoring.TenureMonths(p.HireDate, now); ok {
		e.TenureMonths = &months
		e.Experience = scoring.Experience(months, true)
	}
	e.EmploymentType = scoring.Employment(p.WeeklyHours)
}

// Order sorts by score descending, then name ascending. Unrated employees
// come last.
func Order(employees []model.EnrichedEmployee) {
	sort.SliceStable(employees, func(i, j int) bool {
		a, b := employees[i], employees[j]
		if (a.Rating == nil) != (b.Rating == nil) {
			return a.Rating != nil
		}
		if a.Score() != b.Score() {
			return a.Score() > b.Score()
		}
		return a.EmployeeName < b.EmployeeName
	})
}
