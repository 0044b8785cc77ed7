package report

import (
	"math"
	"sort"
	"strings"

	"github.com/okian/salesdash/internal/domain/model"
)

// Type filters.
const (
	TypeActive   = "active"
	TypeFullTime = "full-time"
	TypePartTime = "part-time"
)

// Sort columns.
const (
	ColumnName   = "name"
	ColumnSales  = "sales"
	ColumnRating = "rating"
	ColumnTrend  = "trend"
	ColumnTicket = "ticket"
)

// Query narrows the ranking table. Empty fields match everything.
type Query struct {
	Search   string
	Location string
	Type     string
}

// Filter returns the employees matching q, in input order.
func Filter(employees []model.EnrichedEmployee, q Query) []model.EnrichedEmployee {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]model.EnrichedEmployee, 0, len(employees))
	for _, e := range employees {
		if search != "" && !strings.Contains(strings.ToLower(e.EmployeeName), search) {
			continue
		}
		if q.Location != "" && !e.HasLocation(q.Location) {
			continue
		}
		switch q.Type {
		case TypeActive:
			if !e.Active() {
				continue
			}
		case TypeFullTime:
			if e.EmploymentType.Type != model.EmploymentFull {
				continue
			}
		case TypePartTime:
			if e.EmploymentType.Type != model.EmploymentPart {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// Locations lists every location seen in employees, sorted.
func Locations(employees []model.EnrichedEmployee) []string {
	seen := make(map[string]struct{})
	for _, e := range employees {
		for _, l := range e.Locations {
			seen[l] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Sort orders employees in place by column. Unknown columns sort by sales.
// Missing growth sorts as lowest on the trend column, unrated employees as
// lowest on the rating column.
func Sort(employees []model.EnrichedEmployee, column string, ascending bool) {
	key := func(e model.EnrichedEmployee) float64 {
		switch column {
		case ColumnRating:
			return e.Score()
		case ColumnTrend:
			if e.Growth == nil {
				return math.Inf(-1)
			}
			return *e.Growth
		case ColumnTicket:
			if !e.AverageTicket.Valid {
				return math.Inf(-1)
			}
			return e.AverageTicket.Value
		default:
			return e.TotalSales.InexactFloat64()
		}
	}

	sort.SliceStable(employees, func(i, j int) bool {
		a, b := employees[i], employees[j]
		if column == ColumnName {
			if ascending {
				return a.EmployeeName < b.EmployeeName
			}
			return a.EmployeeName > b.EmployeeName
		}
		ka, kb := key(a), key(b)
		if ascending {
			return ka < kb
		}
		return ka > kb
	})
}
