// Package aggregate reduces raw transaction rows into per-employee totals
// and derives team baselines from them.
package aggregate

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/pkg/logger"
	"github.com/okian/salesdash/pkg/metrics"
)

// Aggregate groups rows by exact employee name. Rows without a name are
// skipped. Ratios are left undefined for employees with zero transactions.
func Aggregate(ctx context.Context, rows []model.TransactionRecord) map[string]model.EmployeeAggregate {
	type acc struct {
		sales     decimal.Decimal
		docs      int
		qty       int
		locations map[string]struct{}
	}

	byName := make(map[string]*acc)
	skipped := 0
	for i, row := range rows {
		if row.EmployeeName == "" {
			skipped++
			logger.Get().Debug(ctx, "skipping row without employee name", logger.Int("row", i))
			continue
		}
		a, ok := byName[row.EmployeeName]
		if !ok {
			a = &acc{locations: make(map[string]struct{})}
			byName[row.EmployeeName] = a
		}
		a.sales = a.sales.Add(row.Amount)
		a.docs += row.DocCount
		a.qty += row.Quantity
		if row.LocationID != "" {
			a.locations[row.LocationID] = struct{}{}
		}
	}

	if skipped > 0 {
		logger.Get().Info(ctx, "rows without employee name skipped", logger.Int("skipped", skipped), logger.Int("rows", len(rows)))
		metrics.RecordRowsSkipped(skipped)
	}

	out := make(map[string]model.EmployeeAggregate, len(byName))
	for name, a := range byName {
		locations := make([]string, 0, len(a.locations))
		for l := range a.locations {
			locations = append(locations, l)
		}
		sort.Strings(locations)

		sales := a.sales.InexactFloat64()
		out[name] = model.EmployeeAggregate{
			EmployeeName:        name,
			TotalSales:          a.sales,
			TotalTransactions:   a.docs,
			TotalQuantity:       a.qty,
			Locations:           locations,
			AverageTicket:       model.NewRatio(sales, float64(a.docs)),
			UnitsPerTransaction: model.NewRatio(float64(a.qty), float64(a.docs)),
		}
	}
	return out
}

// Growth returns the sales growth percent of each current employee against
// the previous period. Employees without previous sales get no entry.
func Growth(current, previous map[string]model.EmployeeAggregate) map[string]float64 {
	out := make(map[string]float64, len(current))
	hundred := decimal.NewFromInt(100)
	for name, cur := range current {
		prev, ok := previous[name]
		if !ok || !prev.TotalSales.IsPositive() {
			continue
		}
		g := cur.TotalSales.Sub(prev.TotalSales).Div(prev.TotalSales).Mul(hundred)
		out[name] = g.InexactFloat64()
	}
	return out
}
