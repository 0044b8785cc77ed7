package aggregate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/okian/salesdash/internal/domain/model"
)

// ComputeBaseline derives team averages. Ticket and UPT are blended over
// all transactions rather than averaged per employee, so low-volume
// employees do not skew them.
func ComputeBaseline(aggregates map[string]model.EmployeeAggregate) (model.TeamBaseline, error) {
	if len(aggregates) == 0 {
		return model.TeamBaseline{}, fmt.Errorf("baseline: no employees: %w", model.ErrDivisionUndefined)
	}

	total := decimal.Zero
	docs, qty := 0, 0
	for _, a := range aggregates {
		total = total.Add(a.TotalSales)
		docs += a.TotalTransactions
		qty += a.TotalQuantity
	}
	if docs == 0 {
		return model.TeamBaseline{}, fmt.Errorf("baseline: no transactions: %w", model.ErrDivisionUndefined)
	}

	sales := total.InexactFloat64()
	return model.TeamBaseline{
		AverageSalesPerEmployee:    total.Div(decimal.NewFromInt(int64(len(aggregates)))).InexactFloat64(),
		BlendedAverageTicket:       sales / float64(docs),
		BlendedUnitsPerTransaction: float64(qty) / float64(docs),
		Employees:                  len(aggregates),
		TotalSales:                 total,
		TotalTransactions:          docs,
		TotalQuantity:              qty,
	}, nil
}
