package aggregate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/okian/salesdash/internal/domain/aggregate"
	"github.com/okian/salesdash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func row(name, shop string, amount string, docs, qty int) model.TransactionRecord {
	return model.TransactionRecord{
		EmployeeName: name,
		LocationID:   shop,
		Amount:       decimal.RequireFromString(amount),
		DocCount:     docs,
		Quantity:     qty,
	}
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()

	Convey("Given three rows for one employee", t, func() {
		rows := []model.TransactionRecord{
			row("A SMITH", "0008-VALMONTONE", "100", 1, 1),
			row("A SMITH", "0009-ROMA", "50", 1, 2),
			row("A SMITH", "0008-VALMONTONE", "150", 1, 1),
		}

		Convey("When aggregating", func() {
			out := aggregate.Aggregate(ctx, rows)
			smith := out["A SMITH"]

			Convey("Then totals and ratios are computed", func() {
				So(len(out), ShouldEqual, 1)
				So(smith.TotalSales.Equal(decimal.NewFromInt(300)), ShouldBeTrue)
				So(smith.TotalTransactions, ShouldEqual, 3)
				So(smith.TotalQuantity, ShouldEqual, 4)
				So(smith.AverageTicket.Valid, ShouldBeTrue)
				So(smith.AverageTicket.Value, ShouldEqual, 100)
				So(smith.UnitsPerTransaction.Value, ShouldAlmostEqual, 1.333, 0.001)
				So(smith.Locations, ShouldResemble, []string{"0008-VALMONTONE", "0009-ROMA"})
			})
		})
	})

	Convey("Given rows for several employees", t, func() {
		rows := []model.TransactionRecord{
			row("ANNA", "S1", "10.10", 1, 1),
			row("MARCO", "S1", "20.20", 2, 3),
			row("ANNA", "S2", "0.05", 1, 1),
			row("", "S1", "99", 1, 1),
			row("anna", "S1", "1", 1, 1),
		}

		Convey("When aggregating", func() {
			out := aggregate.Aggregate(ctx, rows)

			Convey("Then names are exact keys and nameless rows are skipped", func() {
				So(len(out), ShouldEqual, 3)
				So(out["ANNA"].TotalSales.String(), ShouldEqual, "10.15")
				So(out["anna"].TotalTransactions, ShouldEqual, 1)
			})

			Convey("And total sales are conserved across named rows", func() {
				sum := decimal.Zero
				for _, a := range out {
					sum = sum.Add(a.TotalSales)
				}
				So(sum.String(), ShouldEqual, "31.35")
			})
		})

		Convey("When aggregating in a different order", func() {
			reversed := make([]model.TransactionRecord, len(rows))
			for i := range rows {
				reversed[len(rows)-1-i] = rows[i]
			}

			Convey("Then the result is identical", func() {
				So(aggregate.Aggregate(ctx, reversed), ShouldResemble, aggregate.Aggregate(ctx, rows))
			})
		})
	})

	Convey("Given an employee with no transactions", t, func() {
		out := aggregate.Aggregate(ctx, []model.TransactionRecord{row("RETURNS ONLY", "S1", "0", 0, 0)})

		Convey("Then the ratios are undefined rather than zero", func() {
			a := out["RETURNS ONLY"]
			So(a.AverageTicket.Valid, ShouldBeFalse)
			So(a.UnitsPerTransaction.Valid, ShouldBeFalse)
		})
	})
}

func TestComputeBaseline(t *testing.T) {
	ctx := context.Background()

	Convey("Given one employee with 1000 sales over 10 transactions", t, func() {
		aggs := aggregate.Aggregate(ctx, []model.TransactionRecord{row("SOLO", "S1", "1000", 10, 20)})

		Convey("Then the baseline matches that employee", func() {
			b, err := aggregate.ComputeBaseline(aggs)
			So(err, ShouldBeNil)
			So(b.AverageSalesPerEmployee, ShouldEqual, 1000)
			So(b.BlendedAverageTicket, ShouldEqual, 100)
			So(b.BlendedUnitsPerTransaction, ShouldEqual, 2)
			So(b.Employees, ShouldEqual, 1)
		})
	})

	Convey("Given employees with very different volumes", t, func() {
		aggs := aggregate.Aggregate(ctx, []model.TransactionRecord{
			row("HIGH", "S1", "900", 9, 9),
			row("LOW", "S1", "500", 1, 1),
		})

		Convey("Then the ticket is transaction-weighted, not a mean of means", func() {
			b, err := aggregate.ComputeBaseline(aggs)
			So(err, ShouldBeNil)
			So(b.BlendedAverageTicket, ShouldEqual, 140)
			So(b.AverageSalesPerEmployee, ShouldEqual, 700)
		})
	})

	Convey("Given no employees", t, func() {
		_, err := aggregate.ComputeBaseline(map[string]model.EmployeeAggregate{})

		Convey("Then the baseline is undefined", func() {
			So(errors.Is(err, model.ErrDivisionUndefined), ShouldBeTrue)
		})
	})

	Convey("Given employees without any transactions", t, func() {
		aggs := aggregate.Aggregate(ctx, []model.TransactionRecord{row("X", "S1", "0", 0, 0)})
		_, err := aggregate.ComputeBaseline(aggs)

		Convey("Then the blended ratios are undefined", func() {
			So(errors.Is(err, model.ErrDivisionUndefined), ShouldBeTrue)
		})
	})
}

func TestGrowth(t *testing.T) {
	ctx := context.Background()

	Convey("Given a current and a previous period", t, func() {
		current := aggregate.Aggregate(ctx, []model.TransactionRecord{
			row("UP", "S1", "150", 1, 1),
			row("DOWN", "S1", "50", 1, 1),
			row("NEW", "S1", "10", 1, 1),
			row("ZERO BEFORE", "S1", "10", 1, 1),
		})
		previous := aggregate.Aggregate(ctx, []model.TransactionRecord{
			row("UP", "S1", "100", 1, 1),
			row("DOWN", "S1", "100", 1, 1),
			row("ZERO BEFORE", "S1", "0", 1, 1),
			row("GONE", "S1", "100", 1, 1),
		})

		Convey("Then growth is reported only where previous sales exist", func() {
			g := aggregate.Growth(current, previous)
			So(len(g), ShouldEqual, 2)
			So(g["UP"], ShouldEqual, 50)
			So(g["DOWN"], ShouldEqual, -50)
			_, ok := g["NEW"]
			So(ok, ShouldBeFalse)
		})
	})
}
