package scoring_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func employee(sales float64, docs, qty int) model.EmployeeAggregate {
	return model.EmployeeAggregate{
		EmployeeName:        "E",
		TotalSales:          decimal.NewFromFloat(sales),
		TotalTransactions:   docs,
		TotalQuantity:       qty,
		AverageTicket:       model.NewRatio(sales, float64(docs)),
		UnitsPerTransaction: model.NewRatio(float64(qty), float64(docs)),
	}
}

func ptr(f float64) *float64 { return &f }

func TestRate(t *testing.T) {
	baseline := model.TeamBaseline{
		AverageSalesPerEmployee:    1000,
		BlendedAverageTicket:       100,
		BlendedUnitsPerTransaction: 2,
		Employees:                  4,
	}

	Convey("Given an employee exactly at the team baseline", t, func() {
		e := employee(1000, 10, 20)

		Convey("When growth is zero", func() {
			r, err := scoring.Rate(e, baseline, ptr(0))

			Convey("Then the score is 85 and the rating is A", func() {
				So(err, ShouldBeNil)
				So(r.Score, ShouldAlmostEqual, 85, 1e-9)
				So(r.Letter, ShouldEqual, model.LetterA)
				So(r.Label, ShouldEqual, "Top Performer")
				So(r.Stars, ShouldEqual, "⭐⭐⭐")
			})
		})

		Convey("When growth is unknown", func() {
			withNil, err := scoring.Rate(e, baseline, nil)
			So(err, ShouldBeNil)
			withZero, _ := scoring.Rate(e, baseline, ptr(0))

			Convey("Then it neither rewards nor penalizes", func() {
				So(withNil.Score, ShouldAlmostEqual, withZero.Score, 1e-9)
			})
		})
	})

	Convey("Given an employee far above the baseline", t, func() {
		e := employee(100000, 10, 200)
		r, err := scoring.Rate(e, baseline, ptr(500))

		Convey("Then every component is capped at 100", func() {
			So(err, ShouldBeNil)
			So(r.Score, ShouldAlmostEqual, 100, 1e-9)
		})
	})

	Convey("Given a steep sales decline", t, func() {
		e := employee(0.01, 1, 1)
		r, err := scoring.Rate(e, baseline, ptr(-400))

		Convey("Then the growth component floors at zero", func() {
			So(err, ShouldBeNil)
			So(r.Score, ShouldBeGreaterThanOrEqualTo, 0)
			So(r.Letter, ShouldEqual, model.LetterD)
		})
	})

	Convey("Given an employee without transactions", t, func() {
		_, err := scoring.Rate(employee(0, 0, 0), baseline, nil)

		Convey("Then the rating fails with an undefined division", func() {
			So(errors.Is(err, model.ErrDivisionUndefined), ShouldBeTrue)
		})
	})

	Convey("Given a zero baseline", t, func() {
		_, err := scoring.Rate(employee(10, 1, 1), model.TeamBaseline{}, nil)

		Convey("Then the rating fails with an undefined division", func() {
			So(errors.Is(err, model.ErrDivisionUndefined), ShouldBeTrue)
		})
	})

	Convey("Given custom weights that favour sales only", t, func() {
		engine := scoring.NewEngine(scoring.WithWeights(scoring.Weights{Sales: 1}))
		r, err := engine.Rate(employee(500, 5, 10), baseline, nil)

		Convey("Then the score is the sales component", func() {
			So(err, ShouldBeNil)
			So(r.Score, ShouldAlmostEqual, 50, 1e-9)
		})
	})

	Convey("Given weights that do not sum to one", t, func() {
		engine := scoring.NewEngine(scoring.WithWeights(scoring.Weights{Sales: 2}))
		r, _ := engine.Rate(employee(1000, 10, 20), baseline, ptr(0))

		Convey("Then the defaults are kept", func() {
			So(r.Score, ShouldAlmostEqual, 85, 1e-9)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Band boundaries are closed at the lower end", t, func() {
		So(scoring.Classify(75).Letter, ShouldEqual, model.LetterA)
		So(scoring.Classify(74.999).Letter, ShouldEqual, model.LetterB)
		So(scoring.Classify(55).Letter, ShouldEqual, model.LetterB)
		So(scoring.Classify(54.999).Letter, ShouldEqual, model.LetterC)
		So(scoring.Classify(40).Letter, ShouldEqual, model.LetterC)
		So(scoring.Classify(39.999).Letter, ShouldEqual, model.LetterD)
		So(scoring.Classify(0).Color, ShouldEqual, "#e74c3c")
	})
}

func TestVsTeamSalesPercent(t *testing.T) {
	Convey("Given an employee selling 300 against a 200 average", t, func() {
		v, err := scoring.VsTeamSalesPercent(employee(300, 3, 4), model.TeamBaseline{AverageSalesPerEmployee: 200})

		Convey("Then they are 50% above the team", func() {
			So(err, ShouldBeNil)
			So(v, ShouldAlmostEqual, 50, 1e-9)
		})
	})

	Convey("Given a zero team average", t, func() {
		_, err := scoring.VsTeamSalesPercent(employee(300, 3, 4), model.TeamBaseline{})

		Convey("Then the comparison is undefined", func() {
			So(errors.Is(err, model.ErrDivisionUndefined), ShouldBeTrue)
		})
	})
}

func TestStatus(t *testing.T) {
	Convey("Status follows the letter and growth", t, func() {
		So(scoring.Status(model.LetterA, nil).Status, ShouldEqual, "Excellent")
		So(scoring.Status(model.LetterB, ptr(3)).Status, ShouldEqual, "Improving")
		So(scoring.Status(model.LetterB, ptr(0)).Status, ShouldEqual, "Strong")
		So(scoring.Status(model.LetterB, nil).Status, ShouldEqual, "Strong")
		So(scoring.Status(model.LetterC, ptr(10)).Status, ShouldEqual, "Needs Help")
		So(scoring.Status(model.LetterD, nil).Icon, ShouldEqual, "🔴")
	})
}

func TestExperience(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	Convey("Given hire dates relative to now", t, func() {
		Convey("Then tenure ignores the day of month", func() {
			hire := time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)
			m, ok := scoring.TenureMonths(&hire, now)
			So(ok, ShouldBeTrue)
			So(m, ShouldEqual, 1)
		})

		Convey("Then a future hire date is unknown", func() {
			hire := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
			m, ok := scoring.TenureMonths(&hire, now)
			So(ok, ShouldBeFalse)
			So(scoring.Experience(m, ok), ShouldResemble, scoring.UnknownExperience)
		})

		Convey("Then a missing hire date is unknown", func() {
			_, ok := scoring.TenureMonths(nil, now)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Tier boundaries", t, func() {
		So(scoring.Experience(0, true).Label, ShouldEqual, "New Hire")
		So(scoring.Experience(3, true).Label, ShouldEqual, "Junior")
		So(scoring.Experience(12, true).Label, ShouldEqual, "Established")
		So(scoring.Experience(23, true).Label, ShouldEqual, "Established")
		So(scoring.Experience(24, true).Label, ShouldEqual, "Specialist")
		So(scoring.Experience(48, true).Label, ShouldEqual, "Senior")
		So(scoring.Experience(84, true).Label, ShouldEqual, "Expert")
		So(scoring.Experience(-1, true).Label, ShouldEqual, "Unknown")
	})
}

func TestEmployment(t *testing.T) {
	Convey("Employment type follows weekly hours", t, func() {
		So(scoring.Employment(ptr(34.9)).Type, ShouldEqual, model.EmploymentPart)
		So(scoring.Employment(ptr(35)).Type, ShouldEqual, model.EmploymentFull)
		So(scoring.Employment(nil).Label, ShouldEqual, "Full-time")
		So(scoring.Employment(ptr(0)).Label, ShouldEqual, "Part-time")
	})
}
