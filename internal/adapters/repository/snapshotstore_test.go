package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/salesdash/internal/adapters/repository"
	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/internal/domain/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

func rated(name string, score float64) model.EnrichedEmployee {
	return model.EnrichedEmployee{
		EmployeeAggregate: model.EmployeeAggregate{EmployeeName: name},
		Rating:            &model.RatingResult{Score: score},
	}
}

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := repository.NewSnapshotStore(repository.WithTopCacheSize(3))

		Convey("Then reads report that nothing is loaded", func() {
			_, err := store.Current(ctx)
			So(errors.Is(err, repository.ErrNoSnapshot), ShouldBeTrue)
			_, err = store.Rank(ctx, "ANY")
			So(errors.Is(err, repository.ErrNoSnapshot), ShouldBeTrue)
			So(store.Count(ctx), ShouldEqual, 0)
		})

		Convey("When a scored period is published", func() {
			res := pipeline.Result{Employees: []model.EnrichedEmployee{
				rated("CARLA", 60),
				rated("ANNA", 90),
				{EmployeeAggregate: model.EmployeeAggregate{EmployeeName: "NEW"}},
				rated("BRUNO", 60),
				rated("DARIO", 40),
			}}
			snap := store.Publish(ctx, model.DateRange{}, model.Filters{}, res)

			Convey("Then entries are ranked with shared ranks for ties", func() {
				So(snap.Version, ShouldEqual, 1)
				So(store.Count(ctx), ShouldEqual, 5)

				e, err := store.Rank(ctx, "BRUNO")
				So(err, ShouldBeNil)
				So(e.Rank, ShouldEqual, 2)
				e, _ = store.Rank(ctx, "CARLA")
				So(e.Rank, ShouldEqual, 2)
				e, _ = store.Rank(ctx, "DARIO")
				So(e.Rank, ShouldEqual, 3)
				e, _ = store.Rank(ctx, "NEW")
				So(e.Rank, ShouldEqual, 4)
			})

			Convey("And TopN is capped by the cache size", func() {
				top, err := store.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
				So(top[0].Employee.EmployeeName, ShouldEqual, "ANNA")
				So(top[1].Employee.EmployeeName, ShouldEqual, "BRUNO")
			})

			Convey("And unknown names are not found", func() {
				_, err := store.Rank(ctx, "anna")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("And a second publish replaces the snapshot", func() {
				next := store.Publish(ctx, model.DateRange{}, model.Filters{}, pipeline.Result{Employees: []model.EnrichedEmployee{rated("SOLO", 10)}})
				So(next.Version, ShouldEqual, 2)
				So(store.Count(ctx), ShouldEqual, 1)
				So(snap.Entries, ShouldHaveLength, 5)
			})
		})

		Convey("Then an invalid limit is rejected", func() {
			_, err := store.TopN(ctx, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})
	})
}
