package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/puckpicks/internal/adapters/repository"
	"github.com/okian/puckpicks/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2023, time.April, 17, 12, 0, 0, 0, time.UTC)

func newSeries(slug string, round, high, low int) model.Series {
	return model.Series{
		Slug:     slug,
		Round:    round,
		HighSeed: model.SeedSide{Name: "High " + slug, Abbreviation: "HI", Wins: high},
		LowSeed:  model.SeedSide{Name: "Low " + slug, Abbreviation: "LO", Wins: low},
	}
}

func TestMemoryStoreSeries(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty memory store", t, func() {
		store := repository.NewMemoryStore(repository.WithClock(func() time.Time { return fixedNow }))

		Convey("When looking up an unknown series", func() {
			_, err := store.Series(ctx, "missing")

			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When upserting a series without a slug", func() {
			err := store.UpsertSeries(ctx, model.Series{})

			So(errors.Is(err, repository.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When upserting series across rounds", func() {
			next := fixedNow.Add(time.Hour)
			first := newSeries("b-series", 1, 0, 0)
			first.NextGameAt = &next
			So(store.UpsertSeries(ctx, first), ShouldBeNil)
			So(store.UpsertSeries(ctx, newSeries("a-series", 1, 2, 1)), ShouldBeNil)
			So(store.UpsertSeries(ctx, newSeries("c-series", 2, 0, 0)), ShouldBeNil)

			Convey("Then rounds and counts reflect them", func() {
				rounds, err := store.Rounds(ctx)
				So(err, ShouldBeNil)
				So(rounds, ShouldResemble, []int{1, 2})

				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})

			Convey("Then a round lists its series ordered by slug", func() {
				list, err := store.SeriesByRound(ctx, 1)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].Slug, ShouldEqual, "a-series")
				So(list[1].Slug, ShouldEqual, "b-series")
			})

			Convey("Then writes are stamped and copied", func() {
				next = next.Add(24 * time.Hour)

				got, err := store.Series(ctx, "b-series")
				So(err, ShouldBeNil)
				So(got.UpdatedAt, ShouldEqual, fixedNow)
				So(got.NextGameAt.Equal(fixedNow.Add(time.Hour)), ShouldBeTrue)
			})

			Convey("And a newer snapshot replaces the old one", func() {
				So(store.UpsertSeries(ctx, newSeries("a-series", 1, 3, 1)), ShouldBeNil)

				got, err := store.Series(ctx, "a-series")
				So(err, ShouldBeNil)
				So(got.Score(), ShouldEqual, "3-1")
			})
		})
	})
}

func TestMemoryStorePredictions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory store with two rounds", t, func() {
		store := repository.NewMemoryStore()
		So(store.UpsertSeries(ctx, newSeries("r1", 1, 0, 0)), ShouldBeNil)
		So(store.UpsertSeries(ctx, newSeries("r2", 2, 0, 0)), ShouldBeNil)

		Convey("When saving an invalid prediction", func() {
			_, err := store.UpsertPrediction(ctx, model.Prediction{Slug: "r1"})

			So(errors.Is(err, repository.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When a user predicts and then changes their mind", func() {
			first, err := store.UpsertPrediction(ctx, model.Prediction{ID: "id-1", UserID: "u1", Slug: "r1", Score: "4-2"})
			So(err, ShouldBeNil)
			second, err := store.UpsertPrediction(ctx, model.Prediction{ID: "id-2", UserID: "u1", Slug: "r1", Score: "4-0"})
			So(err, ShouldBeNil)

			Convey("Then the original ID is kept and the score replaced", func() {
				So(first.ID, ShouldEqual, "id-1")
				So(second.ID, ShouldEqual, "id-1")

				got, err := store.Prediction(ctx, "u1", "r1")
				So(err, ShouldBeNil)
				So(got.Score, ShouldEqual, "4-0")
			})
		})

		Convey("When predictions span rounds and users", func() {
			_, _ = store.UpsertPrediction(ctx, model.Prediction{ID: "a", UserID: "u1", Slug: "r1", Score: "4-1"})
			_, _ = store.UpsertPrediction(ctx, model.Prediction{ID: "b", UserID: "u1", Slug: "r2", Score: "1-4"})
			_, _ = store.UpsertPrediction(ctx, model.Prediction{ID: "c", UserID: "u2", Slug: "r1", Score: "4-3"})

			Convey("Then a round returns only that user's picks for it", func() {
				picks, err := store.PredictionsByRound(ctx, "u1", 1)
				So(err, ShouldBeNil)
				So(len(picks), ShouldEqual, 1)
				So(picks["r1"].Score, ShouldEqual, "4-1")
			})

			Convey("Then another user's missing pick is not found", func() {
				_, err := store.Prediction(ctx, "u2", "r2")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
