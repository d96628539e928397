package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/okian/puckpicks/internal/adapters/repository"
	"github.com/okian/puckpicks/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var seriesCols = []string{
	"slug", "round", "high_name", "high_abbr", "high_wins",
	"low_name", "low_abbr", "low_wins", "next_game_at", "updated_at",
}

func TestPostgresStoreSeries(t *testing.T) {
	ctx := context.Background()

	Convey("Given a postgres store on a mock database", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		defer db.Close()

		store := repository.NewPostgresStore(db, repository.WithClock(func() time.Time { return fixedNow }))

		Convey("When migrating", func() {
			mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS series")).
				WillReturnResult(sqlmock.NewResult(0, 0))

			So(store.Migrate(ctx), ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("When upserting a series", func() {
			s := newSeries("bruins-vs-panthers", 1, 3, 1)
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO series")).
				WithArgs("bruins-vs-panthers", 1, "High bruins-vs-panthers", "HI", 3,
					"Low bruins-vs-panthers", "LO", 1, nil, fixedNow).
				WillReturnResult(sqlmock.NewResult(1, 1))

			So(store.UpsertSeries(ctx, s), ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("When the database rejects an upsert", func() {
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO series")).
				WillReturnError(errors.New("connection reset"))

			err := store.UpsertSeries(ctx, newSeries("x", 1, 0, 0))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "connection reset")
		})

		Convey("When reading a scheduled series", func() {
			next := fixedNow.Add(2 * time.Hour)
			mock.ExpectQuery(regexp.QuoteMeta("SELECT " + "slug, round")).
				WithArgs("bruins-vs-panthers").
				WillReturnRows(sqlmock.NewRows(seriesCols).
					AddRow("bruins-vs-panthers", 1, "Boston Bruins", "BOS", 0, "Florida Panthers", "FLA", 0, next, fixedNow))

			got, err := store.Series(ctx, "bruins-vs-panthers")

			So(err, ShouldBeNil)
			So(got.HighSeed.Name, ShouldEqual, "Boston Bruins")
			So(got.NextGameAt, ShouldNotBeNil)
			So(got.NextGameAt.Equal(next), ShouldBeTrue)
		})

		Convey("When reading an unknown series", func() {
			mock.ExpectQuery(regexp.QuoteMeta("FROM series WHERE slug = $1")).
				WithArgs("missing").
				WillReturnError(sql.ErrNoRows)

			_, err := store.Series(ctx, "missing")

			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When listing a round", func() {
			mock.ExpectQuery(regexp.QuoteMeta("FROM series WHERE round = $1 ORDER BY slug")).
				WithArgs(2).
				WillReturnRows(sqlmock.NewRows(seriesCols).
					AddRow("a", 2, "A", "AAA", 4, "B", "BBB", 2, nil, fixedNow).
					AddRow("c", 2, "C", "CCC", 1, "D", "DDD", 1, nil, fixedNow))

			list, err := store.SeriesByRound(ctx, 2)

			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 2)
			So(list[0].Score(), ShouldEqual, "4-2")
			So(list[1].NextGameAt, ShouldBeNil)
		})

		Convey("When listing rounds and counting", func() {
			mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT round FROM series")).
				WillReturnRows(sqlmock.NewRows([]string{"round"}).AddRow(1).AddRow(2))
			mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM series")).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

			rounds, err := store.Rounds(ctx)
			So(err, ShouldBeNil)
			So(rounds, ShouldResemble, []int{1, 2})

			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 12)
		})
	})
}

func TestPostgresStorePredictions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a postgres store on a mock database", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		defer db.Close()

		store := repository.NewPostgresStore(db, repository.WithClock(func() time.Time { return fixedNow }))

		Convey("When upserting over an existing prediction", func() {
			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO predictions")).
				WithArgs("new-id", "u1", "r1", "4-2", fixedNow).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("old-id"))

			got, err := store.UpsertPrediction(ctx, model.Prediction{ID: "new-id", UserID: "u1", Slug: "r1", Score: "4-2"})

			Convey("Then the stored ID is returned", func() {
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "old-id")
				So(got.UpdatedAt, ShouldEqual, fixedNow)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When reading a missing prediction", func() {
			mock.ExpectQuery(regexp.QuoteMeta("FROM predictions WHERE user_id = $1 AND slug = $2")).
				WithArgs("u1", "r9").
				WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "slug", "score", "updated_at"}))

			_, err := store.Prediction(ctx, "u1", "r9")

			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When listing a user's round", func() {
			mock.ExpectQuery(regexp.QuoteMeta("FROM predictions p JOIN series s")).
				WithArgs("u1", 1).
				WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "slug", "score", "updated_at"}).
					AddRow("a", "u1", "r1", "4-1", fixedNow).
					AddRow("b", "u1", "r2", "no-prediction", fixedNow))

			picks, err := store.PredictionsByRound(ctx, "u1", 1)

			So(err, ShouldBeNil)
			So(len(picks), ShouldEqual, 2)
			So(picks["r2"].Score, ShouldEqual, "no-prediction")
		})
	})
}
