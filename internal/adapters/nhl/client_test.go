package nhl_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/okian/puckpicks/internal/adapters/nhl"
	. "github.com/smartystreets/goconvey/convey"
)

const playoffsJSON = `{
  "defaultRound": 1,
  "rounds": [
    {
      "number": 1,
      "names": {"name": "First Round", "shortName": "R1"},
      "series": [
        {
          "names": {"matchupName": "Bruins (1) vs. Panthers (4)", "matchupShortName": "BOS v FLA",
                    "teamAbbreviationA": "BOS", "teamAbbreviationB": "FLA", "seriesSlug": "bruins-vs-panthers-series-a"},
          "currentGame": {"seriesSummary": {"gameLabel": "Game 5", "gameTime": "2023-04-26T23:00:00Z", "necessary": true}},
          "matchupTeams": [
            {"team": {"name": "Florida Panthers"}, "seed": {"type": "WC2", "isTop": false}, "seriesRecord": {"wins": 1, "losses": 3}},
            {"team": {"name": "Boston Bruins"}, "seed": {"type": "1", "isTop": true}, "seriesRecord": {"wins": 3, "losses": 1}}
          ]
        },
        {
          "names": {"matchupName": "TBD", "matchupShortName": "TBD",
                    "teamAbbreviationA": "", "teamAbbreviationB": "", "seriesSlug": "tbd-series-b"},
          "currentGame": {"seriesSummary": {"gameLabel": "", "necessary": false}}
        },
        {
          "names": {"matchupName": "Broken", "matchupShortName": "BRK",
                    "teamAbbreviationA": "AAA", "teamAbbreviationB": "BBB", "seriesSlug": "broken-series-c"},
          "currentGame": {"seriesSummary": {"gameLabel": "Game 9", "necessary": true}},
          "matchupTeams": [
            {"team": {"name": "Team A"}, "seed": {"type": "1", "isTop": true}, "seriesRecord": {"wins": 5, "losses": 0}},
            {"team": {"name": "Team B"}, "seed": {"type": "2", "isTop": false}, "seriesRecord": {"wins": 0, "losses": 5}}
          ]
        },
        {
          "names": {"matchupName": "Kraken vs. Avalanche", "matchupShortName": "SEA v COL",
                    "teamAbbreviationA": "COL", "teamAbbreviationB": "SEA", "seriesSlug": "avalanche-vs-kraken-series-f"},
          "currentGame": {"seriesSummary": {"gameLabel": "", "necessary": false}},
          "matchupTeams": [
            {"team": {"name": "Colorado Avalanche"}, "seed": {"type": "1", "isTop": true}, "seriesRecord": {"wins": 3, "losses": 4}},
            {"team": {"name": "Seattle Kraken"}, "seed": {"type": "WC1", "isTop": false}, "seriesRecord": {"wins": 4, "losses": 3}}
          ]
        }
      ]
    },
    {"number": 2, "names": {"name": "Second Round", "shortName": "R2"}, "series": []}
  ]
}`

func quickBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Millisecond
	b.MaxInterval = 5 * time.Millisecond
	b.MaxElapsedTime = time.Second
	return b
}

func newClient(url string) *nhl.Client {
	return nhl.NewClient(
		nhl.WithBaseURL(url),
		nhl.WithSeason("20222023"),
		nhl.WithRequestsPerSecond(1000),
		nhl.WithBackOff(quickBackOff),
		nhl.WithClock(func() time.Time { return time.Date(2023, time.April, 25, 0, 0, 0, 0, time.UTC) }),
	)
}

func TestFetchPlayoffs(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stats API serving the first round", t, func() {
		var query string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(playoffsJSON))
		}))
		defer srv.Close()

		res, err := newClient(srv.URL).FetchPlayoffs(ctx)
		So(err, ShouldBeNil)

		Convey("Then the request asks for the expanded season", func() {
			So(query, ShouldContainSubstring, "season=20222023")
			So(query, ShouldContainSubstring, "expand=round.series")
		})

		Convey("Then valid series are mapped by seed", func() {
			So(res.Round, ShouldEqual, 1)
			So(len(res.Series), ShouldEqual, 2)

			bos := res.Series[0]
			So(bos.Slug, ShouldEqual, "bruins-vs-panthers-series-a")
			So(bos.HighSeed.Name, ShouldEqual, "Boston Bruins")
			So(bos.HighSeed.Abbreviation, ShouldEqual, "BOS")
			So(bos.LowSeed.Name, ShouldEqual, "Florida Panthers")
			So(bos.Score(), ShouldEqual, "3-1")
			So(bos.NextGameAt, ShouldNotBeNil)
			So(bos.NextGameAt.Equal(time.Date(2023, time.April, 26, 23, 0, 0, 0, time.UTC)), ShouldBeTrue)
			So(bos.UpdatedAt.Day(), ShouldEqual, 25)

			sea := res.Series[1]
			So(sea.Score(), ShouldEqual, "3-4")
			So(sea.NextGameAt, ShouldBeNil)
		})

		Convey("Then unset and impossible series are skipped", func() {
			So(res.Skipped, ShouldEqual, 2)
		})
	})

	Convey("Given a stats API whose default round is missing", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"defaultRound": 3, "rounds": []}`))
		}))
		defer srv.Close()

		_, err := newClient(srv.URL).FetchPlayoffs(ctx)

		So(errors.Is(err, nhl.ErrNoCurrentRound), ShouldBeTrue)
	})

	Convey("Given a stats API returning garbage", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := newClient(srv.URL).FetchPlayoffs(ctx)

		So(errors.Is(err, nhl.ErrDecode), ShouldBeTrue)
	})
}

func TestFetchRetries(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stats API that fails transiently", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(playoffsJSON))
		}))
		defer srv.Close()

		res, err := newClient(srv.URL).FetchPlayoffs(ctx)

		Convey("Then the client retries until it succeeds", func() {
			So(err, ShouldBeNil)
			So(calls.Load(), ShouldEqual, 3)
			So(len(res.Series), ShouldEqual, 2)
		})
	})

	Convey("Given a stats API that rejects the request", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newClient(srv.URL).FetchPlayoffs(ctx)

		Convey("Then the client gives up at once", func() {
			var serr *nhl.StatusError
			So(errors.As(err, &serr), ShouldBeTrue)
			So(serr.StatusCode, ShouldEqual, http.StatusNotFound)
			So(serr.Temporary(), ShouldBeFalse)
			So(calls.Load(), ShouldEqual, 1)
		})
	})

	Convey("Given a cancelled context", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newClient(srv.URL).FetchPlayoffs(cctx)

		So(err, ShouldNotBeNil)
	})
}
