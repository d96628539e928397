// Package nhl fetches playoff series from the NHL stats API.
package nhl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/okian/puckpicks/internal/domain/model"
	"github.com/okian/puckpicks/internal/domain/series"
	"github.com/okian/puckpicks/pkg/logger"
	"github.com/okian/puckpicks/pkg/metrics"
)

const (
	defaultBaseURL        = "https://statsapi.web.nhl.com"
	defaultSeason         = "20222023"
	defaultTimeout        = 10 * time.Second
	defaultRequestsPerSec = 1.0
	defaultMaxElapsed     = 30 * time.Second
	playoffsPath          = "/api/v1/tournaments/playoffs"
	maxBodyBytes          = 8 << 20
)

// Result is one decoded poll of the current playoff round.
type Result struct {
	Round   int
	Series  []model.Series
	Skipped int // upstream series that failed validation
}

// Client is a rate-limited, retrying stats API client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	rps        float64
	baseURL    string
	season     string
	newBackOff func() backoff.BackOff
	rules      series.Rules
	logger     logger.Logger
	now        func() time.Time
}

// NewClient creates a new Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		rps:        defaultRequestsPerSec,
		baseURL:    defaultBaseURL,
		season:     defaultSeason,
		rules:      series.NewRules(),
		logger:     logger.Get().Named("nhl"),
		now:        time.Now,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = defaultMaxElapsed
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.limiter = rate.NewLimiter(rate.Limit(c.rps), 1)
	return c
}

// FetchPlayoffs returns the series of the current default round.
func (c *Client) FetchPlayoffs(ctx context.Context) (Result, error) {
	var payload playoffsPayload
	if err := c.getJSON(ctx, c.playoffsURL(), &payload); err != nil {
		return Result{}, err
	}

	var current *roundPayload
	for i := range payload.Rounds {
		if payload.Rounds[i].Number == payload.DefaultRound {
			current = &payload.Rounds[i]
			break
		}
	}
	if current == nil {
		return Result{}, fmt.Errorf("%w: round %d", ErrNoCurrentRound, payload.DefaultRound)
	}

	now := c.now()
	res := Result{Round: current.Number, Series: make([]model.Series, 0, len(current.Series))}
	for _, sp := range current.Series {
		s, err := sp.toSeries(current.Number, c.rules.WinsRequired(), now)
		if err != nil {
			res.Skipped++
			c.logger.Warn(ctx, "skipping upstream series", logger.Error(err))
			continue
		}
		res.Series = append(res.Series, s)
	}
	return res, nil
}

func (c *Client) playoffsURL() string {
	q := url.Values{}
	q.Set("expand", "round.series,schedule.game.seriesSummary")
	q.Set("season", c.season)
	return c.baseURL + playoffsPath + "?" + q.Encode()
}

// getJSON waits for the limiter, then GETs u with retries and decodes into v.
func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	var body []byte
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		metrics.RecordUpstreamLatency(float64(time.Since(start).Milliseconds()))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, resp.Body)
			serr := &StatusError{StatusCode: resp.StatusCode}
			if !serr.Temporary() {
				return backoff.Permanent(serr)
			}
			return serr
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return err
	}

	notify := func(err error, wait time.Duration) {
		metrics.RecordUpstreamRetry()
		c.logger.Warn(ctx, "retrying upstream request", logger.Error(err), logger.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(c.newBackOff(), ctx), notify); err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}
