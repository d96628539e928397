// Package poller periodically fetches the playoff feed and enqueues the
// series snapshots it returns.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/puckpicks/internal/adapters/nhl"
	"github.com/okian/puckpicks/internal/domain/model"
	"github.com/okian/puckpicks/pkg/logger"
	"github.com/okian/puckpicks/pkg/metrics"
)

const defaultInterval = time.Minute

// Fetcher returns the current playoff round.
type Fetcher interface {
	FetchPlayoffs(ctx context.Context) (nhl.Result, error)
}

// Enqueuer accepts snapshots without blocking.
type Enqueuer interface {
	Enqueue(ctx context.Context, s model.Series) bool
}

// Stats summarises poller activity.
type Stats struct {
	Polls    int64     `json:"polls"`
	Failures int64     `json:"failures"`
	Enqueued int64     `json:"enqueued"`
	Dropped  int64     `json:"dropped"`
	Skipped  int64     `json:"skipped"`
	LastPoll time.Time `json:"last_poll"`
}

// Poller runs Fetcher on a ticker.
type Poller struct {
	fetcher  Fetcher
	queue    Enqueuer
	interval time.Duration
	logger   logger.Logger

	polls, failures, enqueued, dropped, skipped atomic.Int64
	lastPoll                                    atomic.Int64 // unix nanos

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Option applies a configuration option to the Poller.
type Option func(*Poller)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Poller.
func New(fetcher Fetcher, queue Enqueuer, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		queue:    queue,
		interval: defaultInterval,
		logger:   logger.Get().Named("poller"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls once immediately and then every interval until ctx is done or
// Stop is called.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.PollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce fetches the feed and enqueues every snapshot. It returns the
// number of snapshots enqueued.
func (p *Poller) PollOnce(ctx context.Context) int {
	p.polls.Add(1)
	p.lastPoll.Store(time.Now().UnixNano())

	res, err := p.fetcher.FetchPlayoffs(ctx)
	if err != nil {
		p.failures.Add(1)
		metrics.RecordPoll("error")
		metrics.RecordErrorByComponent("poller", "fetch")
		p.logger.Error(ctx, "playoff poll failed", logger.Error(err))
		return 0
	}
	metrics.RecordPoll("ok")
	p.skipped.Add(int64(res.Skipped))

	n := 0
	for _, s := range res.Series {
		if p.queue.Enqueue(ctx, s) {
			n++
			continue
		}
		p.dropped.Add(1)
		p.logger.Warn(ctx, "snapshot dropped", logger.String("slug", s.Slug))
	}
	p.enqueued.Add(int64(n))
	p.logger.Debug(ctx, "playoff poll complete",
		logger.Int("round", res.Round), logger.Int("enqueued", n), logger.Int("skipped", res.Skipped))
	return n
}

// Stop ends Run and waits for it to return.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

// Stats returns a snapshot of the counters.
func (p *Poller) Stats() Stats {
	s := Stats{
		Polls:    p.polls.Load(),
		Failures: p.failures.Load(),
		Enqueued: p.enqueued.Load(),
		Dropped:  p.dropped.Load(),
		Skipped:  p.skipped.Load(),
	}
	if ns := p.lastPoll.Load(); ns > 0 {
		s.LastPoll = time.Unix(0, ns).UTC()
	}
	return s
}
