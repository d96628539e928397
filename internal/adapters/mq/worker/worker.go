// Package worker persists series snapshots taken off the queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/puckpicks/internal/adapters/mq/queue"
	"github.com/okian/puckpicks/internal/adapters/repository"
	"github.com/okian/puckpicks/internal/domain/dedupe"
	"github.com/okian/puckpicks/internal/domain/model"
	"github.com/okian/puckpicks/internal/domain/series"
	"github.com/okian/puckpicks/pkg/logger"
	"github.com/okian/puckpicks/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Snapshot is what workers read off the queue.
type Snapshot = queue.Snapshot

// SeriesWriter persists snapshots. Series is used to detect transitions.
type SeriesWriter interface {
	UpsertSeries(ctx context.Context, s model.Series) error
	Series(ctx context.Context, slug string) (model.Series, error)
}

// Queue defines how workers receive snapshots.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Snapshot
}

// Worker processes snapshots until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue drains.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker deduplicates snapshots and writes changed ones.
type InMemoryWorker struct {
	queue   Queue
	store   SeriesWriter
	deduper dedupe.Deduper
	locks   *slugLocks
	rules   series.Rules
	now     func() time.Time
	name    string

	processed atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, store SeriesWriter, deduper dedupe.Deduper, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		store:    store,
		deduper:  deduper,
		locks:    newSlugLocks(),
		rules:    series.NewRules(),
		now:      time.Now,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	snapshots := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-snapshots:
			if !ok {
				return
			}
			if err := w.processSnapshot(ctx, s); err != nil {
				w.logger.Error(ctx, "error processing snapshot", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns the number of snapshots this worker persisted.
func (w *InMemoryWorker) Processed() int64 {
	return w.processed.Load()
}

func (w *InMemoryWorker) processSnapshot(ctx context.Context, s Snapshot) error { //nolint:gocritic // hugeParam: value semantics across the channel
	start := time.Now()
	defer func() {
		metrics.RecordIngestLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	// The deduper entry and the stored row move together per slug.
	unlock := w.locks.lock(s.Slug)
	defer unlock()

	if w.deduper.SeenAndRecord(ctx, s.Slug, s.Fingerprint()) {
		metrics.RecordSnapshotDuplicate()
		return nil
	}

	previous, err := w.store.Series(ctx, s.Slug)
	known := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		w.deduper.Unrecord(ctx, s.Slug)
		w.fail("read_error")
		return fmt.Errorf("failed to read series %s: %w", s.Slug, err)
	}

	if known && !s.UpdatedAt.IsZero() && s.UpdatedAt.Before(previous.UpdatedAt) {
		w.deduper.SeenAndRecord(ctx, s.Slug, previous.Fingerprint())
		metrics.RecordSnapshotStale()
		w.logger.Debug(ctx, "stale snapshot skipped",
			logger.String("slug", s.Slug),
			logger.String("score", s.Score()),
			logger.String("stored_score", previous.Score()))
		return nil
	}

	if err := w.store.UpsertSeries(ctx, s); err != nil {
		w.deduper.Unrecord(ctx, s.Slug)
		w.fail("write_error")
		return fmt.Errorf("failed to store series %s: %w", s.Slug, err)
	}

	now := w.now()
	current := w.rules.Progression(s.HighSeed.Wins, s.LowSeed.Wins, s.NextGameAt, now)
	metrics.RecordSnapshotProcessed()
	metrics.RecordSeriesProgression(current.String())
	w.processed.Add(1)

	fields := []logger.Field{
		logger.String("slug", s.Slug),
		logger.String("score", s.Score()),
		logger.String("progression", current.String()),
	}
	switch {
	case !known:
		w.logger.Info(ctx, "series tracked", fields...)
	case w.rules.Progression(previous.HighSeed.Wins, previous.LowSeed.Wins, previous.NextGameAt, now) != current:
		w.logger.Info(ctx, "series progressed", append(fields,
			logger.String("winner", string(s.Winner(w.rules.WinsRequired()))))...)
	default:
		w.logger.Debug(ctx, "series updated", fields...)
	}
	return nil
}

func (w *InMemoryWorker) fail(kind string) {
	metrics.RecordSnapshotError()
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", kind)
}

// Pool manages multiple workers sharing one queue, store and deduper.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. Options apply to every worker.
func NewPool(workerCount int, q Queue, store SeriesWriter, deduper dedupe.Deduper, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	locks := newSlugLocks()
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i)), withLocks(locks)}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, store, deduper, wopts...)
	}
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns the number of snapshots persisted by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Shutdown closes the queue and lets workers drain it. Workers still busy
// when ctx or the pool timeout expires are stopped without draining.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for i, w := range p.workers {
		select {
		case <-w.done:
			continue
		case <-drainCtx.Done():
		}
		p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
		if err := w.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	metrics.UpdateWorkerCount(0)
	return errors.Join(errs...)
}
