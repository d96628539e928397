// Package service wires storage, ingestion and the series engine into the
// operations served by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/puckpicks/internal/adapters/mq/poller"
	"github.com/okian/puckpicks/internal/adapters/mq/queue"
	"github.com/okian/puckpicks/internal/adapters/mq/worker"
	"github.com/okian/puckpicks/internal/adapters/repository"
	"github.com/okian/puckpicks/internal/domain/dedupe"
	"github.com/okian/puckpicks/internal/domain/model"
	"github.com/okian/puckpicks/internal/domain/series"
	"github.com/okian/puckpicks/internal/domain/types"
	"github.com/okian/puckpicks/pkg/logger"
	"github.com/okian/puckpicks/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// Service implements the API dependencies for the playoff picks system.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	rules   series.Rules
	fetcher poller.Fetcher
	now     func() time.Time
	newID   func() string

	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	poller  *poller.Poller

	workerCount  int
	queueSize    int
	dedupeSize   int
	pollInterval time.Duration

	started    bool
	cancel     context.CancelFunc
	stopPoller context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Reads work before Start; ingestion does not.
func New(opts ...Option) *Service {
	s := &Service{
		rules:        series.NewRules(),
		now:          time.Now,
		newID:        uuid.NewString,
		workerCount:  runtime.NumCPU(),
		queueSize:    1024,
		dedupeSize:   4096,
		pollInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithClock(s.now))
	}
	return s
}

// Start creates the queue, workers and, when a fetcher is set, the poller.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting playoff picks service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store, s.deduper,
		worker.WithRules(s.rules),
		worker.WithClock(s.now),
		worker.WithLogger(s.logger.Named("worker")),
	)
	s.pool.Start(runCtx)

	if s.fetcher != nil {
		pollCtx, stopPoller := context.WithCancel(runCtx)
		s.stopPoller = stopPoller
		s.poller = poller.New(s.fetcher, s.queue,
			poller.WithInterval(s.pollInterval),
			poller.WithLogger(s.logger.Named("poller")),
		)
		go s.poller.Run(pollCtx)
	}

	s.started = true
	s.logger.Info(ctx, "playoff picks service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Bool("polling", s.poller != nil),
		logger.Int("winsRequired", s.rules.WinsRequired()),
	)
	return nil
}

// Stop stops polling, drains the queue and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping playoff picks service...")

	// Cancel first so an in-flight fetch does not hold up shutdown.
	if s.poller != nil {
		s.stopPoller()
		s.poller.Stop()
	}
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "playoff picks service stopped")
}

// Ingest enqueues one series snapshot for the workers. It returns false when
// the service is stopped or the queue is full.
func (s *Service) Ingest(ctx context.Context, sr model.Series) bool { //nolint:gocritic // hugeParam
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return false
	}
	return s.queue.Enqueue(ctx, sr)
}

// Rules returns the series rules in effect.
func (s *Service) Rules() series.Rules {
	return s.rules
}

// Scores returns every accepted prediction string.
func (s *Service) Scores() []string {
	return s.rules.ValidScores()
}

// Rounds returns the rounds with at least one series.
func (s *Service) Rounds(ctx context.Context) ([]int, error) {
	return s.store.Rounds(ctx)
}

// Board returns every series of a round as seen by userID.
func (s *Service) Board(ctx context.Context, userID string, round int) (types.Board, error) {
	list, err := s.store.SeriesByRound(ctx, round)
	if err != nil {
		return types.Board{}, err
	}
	picks := map[string]model.Prediction{}
	if userID != "" {
		if picks, err = s.store.PredictionsByRound(ctx, userID, round); err != nil {
			return types.Board{}, err
		}
	}

	now := s.now()
	board := types.Board{Round: round, Series: make([]types.SeriesCard, 0, len(list))}
	for _, sr := range list {
		card := buildCard(s.rules, sr, s.decodePrediction(ctx, picks[sr.Slug]), now)
		board.Series = append(board.Series, card)
	}
	return board, nil
}

// Card returns one series as seen by userID.
func (s *Service) Card(ctx context.Context, userID, slug string) (types.SeriesCard, error) {
	sr, err := s.lookup(ctx, slug)
	if err != nil {
		return types.SeriesCard{}, err
	}

	var stored model.Prediction
	if userID != "" {
		stored, err = s.store.Prediction(ctx, userID, slug)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return types.SeriesCard{}, err
		}
	}
	return buildCard(s.rules, sr, s.decodePrediction(ctx, stored), s.now()), nil
}

// SubmitPrediction saves userID's prediction for a series that has not
// started yet.
func (s *Service) SubmitPrediction(ctx context.Context, userID, slug, score string) (types.SeriesCard, error) {
	if userID == "" {
		return types.SeriesCard{}, ErrMissingUser
	}
	pred, err := s.rules.ParsePrediction(score)
	if err != nil {
		metrics.RecordPredictionRejected("invalid")
		return types.SeriesCard{}, fmt.Errorf("%w: %w", ErrInvalidPrediction, err)
	}

	sr, err := s.lookup(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrSeriesNotFound) {
			metrics.RecordPredictionRejected("not_found")
		}
		return types.SeriesCard{}, err
	}

	now := s.now()
	if p := s.rules.Progression(sr.HighSeed.Wins, sr.LowSeed.Wins, sr.NextGameAt, now); p != series.SeriesNotStarted {
		metrics.RecordPredictionRejected("locked")
		return types.SeriesCard{}, fmt.Errorf("%w: %s is %s", ErrPredictionLocked, slug, p)
	}

	saved, err := s.store.UpsertPrediction(ctx, model.Prediction{
		ID:        s.newID(),
		UserID:    userID,
		Slug:      slug,
		Score:     pred.String(),
		UpdatedAt: now,
	})
	if err != nil {
		return types.SeriesCard{}, err
	}
	metrics.RecordPredictionSubmitted()
	s.logger.Info(ctx, "prediction saved",
		logger.String("user", userID),
		logger.String("slug", slug),
		logger.String("score", saved.Score),
		logger.String("id", saved.ID),
	)
	return buildCard(s.rules, sr, pred, now), nil
}

func (s *Service) lookup(ctx context.Context, slug string) (model.Series, error) {
	sr, err := s.store.Series(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Series{}, fmt.Errorf("%w: %s", ErrSeriesNotFound, slug)
	}
	return sr, err
}

// decodePrediction maps a stored row to an engine prediction. Missing or
// unreadable rows count as no prediction.
func (s *Service) decodePrediction(ctx context.Context, p model.Prediction) series.Prediction {
	if p.Score == "" {
		return series.NoPrediction()
	}
	pred, err := s.rules.ParsePrediction(p.Score)
	if err != nil {
		s.logger.Warn(ctx, "ignoring unreadable stored prediction",
			logger.String("id", p.ID), logger.String("score", p.Score), logger.Error(err))
		return series.NoPrediction()
	}
	return pred
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"winsRequired": s.rules.WinsRequired(),
	}
	if n, err := s.store.Count(ctx); err == nil {
		stats["seriesTracked"] = n
		metrics.UpdateSeriesTracked(n)
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["processed"] = s.pool.Processed()
		stats["fingerprints"] = s.deduper.Size()
		if s.poller != nil {
			stats["poller"] = s.poller.Stats()
		}
	}
	return stats
}
