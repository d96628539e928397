package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/puckpicks/internal/domain/model"
	"github.com/okian/puckpicks/pkg/metrics"
)

type predictionKey struct {
	userID string
	slug   string
}

// MemoryStore is an in-process Store guarded by a RWMutex.
type MemoryStore struct {
	opts options

	mu          sync.RWMutex
	series      map[string]model.Series
	predictions map[predictionKey]model.Prediction
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{
		opts:        o,
		series:      make(map[string]model.Series),
		predictions: make(map[predictionKey]model.Prediction),
	}
}

func (m *MemoryStore) UpsertSeries(_ context.Context, s model.Series) error {
	if err := validateSeries(s); err != nil {
		return err
	}
	start := time.Now()
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = m.opts.now()
	}
	if s.NextGameAt != nil {
		at := *s.NextGameAt
		s.NextGameAt = &at
	}

	m.mu.Lock()
	m.series[s.Slug] = s
	n := len(m.series)
	m.mu.Unlock()

	metrics.UpdateSeriesTracked(n)
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

func (m *MemoryStore) Series(_ context.Context, slug string) (model.Series, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.series[slug]
	if !ok {
		return model.Series{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) SeriesByRound(_ context.Context, round int) ([]model.Series, error) {
	start := time.Now()
	m.mu.RLock()
	out := make([]model.Series, 0, 8)
	for _, s := range m.series {
		if s.Round == round {
			out = append(out, s)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	return out, nil
}

func (m *MemoryStore) Rounds(_ context.Context) ([]int, error) {
	m.mu.RLock()
	seen := make(map[int]struct{}, 4)
	for _, s := range m.series {
		seen[s.Round] = struct{}{}
	}
	m.mu.RUnlock()

	rounds := make([]int, 0, len(seen))
	for r := range seen {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)
	return rounds, nil
}

func (m *MemoryStore) UpsertPrediction(_ context.Context, p model.Prediction) (model.Prediction, error) {
	if err := validatePrediction(p); err != nil {
		return model.Prediction{}, err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = m.opts.now()
	}
	key := predictionKey{userID: p.UserID, slug: p.Slug}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.predictions[key]; ok {
		p.ID = existing.ID
	}
	m.predictions[key] = p
	return p, nil
}

func (m *MemoryStore) Prediction(_ context.Context, userID, slug string) (model.Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.predictions[predictionKey{userID: userID, slug: slug}]
	if !ok {
		return model.Prediction{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) PredictionsByRound(_ context.Context, userID string, round int) (map[string]model.Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]model.Prediction)
	for key, p := range m.predictions {
		if key.userID != userID {
			continue
		}
		if s, ok := m.series[key.slug]; ok && s.Round == round {
			out[key.slug] = p
		}
	}
	return out, nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.series), nil
}
