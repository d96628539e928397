// Package repository persists series snapshots and user predictions.
package repository

import (
	"context"
	"strings"

	"github.com/okian/puckpicks/internal/domain/model"
)

// Store provides read/write access to series and predictions.
type Store interface {
	// UpsertSeries inserts or replaces a series snapshot keyed by slug.
	UpsertSeries(ctx context.Context, s model.Series) error
	// Series returns one series. Returns ErrNotFound if the slug is unknown.
	Series(ctx context.Context, slug string) (model.Series, error)
	// SeriesByRound returns the series of a round ordered by slug.
	SeriesByRound(ctx context.Context, round int) ([]model.Series, error)
	// Rounds returns the rounds that have at least one series, ascending.
	Rounds(ctx context.Context) ([]int, error)

	// UpsertPrediction stores a user's prediction for a series, keeping the
	// existing ID when one is already saved. It returns the stored row.
	UpsertPrediction(ctx context.Context, p model.Prediction) (model.Prediction, error)
	// Prediction returns ErrNotFound if the user has not predicted the series.
	Prediction(ctx context.Context, userID, slug string) (model.Prediction, error)
	// PredictionsByRound returns a user's predictions for a round keyed by slug.
	PredictionsByRound(ctx context.Context, userID string, round int) (map[string]model.Prediction, error)

	// Count returns the number of series tracked.
	Count(ctx context.Context) (int, error)
}

func validateSeries(s model.Series) error {
	if strings.TrimSpace(s.Slug) == "" {
		return ErrInvalidInput
	}
	return nil
}

func validatePrediction(p model.Prediction) error {
	if strings.TrimSpace(p.UserID) == "" || strings.TrimSpace(p.Slug) == "" || p.ID == "" {
		return ErrInvalidInput
	}
	return nil
}
