package service

import "errors"

// Sentinel errors returned by Service operations.
var (
	ErrMissingUser       = errors.New("missing user id")
	ErrInvalidPrediction = errors.New("invalid prediction")
	ErrSeriesNotFound    = errors.New("series not found")
	ErrPredictionLocked  = errors.New("prediction locked: series has started")
)
