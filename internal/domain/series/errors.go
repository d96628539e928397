package series

import "errors"

// Sentinel kinds for series errors.
var (
	ErrInvalidScore      = errors.New("invalid series score")
	ErrInvalidPrediction = errors.New("invalid prediction")
)
