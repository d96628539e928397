package api

import (
	"errors"
	"net/http"

	service "github.com/okian/puckpicks/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("missing X-User-ID header")
)

// statusFor maps service errors to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidPrediction):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthorized), errors.Is(err, service.ErrMissingUser):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrSeriesNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrPredictionLocked):
		return http.StatusConflict, "prediction_locked"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
