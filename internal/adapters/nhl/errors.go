package nhl

import (
	"errors"
	"net/http"
	"strconv"
)

// Sentinel errors for feed fetching.
var (
	ErrDecode         = errors.New("nhl: decode playoff payload")
	ErrNoCurrentRound = errors.New("nhl: default round not present in payload")
)

// StatusError is returned for a non-200 upstream response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return "nhl: unexpected status " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
}

// Temporary reports whether retrying may help.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
