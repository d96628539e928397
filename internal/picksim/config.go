// Package picksim drives a running picks server with simulated users and
// checks that every saved prediction reads back on the users' boards.
package picksim

import (
	"errors"
	"time"

	"github.com/okian/puckpicks/internal/domain/types"
)

// Sentinel errors returned by Run.
var (
	ErrUnhealthy   = errors.New("service unhealthy")
	ErrNoSeries    = errors.New("round has no series")
	ErrMismatch    = errors.New("board does not match submitted predictions")
	ErrUnexpected  = errors.New("unexpected response")
	ErrInvalidConf = errors.New("invalid simulation config")
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL string        // Base URL of the service
	Round   int           // Playoff round to predict
	Users   int           // Number of simulated users
	Workers int           // Number of concurrent submitters
	Timeout time.Duration // HTTP request timeout
	Seed    uint64        // Seed for score selection; runs with the same seed pick the same scores
}

func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConf, errors.New("base url is required"))
	case c.Round < 1:
		return errors.Join(ErrInvalidConf, errors.New("round must be positive"))
	case c.Users < 1 || c.Workers < 1:
		return errors.Join(ErrInvalidConf, errors.New("users and workers must be positive"))
	}
	return nil
}

// Submission is one prediction a simulated user sends.
type Submission struct {
	User  string `json:"user"`
	Slug  string `json:"slug"`
	Score string `json:"score"`
}

// Card aliases the API card shape.
type Card = types.SeriesCard

// Stats holds run statistics.
type Stats struct {
	Series    int
	Editable  int
	Generated int
	Accepted  int
	Locked    int
	Failed    int
	Verified  int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
