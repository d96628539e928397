// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/puckpicks/internal/domain/series"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Series rules.
	WinsRequired     int  `koanf:"wins_required"`
	LengthOnlyCredit bool `koanf:"length_only_credit"`
	PointsWinner     int  `koanf:"points_winner"`
	PointsExact      int  `koanf:"points_exact"`
	PointsLengthOnly int  `koanf:"points_length_only"`

	// Upstream feed. PollIntervalSeconds of 0 disables polling.
	NHLBaseURL            string  `koanf:"nhl_base_url"`
	Season                string  `koanf:"season"`
	PollIntervalSeconds   int     `koanf:"poll_interval_seconds"`
	RequestTimeoutSeconds int     `koanf:"request_timeout_seconds"`
	RequestsPerSecond     float64 `koanf:"requests_per_second"`

	// Ingestion pipeline.
	QueueSize   int `koanf:"queue_size"`
	WorkerCount int `koanf:"worker_count"`
	DedupeSize  int `koanf:"dedupe_size"`

	// DatabaseDSN selects PostgreSQL storage; empty keeps everything in memory.
	DatabaseDSN string `koanf:"database_dsn"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		WinsRequired:          series.DefaultWinsRequired,
		LengthOnlyCredit:      false,
		PointsWinner:          series.DefaultWinnerOnlyPoints,
		PointsExact:           series.DefaultExactPoints,
		PointsLengthOnly:      series.DefaultLengthOnlyPoints,
		NHLBaseURL:            "https://statsapi.web.nhl.com",
		Season:                "20222023",
		PollIntervalSeconds:   60,
		RequestTimeoutSeconds: 10,
		RequestsPerSecond:     1,
		QueueSize:             1024,
		WorkerCount:           runtime.NumCPU(),
		DedupeSize:            4096,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WinsRequired < 1:
		return fmt.Errorf("%w: wins_required must be positive, got %d", ErrInvalidConfig, c.WinsRequired)
	case c.PointsWinner < 0 || c.PointsExact < 0 || c.PointsLengthOnly < 0:
		return fmt.Errorf("%w: points must not be negative", ErrInvalidConfig)
	case c.PollIntervalSeconds < 0:
		return fmt.Errorf("%w: poll_interval_seconds must not be negative", ErrInvalidConfig)
	case c.PollIntervalSeconds > 0 && c.NHLBaseURL == "":
		return fmt.Errorf("%w: nhl_base_url is required when polling", ErrInvalidConfig)
	case c.RequestTimeoutSeconds < 1:
		return fmt.Errorf("%w: request_timeout_seconds must be positive", ErrInvalidConfig)
	case c.RequestsPerSecond <= 0:
		return fmt.Errorf("%w: requests_per_second must be positive", ErrInvalidConfig)
	case c.QueueSize < 1 || c.WorkerCount < 1:
		return fmt.Errorf("%w: queue_size and worker_count must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// Rules builds the series rules described by the config.
func (c *Config) Rules() series.Rules {
	return series.NewRules(
		series.WithWinsRequired(c.WinsRequired),
		series.WithLengthOnlyCredit(c.LengthOnlyCredit),
		series.WithPoints(c.PointsWinner, c.PointsExact, c.PointsLengthOnly),
	)
}

// PollInterval returns the feed polling interval, zero when disabled.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// RequestTimeout returns the per-request upstream timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
