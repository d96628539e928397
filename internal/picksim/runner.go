package picksim

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/puckpicks/pkg/logger"
)

// Run executes a complete simulation against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := logger.Named("picksim")
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})

	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("round", cfg.Round),
		logger.Int("users", cfg.Users),
		logger.Int("workers", cfg.Workers),
	)

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	scores, err := client.Scores(ctx)
	if err != nil {
		return nil, err
	}
	board, err := client.Board(ctx, "", cfg.Round)
	if err != nil {
		return nil, err
	}
	if len(board.Series) == 0 {
		return nil, fmt.Errorf("%w: round %d", ErrNoSeries, cfg.Round)
	}
	stats.Series = len(board.Series)
	for _, c := range board.Series {
		if c.Editable {
			stats.Editable++
		}
	}

	subs := generateSubmissions(board.Series, scores, cfg.Users, cfg.Seed)
	stats.Generated = len(subs)

	res := submitAll(ctx, client, subs, cfg.Workers)
	stats.Accepted = len(res.accepted)
	stats.Locked = int(res.locked)
	stats.Failed = int(res.failed)
	log.Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("locked", stats.Locked),
		logger.Int("failed", stats.Failed),
	)

	if stats.Verified, err = verifyBoards(ctx, client, cfg.Round, res.accepted); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "simulation completed",
		logger.Int("verified", stats.Verified),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}
