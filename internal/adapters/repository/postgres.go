package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/okian/puckpicks/internal/domain/model"
	"github.com/okian/puckpicks/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS series (
	slug         TEXT PRIMARY KEY,
	round        INTEGER NOT NULL,
	high_name    TEXT NOT NULL,
	high_abbr    TEXT NOT NULL,
	high_wins    INTEGER NOT NULL,
	low_name     TEXT NOT NULL,
	low_abbr     TEXT NOT NULL,
	low_wins     INTEGER NOT NULL,
	next_game_at TIMESTAMPTZ NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS series_round_idx ON series (round);
CREATE TABLE IF NOT EXISTS predictions (
	id         UUID NOT NULL,
	user_id    TEXT NOT NULL,
	slug       TEXT NOT NULL REFERENCES series (slug),
	score      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, slug)
);`

const seriesColumns = "slug, round, high_name, high_abbr, high_wins, low_name, low_abbr, low_wins, next_game_at, updated_at"

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db   *sql.DB
	opts options
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB, opts ...Option) *PostgresStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &PostgresStore{db: db, opts: o}
}

// OpenPostgres opens and pings a PostgreSQL database.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertSeries(ctx context.Context, sr model.Series) error {
	if err := validateSeries(sr); err != nil {
		return err
	}
	if sr.UpdatedAt.IsZero() {
		sr.UpdatedAt = s.opts.now()
	}
	start := time.Now()
	query := `
		INSERT INTO series (` + seriesColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (slug) DO UPDATE SET
			round = EXCLUDED.round,
			high_name = EXCLUDED.high_name,
			high_abbr = EXCLUDED.high_abbr,
			high_wins = EXCLUDED.high_wins,
			low_name = EXCLUDED.low_name,
			low_abbr = EXCLUDED.low_abbr,
			low_wins = EXCLUDED.low_wins,
			next_game_at = EXCLUDED.next_game_at,
			updated_at = EXCLUDED.updated_at`
	_, err := s.db.ExecContext(ctx, query,
		sr.Slug, sr.Round,
		sr.HighSeed.Name, sr.HighSeed.Abbreviation, sr.HighSeed.Wins,
		sr.LowSeed.Name, sr.LowSeed.Abbreviation, sr.LowSeed.Wins,
		nullTime(sr.NextGameAt), sr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert series %s: %w", sr.Slug, err)
	}
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeries(row rowScanner) (model.Series, error) {
	var (
		sr   model.Series
		next sql.NullTime
	)
	err := row.Scan(&sr.Slug, &sr.Round,
		&sr.HighSeed.Name, &sr.HighSeed.Abbreviation, &sr.HighSeed.Wins,
		&sr.LowSeed.Name, &sr.LowSeed.Abbreviation, &sr.LowSeed.Wins,
		&next, &sr.UpdatedAt)
	if err != nil {
		return model.Series{}, err
	}
	if next.Valid {
		at := next.Time
		sr.NextGameAt = &at
	}
	return sr, nil
}

func (s *PostgresStore) Series(ctx context.Context, slug string) (model.Series, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+seriesColumns+" FROM series WHERE slug = $1", slug)
	sr, err := scanSeries(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Series{}, ErrNotFound
	}
	if err != nil {
		return model.Series{}, fmt.Errorf("failed to get series %s: %w", slug, err)
	}
	return sr, nil
}

func (s *PostgresStore) SeriesByRound(ctx context.Context, round int) ([]model.Series, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, "SELECT "+seriesColumns+" FROM series WHERE round = $1 ORDER BY slug", round)
	if err != nil {
		return nil, fmt.Errorf("failed to list round %d: %w", round, err)
	}
	defer rows.Close()

	var out []model.Series
	for rows.Next() {
		sr, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list round %d: %w", round, err)
	}
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	return out, nil
}

func (s *PostgresStore) Rounds(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT round FROM series ORDER BY round")
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

func (s *PostgresStore) UpsertPrediction(ctx context.Context, p model.Prediction) (model.Prediction, error) {
	if err := validatePrediction(p); err != nil {
		return model.Prediction{}, err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.opts.now()
	}
	query := `
		INSERT INTO predictions (id, user_id, slug, score, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, slug) DO UPDATE SET
			score = EXCLUDED.score,
			updated_at = EXCLUDED.updated_at
		RETURNING id`
	if err := s.db.QueryRowContext(ctx, query, p.ID, p.UserID, p.Slug, p.Score, p.UpdatedAt).Scan(&p.ID); err != nil {
		return model.Prediction{}, fmt.Errorf("failed to upsert prediction: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Prediction(ctx context.Context, userID, slug string) (model.Prediction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, slug, score, updated_at FROM predictions WHERE user_id = $1 AND slug = $2",
		userID, slug)

	var p model.Prediction
	err := row.Scan(&p.ID, &p.UserID, &p.Slug, &p.Score, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Prediction{}, ErrNotFound
	}
	if err != nil {
		return model.Prediction{}, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) PredictionsByRound(ctx context.Context, userID string, round int) (map[string]model.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.user_id, p.slug, p.score, p.updated_at
		FROM predictions p JOIN series s ON s.slug = p.slug
		WHERE p.user_id = $1 AND s.round = $2`, userID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.Prediction)
	for rows.Next() {
		var p model.Prediction
		if err := rows.Scan(&p.ID, &p.UserID, &p.Slug, &p.Score, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		out[p.Slug] = p
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM series").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count series: %w", err)
	}
	return n, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
