// Package types contains view types shared by the service and its adapters.
package types

import "time"

// Team is one side of a series card.
type Team struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Wins         int    `json:"wins"`
}

// SeriesCard is a series as presented to one user, with their prediction
// graded against the live score.
type SeriesCard struct {
	Slug        string     `json:"slug"`
	Round       int        `json:"round"`
	HighSeed    Team       `json:"high_seed"`
	LowSeed     Team       `json:"low_seed"`
	Score       string     `json:"score"`
	Winner      string     `json:"winner"`
	NextGameAt  *time.Time `json:"next_game_at,omitempty"`
	Progression string     `json:"progression"`
	Prediction  string     `json:"prediction"`
	Outcome     string     `json:"outcome"`
	Editable    bool       `json:"editable"`
	Points      int        `json:"points"`
}

// Board is one user's view of a playoff round.
type Board struct {
	Round  int          `json:"round"`
	Series []SeriesCard `json:"series"`
}
