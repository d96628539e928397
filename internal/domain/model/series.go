// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/puckpicks/internal/domain/series"
)

// Winner records which seed has clinched a series.
type Winner string

// Winner values.
const (
	WinnerTop     Winner = "TOP"
	WinnerBottom  Winner = "BOTTOM"
	WinnerUnknown Winner = "UNKNOWN"
)

// SeedSide is one team of a series as reported by the upstream feed.
type SeedSide struct {
	Name         string // full team name, e.g. "Boston Bruins"
	Abbreviation string // e.g. "BOS"
	Wins         int    // series wins so far, 0..W
}

// Series is a snapshot of one playoff series.
type Series struct {
	Slug       string // stable upstream identifier, e.g. "bruins-vs-panthers-series-a"
	Round      int
	HighSeed   SeedSide
	LowSeed    SeedSide
	NextGameAt *time.Time // start of the next or current game; nil when unscheduled
	UpdatedAt  time.Time
}

// Score renders the live series score as "high-low".
func (s Series) Score() string {
	return strconv.Itoa(s.HighSeed.Wins) + "-" + strconv.Itoa(s.LowSeed.Wins)
}

// Winner reports which seed reached winsRequired, if any.
func (s Series) Winner(winsRequired int) Winner {
	switch {
	case s.HighSeed.Wins == winsRequired:
		return WinnerTop
	case s.LowSeed.Wins == winsRequired:
		return WinnerBottom
	default:
		return WinnerUnknown
	}
}

// Sides converts the snapshot into classifier inputs, high seed first.
func (s Series) Sides() (high, low series.Side[string]) {
	return series.Side[string]{Name: s.HighSeed.Name, Wins: s.HighSeed.Wins},
		series.Side[string]{Name: s.LowSeed.Name, Wins: s.LowSeed.Wins}
}

// Fingerprint identifies the observable state of the snapshot. Two snapshots
// with the same fingerprint classify identically.
func (s Series) Fingerprint() string {
	next := "-"
	if s.NextGameAt != nil {
		next = strconv.FormatInt(s.NextGameAt.Unix(), 10)
	}
	return strings.Join([]string{
		s.Slug,
		strconv.Itoa(s.Round),
		s.HighSeed.Name,
		s.LowSeed.Name,
		s.Score(),
		next,
	}, "|")
}

// Prediction is a user's saved prediction for one series.
type Prediction struct {
	ID        string // uuid
	UserID    string
	Slug      string
	Score     string // one of series.Rules.ValidScores
	UpdatedAt time.Time
}
