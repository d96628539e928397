// Package series classifies the state of a first-to-W playoff series and
// grades a user's predicted final score against it.
//
// Everything in this package is pure: callers pass snapshots of the live
// score, the optional next game start time and the stored prediction, and get
// back a Progression and an Outcome. Nothing is cached between calls, so the
// same inputs always produce the same classification and concurrent callers
// need no synchronization.
//
// Preconditions: actual win counts are in 0..W and at most one side equals W.
// Upstream ingestion enforces this; the classifiers do not re-check it.
package series

import "strconv"

// Default rule constants for a best-of-seven series.
const (
	DefaultWinsRequired     = 4
	DefaultWinnerOnlyPoints = 1
	DefaultExactPoints      = 2
	DefaultLengthOnlyPoints = 0
)

// NoPredictionScore is the wire form of "no prediction made".
const NoPredictionScore = "no-prediction"

// Option applies a configuration option to Rules.
type Option func(*Rules)

// WithWinsRequired sets the number of wins needed to clinch a series.
func WithWinsRequired(wins int) Option {
	return func(r *Rules) {
		if wins > 0 {
			r.winsRequired = wins
		}
	}
}

// WithLengthOnlyCredit controls whether a wrong winner with the right number
// of games is graded LengthOnlyCorrect (true) or TotallyIncorrect (false, the
// default).
func WithLengthOnlyCredit(enabled bool) Option {
	return func(r *Rules) {
		r.lengthOnlyCredit = enabled
	}
}

// WithPoints sets the points awarded per graded outcome. Negative values are ignored.
func WithPoints(winnerOnly, exact, lengthOnly int) Option {
	return func(r *Rules) {
		if winnerOnly >= 0 {
			r.winnerPoints = winnerOnly
		}
		if exact >= 0 {
			r.exactPoints = exact
		}
		if lengthOnly >= 0 {
			r.lengthOnlyPoints = lengthOnly
		}
	}
}

// Rules is the immutable configuration shared by every classifier in this
// package. Build it with NewRules; it is safe to copy and share.
type Rules struct {
	winsRequired     int
	lengthOnlyCredit bool // off: a wrong winner is always TotallyIncorrect

	winnerPoints     int
	exactPoints      int
	lengthOnlyPoints int
}

// NewRules returns best-of-seven rules with the given options applied.
func NewRules(opts ...Option) Rules {
	r := Rules{
		winsRequired:     DefaultWinsRequired,
		winnerPoints:     DefaultWinnerOnlyPoints,
		exactPoints:      DefaultExactPoints,
		lengthOnlyPoints: DefaultLengthOnlyPoints,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WinsRequired returns W, the number of wins that clinches a series.
func (r Rules) WinsRequired() int {
	if r.winsRequired <= 0 {
		return DefaultWinsRequired
	}
	return r.winsRequired
}

// LengthOnlyCredit reports whether LengthOnlyCorrect is a distinct outcome.
func (r Rules) LengthOnlyCredit() bool { return r.lengthOnlyCredit }

// ValidScores enumerates every prediction string accepted at the input
// boundary: high seed wins first ("4-0".."4-3"), then low seed wins
// ("0-4".."3-4"), then NoPredictionScore.
func (r Rules) ValidScores() []string {
	w := r.WinsRequired()
	scores := make([]string, 0, 2*w+1)
	for low := 0; low < w; low++ {
		scores = append(scores, strconv.Itoa(w)+"-"+strconv.Itoa(low))
	}
	for high := 0; high < w; high++ {
		scores = append(scores, strconv.Itoa(high)+"-"+strconv.Itoa(w))
	}
	return append(scores, NoPredictionScore)
}

// IsValidScore reports whether raw is one of ValidScores.
func (r Rules) IsValidScore(raw string) bool {
	for _, s := range r.ValidScores() {
		if s == raw {
			return true
		}
	}
	return false
}

// Points returns the points a graded outcome earns.
func (r Rules) Points(o Outcome) int {
	switch o {
	case OutcomeExactlyCorrect:
		return r.exactPoints
	case OutcomeWinnerOnlyCorrect:
		return r.winnerPoints
	case OutcomeLengthOnlyCorrect:
		return r.lengthOnlyPoints
	default:
		return 0
	}
}
