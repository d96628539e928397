package series

import "time"

// Snapshot is everything known about one series and one user's prediction
// at a point in time.
type Snapshot[T comparable] struct {
	High       Side[T]
	Low        Side[T]
	NextGameAt *time.Time
	Prediction Prediction
}

// Evaluation is the combined classification of a Snapshot.
type Evaluation struct {
	Progression Progression
	Outcome     Outcome
	// Editable is true only while the series has not started.
	Editable bool
	Points   int
}

// Evaluate classifies progression at now and grades the prediction.
func Evaluate[T comparable](r Rules, s Snapshot[T], now time.Time) Evaluation {
	p := r.Progression(s.High.Wins, s.Low.Wins, s.NextGameAt, now)
	o := ClassifyOutcome(r, p, s.Prediction, s.High, s.Low)
	return Evaluation{
		Progression: p,
		Outcome:     o,
		Editable:    p == SeriesNotStarted,
		Points:      r.Points(o),
	}
}
