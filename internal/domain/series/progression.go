package series

import (
	"fmt"
	"time"
)

// Progression is the temporal state of a series.
type Progression uint8

// Progression values.
const (
	SeriesNotStarted Progression = iota
	SeriesInProgress
	SeriesFinished
)

var progressionNames = [...]string{
	SeriesNotStarted: "not_started",
	SeriesInProgress: "in_progress",
	SeriesFinished:   "finished",
}

func (p Progression) String() string {
	if int(p) < len(progressionNames) {
		return progressionNames[p]
	}
	return fmt.Sprintf("progression(%d)", uint8(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Progression) MarshalText() ([]byte, error) {
	if int(p) >= len(progressionNames) {
		return nil, fmt.Errorf("unknown progression %d", uint8(p))
	}
	return []byte(progressionNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Progression) UnmarshalText(text []byte) error {
	for i, name := range progressionNames {
		if name == string(text) {
			*p = Progression(i)
			return nil
		}
	}
	return fmt.Errorf("unknown progression %q", text)
}

// Progression classifies a series from its current win counts and the start
// time of the next or current game (nil when nothing is scheduled).
//
// Order matters: a side at W finishes the series regardless of schedule; any
// recorded win or an elapsed start time means the series is under way.
func (r Rules) Progression(highWins, lowWins int, nextGame *time.Time, now time.Time) Progression {
	w := r.WinsRequired()
	if highWins == w || lowWins == w {
		return SeriesFinished
	}
	if highWins > 0 || lowWins > 0 {
		return SeriesInProgress
	}
	if nextGame != nil && !now.Before(*nextGame) {
		return SeriesInProgress
	}
	return SeriesNotStarted
}
