package series

import "fmt"

// Outcome is the display classification of a prediction.
type Outcome uint8

// Outcome values. The last four are terminal and only reachable once the
// series is finished.
const (
	OutcomeNotStarted Outcome = iota
	OutcomeInProgress
	OutcomeNoPredictionMade
	OutcomeWinnerOnlyCorrect
	OutcomeLengthOnlyCorrect
	OutcomeTotallyIncorrect
	OutcomeExactlyCorrect
)

var outcomeNames = [...]string{
	OutcomeNotStarted:        "not_started",
	OutcomeInProgress:        "in_progress",
	OutcomeNoPredictionMade:  "no_prediction_made",
	OutcomeWinnerOnlyCorrect: "winner_only_correct",
	OutcomeLengthOnlyCorrect: "length_only_correct",
	OutcomeTotallyIncorrect:  "totally_incorrect",
	OutcomeExactlyCorrect:    "exactly_correct",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	if int(o) >= len(outcomeNames) {
		return nil, fmt.Errorf("unknown outcome %d", uint8(o))
	}
	return []byte(outcomeNames[o]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	for i, name := range outcomeNames {
		if name == string(text) {
			*o = Outcome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Terminal reports whether o is one of the four correctness grades.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeWinnerOnlyCorrect, OutcomeLengthOnlyCorrect, OutcomeTotallyIncorrect, OutcomeExactlyCorrect:
		return true
	default:
		return false
	}
}

// ClassifyOutcome grades pred against the actual series score. high and low
// carry the team names and actual win counts. It never fails: a missing
// prediction is NoPredictionMade and a tied (undecided) score on either side
// is TotallyIncorrect.
func ClassifyOutcome[T comparable](r Rules, p Progression, pred Prediction, high, low Side[T]) Outcome {
	switch p {
	case SeriesNotStarted:
		return OutcomeNotStarted
	case SeriesFinished:
	default:
		return OutcomeInProgress
	}

	if !pred.Made {
		return OutcomeNoPredictionMade
	}

	predicted, ok := Resolve(
		Side[T]{Name: high.Name, Wins: pred.Score.High},
		Side[T]{Name: low.Name, Wins: pred.Score.Low},
	)
	if !ok {
		return OutcomeTotallyIncorrect
	}
	actual, ok := Resolve(high, low)
	if !ok {
		return OutcomeTotallyIncorrect
	}

	winnerCorrect := predicted.Winner.Name == actual.Winner.Name
	lengthCorrect := predicted.Games() == actual.Games()

	switch {
	case winnerCorrect && lengthCorrect:
		return OutcomeExactlyCorrect
	case winnerCorrect:
		return OutcomeWinnerOnlyCorrect
	case lengthCorrect && r.lengthOnlyCredit:
		return OutcomeLengthOnlyCorrect
	default:
		return OutcomeTotallyIncorrect
	}
}
