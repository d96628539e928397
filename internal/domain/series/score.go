package series

import (
	"fmt"
	"strconv"
	"strings"
)

// Score is a pair of series win counts, high seed first.
type Score struct {
	High int `json:"high"`
	Low  int `json:"low"`
}

// NewScore builds a Score from structural win counts. Negative counts are invalid.
func NewScore(high, low int) (Score, error) {
	if high < 0 || low < 0 {
		return Score{}, fmt.Errorf("%w: negative wins %d-%d", ErrInvalidScore, high, low)
	}
	return Score{High: high, Low: low}, nil
}

// ParseScore parses "N-M" where both components are non-negative base-10
// integers. It does not check the W boundary.
func ParseScore(raw string) (Score, error) {
	highRaw, lowRaw, ok := strings.Cut(raw, "-")
	if !ok {
		return Score{}, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	high, err := parseWins(highRaw)
	if err != nil {
		return Score{}, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	low, err := parseWins(lowRaw)
	if err != nil {
		return Score{}, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	return Score{High: high, Low: low}, nil
}

// parseWins accepts digits only, so signs and whitespace are rejected.
func parseWins(s string) (int, error) {
	if s == "" {
		return 0, ErrInvalidScore
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, ErrInvalidScore
		}
	}
	return strconv.Atoi(s)
}

// String renders the score as "high-low".
func (s Score) String() string {
	return strconv.Itoa(s.High) + "-" + strconv.Itoa(s.Low)
}

// Games returns the number of games the score represents.
func (s Score) Games() int { return s.High + s.Low }

// Prediction is a user's predicted final score. Made is false for the
// "no prediction" sentinel, in which case Score is meaningless.
type Prediction struct {
	Score Score
	Made  bool
}

// NoPrediction returns the "no prediction made" sentinel.
func NoPrediction() Prediction { return Prediction{} }

// Predict returns a made prediction without validating it; use
// Rules.ParsePrediction for untrusted input.
func Predict(high, low int) Prediction {
	return Prediction{Score: Score{High: high, Low: low}, Made: true}
}

// String renders the prediction in its wire form.
func (p Prediction) String() string {
	if !p.Made {
		return NoPredictionScore
	}
	return p.Score.String()
}

// ParsePrediction parses a stored or submitted prediction string. Only the
// canonical strings of ValidScores are accepted; the NoPredictionScore
// sentinel yields NoPrediction.
func (r Rules) ParsePrediction(raw string) (Prediction, error) {
	if raw == NoPredictionScore {
		return NoPrediction(), nil
	}
	if !r.IsValidScore(raw) {
		return Prediction{}, fmt.Errorf("%w: %q is not a completed first-to-%d score", ErrInvalidPrediction, raw, r.WinsRequired())
	}
	score, err := ParseScore(raw)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %w", ErrInvalidPrediction, err)
	}
	return Prediction{Score: score, Made: true}, nil
}
