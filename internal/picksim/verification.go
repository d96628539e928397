package picksim

import (
	"context"
	"fmt"
)

// verifyBoards reads back every user's board and checks each accepted
// prediction is shown on its card. It returns the number of cards checked.
func verifyBoards(ctx context.Context, c *Client, round int, accepted []Submission) (int, error) {
	want := make(map[string]map[string]string)
	for _, s := range accepted {
		if want[s.User] == nil {
			want[s.User] = make(map[string]string)
		}
		want[s.User][s.Slug] = s.Score
	}

	verified := 0
	for user, picks := range want {
		board, err := c.Board(ctx, user, round)
		if err != nil {
			return verified, err
		}
		for _, card := range board.Series {
			score, ok := picks[card.Slug]
			if !ok {
				continue
			}
			if card.Prediction != score {
				return verified, fmt.Errorf("%w: user %s series %s shows %q, submitted %q",
					ErrMismatch, user, card.Slug, card.Prediction, score)
			}
			verified++
		}
	}
	return verified, nil
}
