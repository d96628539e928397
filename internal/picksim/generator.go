package picksim

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/puckpicks/internal/domain/series"
)

// generateSubmissions picks one random final score per user for every card.
// Locked cards are included so the run also exercises the 409 path.
func generateSubmissions(cards []Card, scores []string, users int, seed uint64) []Submission {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	finals := make([]string, 0, len(scores))
	for _, s := range scores {
		if s != series.NoPredictionScore {
			finals = append(finals, s)
		}
	}
	if len(finals) == 0 {
		return nil
	}

	out := make([]Submission, 0, users*len(cards))
	for i := 0; i < users; i++ {
		user := "sim-" + uuid.NewString()
		for _, c := range cards {
			out = append(out, Submission{
				User:  user,
				Slug:  c.Slug,
				Score: finals[rng.IntN(len(finals))],
			})
		}
	}
	return out
}
