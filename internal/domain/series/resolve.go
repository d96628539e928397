package series

// Side is one team in a series and its win count.
type Side[T comparable] struct {
	Name T
	Wins int
}

// Decision is a resolved winner/loser pair.
type Decision[T comparable] struct {
	Winner Side[T]
	Loser  Side[T]
}

// Games returns the total number of games played in the decision.
func (d Decision[T]) Games() int { return d.Winner.Wins + d.Loser.Wins }

// Resolve returns the side with more wins as the winner. ok is false when the
// counts are tied (undecided).
func Resolve[T comparable](a, b Side[T]) (d Decision[T], ok bool) {
	switch {
	case a.Wins > b.Wins:
		return Decision[T]{Winner: a, Loser: b}, true
	case b.Wins > a.Wins:
		return Decision[T]{Winner: b, Loser: a}, true
	default:
		return Decision[T]{}, false
	}
}
