package service

import (
	"time"

	"github.com/okian/puckpicks/internal/domain/model"
	"github.com/okian/puckpicks/internal/domain/series"
	"github.com/okian/puckpicks/internal/domain/types"
	"github.com/okian/puckpicks/pkg/metrics"
)

// buildCard grades pred against s at now.
func buildCard(rules series.Rules, s model.Series, pred series.Prediction, now time.Time) types.SeriesCard { //nolint:gocritic // hugeParam
	high, low := s.Sides()
	e := series.Evaluate(rules, series.Snapshot[string]{
		High:       high,
		Low:        low,
		NextGameAt: s.NextGameAt,
		Prediction: pred,
	}, now)
	metrics.RecordOutcome(e.Outcome.String())

	return types.SeriesCard{
		Slug:        s.Slug,
		Round:       s.Round,
		HighSeed:    types.Team{Name: s.HighSeed.Name, Abbreviation: s.HighSeed.Abbreviation, Wins: s.HighSeed.Wins},
		LowSeed:     types.Team{Name: s.LowSeed.Name, Abbreviation: s.LowSeed.Abbreviation, Wins: s.LowSeed.Wins},
		Score:       s.Score(),
		Winner:      string(s.Winner(rules.WinsRequired())),
		NextGameAt:  s.NextGameAt,
		Progression: e.Progression.String(),
		Prediction:  pred.String(),
		Outcome:     e.Outcome.String(),
		Editable:    e.Editable,
		Points:      e.Points,
	}
}
