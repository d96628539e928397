package nhl

import (
	"fmt"
	"time"

	"github.com/okian/puckpicks/internal/domain/model"
)

type playoffsPayload struct {
	DefaultRound int            `json:"defaultRound"`
	Rounds       []roundPayload `json:"rounds"`
}

type roundPayload struct {
	Number int `json:"number"`
	Names  struct {
		Name      string `json:"name"`
		ShortName string `json:"shortName"`
	} `json:"names"`
	Series []seriesPayload `json:"series"`
}

type seriesPayload struct {
	Names struct {
		MatchupName       string `json:"matchupName"`
		MatchupShortName  string `json:"matchupShortName"`
		TeamAbbreviationA string `json:"teamAbbreviationA"`
		TeamAbbreviationB string `json:"teamAbbreviationB"`
		SeriesSlug        string `json:"seriesSlug"`
	} `json:"names"`
	CurrentGame struct {
		SeriesSummary struct {
			GameLabel         string `json:"gameLabel"`
			GameTime          string `json:"gameTime"`
			SeriesStatus      string `json:"seriesStatus"`
			SeriesStatusShort string `json:"seriesStatusShort"`
		} `json:"seriesSummary"`
	} `json:"currentGame"`
	MatchupTeams []matchupTeam `json:"matchupTeams"`
}

type matchupTeam struct {
	Team struct {
		Name string `json:"name"`
	} `json:"team"`
	Seed struct {
		Type  string `json:"type"`
		IsTop bool   `json:"isTop"`
	} `json:"seed"`
	SeriesRecord struct {
		Wins   int `json:"wins"`
		Losses int `json:"losses"`
	} `json:"seriesRecord"`
}

// toSeries converts one upstream series. It rejects records the classifier
// cannot reason about.
func (sp seriesPayload) toSeries(round, winsRequired int, now time.Time) (model.Series, error) {
	if sp.Names.SeriesSlug == "" {
		return model.Series{}, fmt.Errorf("series without slug")
	}

	var top, bottom *matchupTeam
	for i := range sp.MatchupTeams {
		t := &sp.MatchupTeams[i]
		if t.Seed.IsTop && top == nil {
			top = t
		} else if !t.Seed.IsTop && bottom == nil {
			bottom = t
		}
	}
	if top == nil || bottom == nil {
		return model.Series{}, fmt.Errorf("series %s: matchup not set", sp.Names.SeriesSlug)
	}

	hw, lw := top.SeriesRecord.Wins, bottom.SeriesRecord.Wins
	if hw < 0 || hw > winsRequired || lw < 0 || lw > winsRequired {
		return model.Series{}, fmt.Errorf("series %s: wins %d-%d out of range", sp.Names.SeriesSlug, hw, lw)
	}
	if hw == winsRequired && lw == winsRequired {
		return model.Series{}, fmt.Errorf("series %s: both sides at %d wins", sp.Names.SeriesSlug, winsRequired)
	}

	s := model.Series{
		Slug:      sp.Names.SeriesSlug,
		Round:     round,
		HighSeed:  model.SeedSide{Name: top.Team.Name, Abbreviation: sp.Names.TeamAbbreviationA, Wins: hw},
		LowSeed:   model.SeedSide{Name: bottom.Team.Name, Abbreviation: sp.Names.TeamAbbreviationB, Wins: lw},
		UpdatedAt: now,
	}
	if gt := sp.CurrentGame.SeriesSummary.GameTime; gt != "" {
		at, err := time.Parse(time.RFC3339, gt)
		if err != nil {
			return model.Series{}, fmt.Errorf("series %s: game time %q: %w", sp.Names.SeriesSlug, gt, err)
		}
		at = at.UTC()
		s.NextGameAt = &at
	}
	return s, nil
}
