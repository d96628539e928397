package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/puckpicks/internal/domain/series"
)

type classification struct {
	Score       string `json:"score"`
	Prediction  string `json:"prediction"`
	Progression string `json:"progression"`
	Outcome     string `json:"outcome"`
	Editable    bool   `json:"editable"`
	Points      int    `json:"points"`
}

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a series and grade a prediction against it",
		Example: `  picksctl classify --high 4 --low 2 --predict 4-2
  picksctl classify --high 0 --low 0 --next-game 2023-04-17T23:00:00Z --predict 4-1`,
		Args: cobra.NoArgs,
		RunE: runClassify,
	}
	cmd.Flags().Int("high", 0, "High seed series wins")
	cmd.Flags().Int("low", 0, "Low seed series wins")
	cmd.Flags().String("predict", series.NoPredictionScore, "Predicted final score, high seed first")
	cmd.Flags().String("next-game", "", "Start of the next or current game (RFC3339)")
	cmd.Flags().String("now", "", "Evaluation time (RFC3339); defaults to the current time")
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	rules := rulesFromFlags(cmd)
	high, _ := cmd.Flags().GetInt("high")
	low, _ := cmd.Flags().GetInt("low")
	raw, _ := cmd.Flags().GetString("predict")
	asJSON, _ := cmd.Flags().GetBool("json")

	score, err := series.NewScore(high, low)
	if err != nil {
		return err
	}
	wins := rules.WinsRequired()
	if score.High > wins || score.Low > wins || (score.High == wins && score.Low == wins) {
		return fmt.Errorf("%w: %s is not reachable when %d wins take the series", series.ErrInvalidScore, score, wins)
	}

	pred, err := rules.ParsePrediction(raw)
	if err != nil {
		return err
	}
	next, err := timeFlag(cmd, "next-game")
	if err != nil {
		return err
	}
	now := time.Now()
	if at, err := timeFlag(cmd, "now"); err != nil {
		return err
	} else if at != nil {
		now = *at
	}

	e := series.Evaluate(rules, series.Snapshot[string]{
		High:       series.Side[string]{Name: "high", Wins: score.High},
		Low:        series.Side[string]{Name: "low", Wins: score.Low},
		NextGameAt: next,
		Prediction: pred,
	}, now)
	out := classification{
		Score:       score.String(),
		Prediction:  pred.String(),
		Progression: e.Progression.String(),
		Outcome:     e.Outcome.String(),
		Editable:    e.Editable,
		Points:      e.Points,
	}

	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	fmt.Fprintf(w, "score:       %s\n", out.Score)
	fmt.Fprintf(w, "prediction:  %s\n", out.Prediction)
	fmt.Fprintf(w, "progression: %s\n", out.Progression)
	fmt.Fprintf(w, "outcome:     %s\n", out.Outcome)
	fmt.Fprintf(w, "editable:    %t\n", out.Editable)
	fmt.Fprintf(w, "points:      %d\n", out.Points)
	return nil
}

func timeFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &t, nil
}
