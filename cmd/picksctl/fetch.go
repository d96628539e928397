package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/puckpicks/internal/adapters/nhl"
	"github.com/okian/puckpicks/pkg/logger"
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and print the current playoff round",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}
	cmd.Flags().String("base-url", "https://statsapi.web.nhl.com", "NHL stats API base URL")
	cmd.Flags().String("season", "20222023", "Season, e.g. 20222023")
	cmd.Flags().Duration("timeout", 10*time.Second, "Request timeout")
	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	rules := rulesFromFlags(cmd)
	baseURL, _ := cmd.Flags().GetString("base-url")
	season, _ := cmd.Flags().GetString("season")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	client := nhl.NewClient(
		nhl.WithBaseURL(baseURL),
		nhl.WithSeason(season),
		nhl.WithTimeout(timeout),
		nhl.WithRules(rules),
		nhl.WithLogger(logger.Named("nhl")),
	)
	res, err := client.FetchPlayoffs(cmd.Context())
	if err != nil {
		return err
	}

	now := time.Now()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "SLUG\tMATCHUP\tSCORE\tPROGRESSION\tNEXT GAME\n")
	for _, s := range res.Series {
		next := "-"
		if s.NextGameAt != nil {
			next = s.NextGameAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s v %s\t%s\t%s\t%s\n",
			s.Slug,
			s.HighSeed.Abbreviation,
			s.LowSeed.Abbreviation,
			s.Score(),
			rules.Progression(s.HighSeed.Wins, s.LowSeed.Wins, s.NextGameAt, now),
			next,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "round %d: %d series, %d skipped\n", res.Round, len(res.Series), res.Skipped)
	return nil
}
