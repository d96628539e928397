package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/puckpicks/internal/picksim"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Submit predictions for simulated users and verify them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &picksim.Config{}
			cfg.BaseURL, _ = cmd.Flags().GetString("url")
			cfg.Round, _ = cmd.Flags().GetInt("round")
			cfg.Users, _ = cmd.Flags().GetInt("users")
			cfg.Workers, _ = cmd.Flags().GetInt("workers")
			cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
			cfg.Seed, _ = cmd.Flags().GetUint64("seed")

			stats, err := picksim.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "series:    %d (%d open)\n", stats.Series, stats.Editable)
			fmt.Fprintf(cmd.OutOrStdout(), "submitted: %d (accepted %d, locked %d, failed %d)\n",
				stats.Generated, stats.Accepted, stats.Locked, stats.Failed)
			fmt.Fprintf(cmd.OutOrStdout(), "verified:  %d in %s\n", stats.Verified, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().String("url", "http://localhost:9080", "Base URL of the picks server")
	cmd.Flags().Int("round", 1, "Playoff round to predict")
	cmd.Flags().Int("users", 100, "Number of simulated users")
	cmd.Flags().Int("workers", runtime.NumCPU()*2, "Number of concurrent submitters")
	cmd.Flags().Duration("timeout", 10*time.Second, "HTTP request timeout")
	cmd.Flags().Uint64("seed", 1, "Seed for score selection")
	return cmd
}
