package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/puckpicks/internal/domain/series"
	"github.com/okian/puckpicks/pkg/logger"
)

// version is set via -ldflags at build time.
var version = "(devel)"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "picksctl",
		Short:         "Playoff series picks toolkit",
		Long:          "picksctl grades best-of-N series predictions, lists valid picks and talks to the NHL feed and a picks server.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithLevel(level))
		},
	}

	root.PersistentFlags().Int("wins", series.DefaultWinsRequired, "Wins required to take a series")
	root.PersistentFlags().Bool("length-credit", false, "Grade a right-length wrong-winner pick as length-only correct")
	root.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(newClassifyCmd())
	root.AddCommand(newScoresCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newSimulateCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// rulesFromFlags builds series rules from the persistent flags.
func rulesFromFlags(cmd *cobra.Command) series.Rules {
	wins, _ := cmd.Flags().GetInt("wins")
	credit, _ := cmd.Flags().GetBool("length-credit")
	return series.NewRules(
		series.WithWinsRequired(wins),
		series.WithLengthOnlyCredit(credit),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "picksctl", version)
		},
	}
}
