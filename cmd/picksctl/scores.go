package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScoresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scores",
		Short: "List every accepted prediction",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, s := range rulesFromFlags(cmd).ValidScores() {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
		},
	}
}
