package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pathfinder",
	Short: "Group activity planner",
	Long: `Pathfinder turns a natural-language group request into a ranked,
risk-checked venue recommendation.

It parses the request into structured intent, discovers candidate venues,
scores them concurrently from independent perspectives (style fit, travel
feasibility, cost), runs an adversarial risk review with a bounded retry
loop, and synthesizes the final ranking while streaming progress events.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
