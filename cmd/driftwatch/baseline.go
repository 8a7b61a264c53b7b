package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftwatch/driftwatch/internal/storage"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Inspect the habit baseline database",
}

var baselineStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show baseline bucket and observation counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Baseline.Path
		if !storage.Exists(path) {
			fmt.Printf("No baseline at %s (run `driftwatch analyze --record` to start one)\n", path)
			return nil
		}

		store, err := storage.Open(path, logger)
		if err != nil {
			return fmt.Errorf("open baseline: %w", err)
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("baseline stats: %w", err)
		}

		fmt.Printf("Baseline: %s\n", path)
		fmt.Printf("  Buckets:      %d\n", stats.Buckets)
		fmt.Printf("  Observations: %d\n", stats.Observations)
		fmt.Printf("  Runs:         %d\n", stats.Runs)
		return nil
	},
}

func init() {
	baselineCmd.AddCommand(baselineStatsCmd)
}
