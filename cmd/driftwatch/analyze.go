package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftwatch/driftwatch/internal/analyzer"
	"github.com/driftwatch/driftwatch/internal/frequency"
	"github.com/driftwatch/driftwatch/internal/output"
	"github.com/driftwatch/driftwatch/internal/storage"
)

var (
	quietMode    bool
	jsonOutput   bool
	yamlOutput   bool
	baselinePath string
	authorEmail  string
	recordRun    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a repository against your habit baseline",
	Long: `Analyze walks the Go files of a repository, classifies every function
by location, operation, and file stability, and reports patterns that
deviate from what your own commit history says you usually write.

With --record, the observations from this run are folded into the
baseline so future runs have more history to compare against.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVarP(&quietMode, "quiet", "q", false, "one-line summary output")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	analyzeCmd.Flags().BoolVar(&yamlOutput, "yaml", false, "YAML output")
	analyzeCmd.Flags().StringVar(&baselinePath, "baseline", "", "baseline database path (overrides config)")
	analyzeCmd.Flags().StringVar(&authorEmail, "author", "", "author email to mine history for (overrides config)")
	analyzeCmd.Flags().BoolVar(&recordRun, "record", false, "fold this run's observations into the baseline")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	repoPath := "."
	if len(args) > 0 {
		repoPath = args[0]
	}
	if _, err := os.Stat(repoPath); err != nil {
		return fmt.Errorf("repository path %s: %w", repoPath, err)
	}

	if authorEmail != "" {
		cfg.History.AuthorEmail = authorEmail
	}
	if baselinePath != "" {
		cfg.Baseline.Path = baselinePath
	}

	var store *storage.BaselineStore
	table := frequency.NewTable(cfg.Thresholds.MinObservations)
	if recordRun || storage.Exists(cfg.Baseline.Path) {
		var err error
		store, err = storage.Open(cfg.Baseline.Path, logger)
		if err != nil {
			return fmt.Errorf("open baseline: %w", err)
		}
		defer store.Close()

		table, err = store.LoadTable(ctx, cfg.Thresholds.MinObservations)
		if err != nil {
			return fmt.Errorf("load baseline: %w", err)
		}
	}

	a := analyzer.New(cfg, logger)
	report, err := a.AnalyzeRepo(ctx, repoPath, table)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if recordRun && store != nil {
		if err := store.AddObservations(ctx, report.Observed.Snapshot()); err != nil {
			return fmt.Errorf("record observations: %w", err)
		}
		if err := store.SaveRun(ctx, storage.RunRecord{
			ID:            report.RunID,
			RepoPath:      report.RepoPath,
			AnalyzedFiles: report.AnalyzedFiles,
			Findings:      len(report.Findings),
			ColdStart:     report.ColdStart,
			CreatedAt:     report.GeneratedAt,
		}); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}

	formatter := output.NewFormatter(selectVerbosity())
	return formatter.Format(report, os.Stdout)
}

func selectVerbosity() output.Verbosity {
	switch {
	case jsonOutput:
		return output.VerbosityJSON
	case yamlOutput:
		return output.VerbosityYAML
	case quietMode:
		return output.VerbosityQuiet
	default:
		return output.DefaultVerbosity()
	}
}
