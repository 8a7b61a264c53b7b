// Package analyzer wires the pipeline together: walk the repository, run
// every detector over every AST node, bucket each observation, score it
// against the historical table, then gate and explain the batch once.
// Glue only — thresholds and reasoning live in the packages below it.
package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/driftwatch/driftwatch/internal/config"
	"github.com/driftwatch/driftwatch/internal/detect"
	"github.com/driftwatch/driftwatch/internal/explain"
	"github.com/driftwatch/driftwatch/internal/frequency"
	"github.com/driftwatch/driftwatch/internal/gate"
	"github.com/driftwatch/driftwatch/internal/gitlog"
	"github.com/driftwatch/driftwatch/internal/pattern"
)

// Report is the result of one repository analysis.
type Report struct {
	RunID         string                `json:"run_id" yaml:"run_id"`
	RepoPath      string                `json:"repo_path" yaml:"repo_path"`
	GeneratedAt   time.Time             `json:"generated_at" yaml:"generated_at"`
	AnalyzedFiles int                   `json:"analyzed_files" yaml:"analyzed_files"`
	Commits       int                   `json:"commits" yaml:"commits"`
	ColdStart     bool                  `json:"cold_start" yaml:"cold_start"`
	Findings      []explain.Explanation `json:"findings" yaml:"findings"`
	DurationMS    int64                 `json:"duration_ms" yaml:"duration_ms"`

	// Observed aggregates every observation made during this run, for
	// callers that fold the run into the persisted baseline.
	Observed *frequency.Table `json:"-" yaml:"-"`
}

// Analyzer runs the deviation analysis over a repository.
type Analyzer struct {
	cfg        *config.Config
	classifier *pattern.Classifier
	policy     gate.Policy
	detectors  []detect.Detector
	logger     *logrus.Logger
}

// New builds an analyzer from configuration.
func New(cfg *config.Config, logger *logrus.Logger) *Analyzer {
	return &Analyzer{
		cfg:        cfg,
		classifier: cfg.Classifier(),
		policy:     cfg.GatePolicy(),
		detectors:  detect.Registry(),
		logger:     logger,
	}
}

// AnalyzeRepo extracts the developer's commit history and analyzes every Go
// file under repoPath against the given frequency table. An empty table is
// the expected cold start and yields zero findings by construction.
func (a *Analyzer) AnalyzeRepo(ctx context.Context, repoPath string, table *frequency.Table) (*Report, error) {
	history, err := gitlog.NewHistory(repoPath, a.logger)
	if err != nil {
		return nil, err
	}

	commits, err := history.Commits(gitlog.Options{
		AuthorEmail: a.cfg.History.AuthorEmail,
		MaxAgeDays:  a.cfg.History.MaxAgeDays,
		MaxCount:    a.cfg.History.MaxCommits,
	})
	if err != nil {
		return nil, err
	}

	return a.Run(ctx, repoPath, commits, table, time.Now().UTC())
}

// Run analyzes the repository with an already-extracted history. Split from
// AnalyzeRepo so the pipeline can be exercised without a live git repo.
func (a *Analyzer) Run(ctx context.Context, repoPath string, commits []gitlog.Commit, table *frequency.Table, now time.Time) (*Report, error) {
	start := time.Now()

	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}

	files, err := goFiles(absPath)
	if err != nil {
		return nil, err
	}

	observed := frequency.NewTable(table.MinObservations())

	var mu sync.Mutex
	var scores []frequency.SurpriseScore

	// Each file's scores are independent until the single gating pass, so
	// files fan out. The table is read-only here; the observed accumulator
	// locks internally.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fileScores := a.analyzeFile(file, absPath, commits, table, observed, now)
			mu.Lock()
			scores = append(scores, fileScores...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	warnings := a.policy.Gate(scores)
	findings := explain.Explain(warnings)

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			"files":    len(files),
			"commits":  len(commits),
			"scores":   len(scores),
			"findings": len(findings),
		}).Debug("analysis complete")
	}

	return &Report{
		RunID:         uuid.NewString(),
		RepoPath:      absPath,
		GeneratedAt:   now,
		AnalyzedFiles: len(files),
		Commits:       len(commits),
		ColdStart:     table.Observations() == 0,
		Findings:      findings,
		DurationMS:    time.Since(start).Milliseconds(),
		Observed:      observed,
	}, nil
}

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"vendor":       true,
	"testdata":     true,
	"node_modules": true,
}

func goFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (skipDirs[name] || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, ".go") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
