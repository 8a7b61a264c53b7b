// Package storage persists the baseline observation counters between runs.
// The analysis engine itself only ever sees a frequency.Table; this store is
// the seam through which a baseline accumulated over earlier runs (or a
// future history replay) reaches it. No store on disk is the universal cold
// start, not an error.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/driftwatch/driftwatch/internal/frequency"
	"github.com/driftwatch/driftwatch/internal/pattern"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// BaselineStore is a SQLite-backed store of per-bucket observation counters
// plus run metadata.
type BaselineStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// Open connects to (creating if needed) the baseline database at path.
func Open(path string, logger *logrus.Logger) (*BaselineStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create baseline directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	store := &BaselineStore{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// Exists reports whether a baseline database is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (s *BaselineStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS observations (
		detector    TEXT NOT NULL,
		location    TEXT NOT NULL,
		operation   TEXT NOT NULL,
		stability   TEXT NOT NULL,
		false_count INTEGER NOT NULL DEFAULT 0,
		true_count  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (detector, location, operation, stability)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id             TEXT PRIMARY KEY,
		repo_path      TEXT NOT NULL,
		analyzed_files INTEGER NOT NULL,
		findings       INTEGER NOT NULL,
		cold_start     INTEGER NOT NULL,
		created_at     DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *BaselineStore) Close() error {
	return s.db.Close()
}

// LoadTable reconstructs a frequency table from the persisted counters.
func (s *BaselineStore) LoadTable(ctx context.Context, minObservations int) (*frequency.Table, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT detector, location, operation, stability, false_count, true_count FROM observations`)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	defer rows.Close()

	table := frequency.NewTable(minObservations)
	for rows.Next() {
		var detector, location, operation, stability string
		var falseCount, trueCount int
		if err := rows.Scan(&detector, &location, &operation, &stability, &falseCount, &trueCount); err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}

		bucket := pattern.Context{
			Location:  pattern.Location(location),
			Operation: pattern.Operation(operation),
			Stability: pattern.Stability(stability),
		}
		table.RecordN(detector, bucket, false, falseCount)
		table.RecordN(detector, bucket, true, trueCount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"buckets":      table.Buckets(),
			"observations": table.Observations(),
		}).Debug("loaded baseline")
	}
	return table, nil
}

// AddObservations merges the given counters into the store, adding to any
// existing counts. Accumulation is commutative, so repeated runs build the
// baseline regardless of order.
func (s *BaselineStore) AddObservations(ctx context.Context, counts []frequency.BucketCount) error {
	if len(counts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO observations (detector, location, operation, stability, false_count, true_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (detector, location, operation, stability)
		DO UPDATE SET
			false_count = false_count + excluded.false_count,
			true_count  = true_count + excluded.true_count
	`
	for _, c := range counts {
		_, err := tx.ExecContext(ctx, query,
			c.Detector, string(c.Context.Location), string(c.Context.Operation),
			string(c.Context.Stability), c.FalseCount, c.TrueCount)
		if err != nil {
			return fmt.Errorf("upsert observation: %w", err)
		}
	}

	return tx.Commit()
}

// RunRecord is the metadata persisted per analysis run.
type RunRecord struct {
	ID            string    `db:"id"`
	RepoPath      string    `db:"repo_path"`
	AnalyzedFiles int       `db:"analyzed_files"`
	Findings      int       `db:"findings"`
	ColdStart     bool      `db:"cold_start"`
	CreatedAt     time.Time `db:"created_at"`
}

// SaveRun records one analysis run.
func (s *BaselineStore) SaveRun(ctx context.Context, run RunRecord) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO runs (id, repo_path, analyzed_files, findings, cold_start, created_at)
		VALUES (:id, :repo_path, :analyzed_files, :findings, :cold_start, :created_at)
	`, run)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// GetRun fetches one run by id.
func (s *BaselineStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var run RunRecord
	err := s.db.GetContext(ctx, &run, `SELECT * FROM runs WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// Stats summarizes the stored baseline.
type Stats struct {
	Buckets      int
	Observations int
	Runs         int
}

// Stats returns baseline summary counts.
func (s *BaselineStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowxContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(false_count + true_count), 0) FROM observations`).
		Scan(&stats.Buckets, &stats.Observations)
	if err != nil {
		return Stats{}, fmt.Errorf("query observation stats: %w", err)
	}
	if err := s.db.QueryRowxContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&stats.Runs); err != nil {
		return Stats{}, fmt.Errorf("query run stats: %w", err)
	}
	return stats, nil
}
