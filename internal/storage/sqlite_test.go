package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwatch/driftwatch/internal/frequency"
	"github.com/driftwatch/driftwatch/internal/pattern"
)

func testStore(t *testing.T) *BaselineStore {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := Open(filepath.Join(t.TempDir(), "baseline.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleBucket() pattern.Context {
	return pattern.Context{
		Location:  pattern.LocationTopLevel,
		Operation: pattern.OpExternalCall,
		Stability: pattern.StabilityStable,
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline.db")
	assert.False(t, Exists(path))

	store, err := Open(path, nil)
	require.NoError(t, err)
	store.Close()

	assert.True(t, Exists(path))
	assert.False(t, Exists(dir), "a directory is not a baseline")
}

func TestAddAndLoadObservations(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	counts := []frequency.BucketCount{
		{Detector: "has_timeout_parameter", Context: sampleBucket(), FalseCount: 3, TrueCount: 12},
	}
	require.NoError(t, store.AddObservations(ctx, counts))

	table, err := store.LoadTable(ctx, 10)
	require.NoError(t, err)

	freq, ok := table.Frequency("has_timeout_parameter", sampleBucket())
	require.True(t, ok)
	assert.InDelta(t, 0.8, freq, 1e-9)
	assert.Equal(t, 15, table.TotalObservations("has_timeout_parameter", sampleBucket()))
}

func TestAddObservationsAccumulates(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first := []frequency.BucketCount{
		{Detector: "mutates_parameter", Context: sampleBucket(), FalseCount: 4, TrueCount: 1},
	}
	second := []frequency.BucketCount{
		{Detector: "mutates_parameter", Context: sampleBucket(), FalseCount: 6, TrueCount: 4},
	}
	require.NoError(t, store.AddObservations(ctx, first))
	require.NoError(t, store.AddObservations(ctx, second))

	table, err := store.LoadTable(ctx, 10)
	require.NoError(t, err)

	assert.Equal(t, 15, table.TotalObservations("mutates_parameter", sampleBucket()))
	freq, ok := table.Frequency("mutates_parameter", sampleBucket())
	require.True(t, ok)
	assert.InDelta(t, 1.0/3.0, freq, 1e-9)
}

func TestAddObservationsEmpty(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.AddObservations(context.Background(), nil))
}

func TestLoadTableEmptyStore(t *testing.T) {
	store := testStore(t)

	table, err := store.LoadTable(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, table.Observations())
	assert.Zero(t, table.Buckets())
	assert.Equal(t, 10, table.MinObservations())
}

func TestSaveAndGetRun(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	run := RunRecord{
		ID:            uuid.NewString(),
		RepoPath:      "/home/dev/project",
		AnalyzedFiles: 42,
		Findings:      3,
		ColdStart:     false,
		CreatedAt:     time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.RepoPath, got.RepoPath)
	assert.Equal(t, 42, got.AnalyzedFiles)
	assert.Equal(t, 3, got.Findings)
	assert.False(t, got.ColdStart)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
}

func TestGetRunNotFound(t *testing.T) {
	store := testStore(t)

	_, err := store.GetRun(context.Background(), "never-saved")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStats(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	other := sampleBucket()
	other.Stability = pattern.StabilityModified
	require.NoError(t, store.AddObservations(ctx, []frequency.BucketCount{
		{Detector: "swallows_exception", Context: sampleBucket(), FalseCount: 8, TrueCount: 2},
		{Detector: "swallows_exception", Context: other, FalseCount: 5, TrueCount: 0},
	}))
	require.NoError(t, store.SaveRun(ctx, RunRecord{ID: uuid.NewString(), RepoPath: "/p"}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Buckets)
	assert.Equal(t, 15, stats.Observations)
	assert.Equal(t, 1, stats.Runs)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "baseline.db")
	store, err := Open(path, nil)
	require.NoError(t, err)
	store.Close()
	assert.True(t, Exists(path))
}
