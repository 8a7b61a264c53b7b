package frequency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/driftwatch/driftwatch/internal/pattern"
)

func bucketCtx() pattern.Context {
	return pattern.Context{
		Location:  pattern.LocationTopLevel,
		Operation: pattern.OpExternalCall,
		Stability: pattern.StabilityStable,
	}
}

func TestFrequencyBasics(t *testing.T) {
	table := NewTable(10)
	ctx := bucketCtx()

	for i := 0; i < 12; i++ {
		table.Record("has_timeout_parameter", ctx, true)
	}
	for i := 0; i < 3; i++ {
		table.Record("has_timeout_parameter", ctx, false)
	}

	freq, ok := table.Frequency("has_timeout_parameter", ctx)
	assert.True(t, ok)
	assert.InDelta(t, 0.8, freq, 1e-9)
	assert.Equal(t, 15, table.TotalObservations("has_timeout_parameter", ctx))
}

func TestFrequencySparsityGate(t *testing.T) {
	table := NewTable(10)
	ctx := bucketCtx()

	// 9 samples is one short of the gate.
	for i := 0; i < 5; i++ {
		table.Record("has_timeout_parameter", ctx, true)
	}
	for i := 0; i < 4; i++ {
		table.Record("has_timeout_parameter", ctx, false)
	}

	_, ok := table.Frequency("has_timeout_parameter", ctx)
	assert.False(t, ok, "9 samples must stay below the gate")

	table.Record("has_timeout_parameter", ctx, true)
	freq, ok := table.Frequency("has_timeout_parameter", ctx)
	assert.True(t, ok, "10th sample opens the gate")
	assert.InDelta(t, 0.6, freq, 1e-9)
}

func TestFrequencyAbsentBucket(t *testing.T) {
	table := NewTable(10)

	freq, ok := table.Frequency("has_timeout_parameter", bucketCtx())
	assert.False(t, ok)
	assert.Zero(t, freq)
	assert.Zero(t, table.TotalObservations("has_timeout_parameter", bucketCtx()))
}

func TestBucketsAreIndependent(t *testing.T) {
	table := NewTable(2)
	a := bucketCtx()
	b := a
	b.Stability = pattern.StabilityVolatile

	table.Record("mutates_parameter", a, true)
	table.Record("mutates_parameter", a, true)
	table.Record("mutates_parameter", b, false)
	table.Record("mutates_parameter", b, false)

	freqA, okA := table.Frequency("mutates_parameter", a)
	freqB, okB := table.Frequency("mutates_parameter", b)
	assert.True(t, okA)
	assert.True(t, okB)
	assert.InDelta(t, 1.0, freqA, 1e-9)
	assert.InDelta(t, 0.0, freqB, 1e-9)

	// Same context, different detector is a different bucket too.
	_, ok := table.Frequency("writes_global_state", a)
	assert.False(t, ok)

	assert.Equal(t, 2, table.Buckets())
	assert.Equal(t, 4, table.Observations())
}

func TestRecordN(t *testing.T) {
	table := NewTable(10)
	ctx := bucketCtx()

	table.RecordN("swallows_exception", ctx, true, 7)
	table.RecordN("swallows_exception", ctx, false, 3)
	table.RecordN("swallows_exception", ctx, true, 0)
	table.RecordN("swallows_exception", ctx, true, -5)

	freq, ok := table.Frequency("swallows_exception", ctx)
	assert.True(t, ok)
	assert.InDelta(t, 0.7, freq, 1e-9)
}

func TestNewTableDefaultGate(t *testing.T) {
	assert.Equal(t, DefaultMinObservations, NewTable(0).MinObservations())
	assert.Equal(t, DefaultMinObservations, NewTable(-3).MinObservations())
	assert.Equal(t, 25, NewTable(25).MinObservations())
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := NewTable(10)
	ctx := bucketCtx()
	src.RecordN("has_timeout_parameter", ctx, true, 12)
	src.RecordN("has_timeout_parameter", ctx, false, 3)

	dst := NewTable(10)
	for _, bc := range src.Snapshot() {
		dst.RecordN(bc.Detector, bc.Context, true, bc.TrueCount)
		dst.RecordN(bc.Detector, bc.Context, false, bc.FalseCount)
	}

	freq, ok := dst.Frequency("has_timeout_parameter", ctx)
	assert.True(t, ok)
	assert.InDelta(t, 0.8, freq, 1e-9)
}

func TestRecordConcurrent(t *testing.T) {
	table := NewTable(10)
	ctx := bucketCtx()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				table.Record("has_timeout_parameter", ctx, j%2 == 0)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, table.TotalObservations("has_timeout_parameter", ctx))
}
