package frequency

import (
	"sync"

	"github.com/driftwatch/driftwatch/internal/pattern"
)

// DefaultMinObservations is the sparsity gate: below this many historical
// samples a bucket has no frequency at all. The table refuses to estimate a
// rate from thin evidence; an empty table is the universal case of the rule.
const DefaultMinObservations = 10

type bucketKey struct {
	Detector string
	Context  pattern.Context
}

type counter struct {
	False int
	True  int
}

// BucketCount is one bucket's counters, as exposed by Snapshot.
type BucketCount struct {
	Detector   string
	Context    pattern.Context
	FalseCount int
	TrueCount  int
}

// Table accumulates True/False observations per (detector, context) bucket.
// Writes happen during the replay phase only; reads afterwards. Record is
// safe for concurrent use so replay may be parallelized across files.
type Table struct {
	mu     sync.Mutex
	counts map[bucketKey]*counter
	minObs int
}

// NewTable returns an empty table. minObservations <= 0 selects the default
// sparsity gate.
func NewTable(minObservations int) *Table {
	if minObservations <= 0 {
		minObservations = DefaultMinObservations
	}
	return &Table{
		counts: make(map[bucketKey]*counter),
		minObs: minObservations,
	}
}

// MinObservations returns the table's sparsity gate.
func (t *Table) MinObservations() int { return t.minObs }

// Record increments the bucket counter for one observation.
func (t *Table) Record(detector string, ctx pattern.Context, observed bool) {
	t.RecordN(detector, ctx, observed, 1)
}

// RecordN increments the bucket counter by n. Used when loading persisted
// counts; n <= 0 is a no-op.
func (t *Table) RecordN(detector string, ctx pattern.Context, observed bool, n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	key := bucketKey{Detector: detector, Context: ctx}
	c, ok := t.counts[key]
	if !ok {
		c = &counter{}
		t.counts[key] = c
	}
	if observed {
		c.True += n
	} else {
		c.False += n
	}
}

// TotalObservations returns the sample size for a bucket, zero when absent.
func (t *Table) TotalObservations(detector string, ctx pattern.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.counts[bucketKey{Detector: detector, Context: ctx}]
	if !ok {
		return 0
	}
	return c.False + c.True
}

// Frequency returns the historical True rate for a bucket. The second result
// is false when the bucket has fewer than MinObservations samples: the table
// declines to answer rather than guess.
func (t *Table) Frequency(detector string, ctx pattern.Context) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.counts[bucketKey{Detector: detector, Context: ctx}]
	if !ok {
		return 0, false
	}
	total := c.False + c.True
	if total < t.minObs {
		return 0, false
	}
	return float64(c.True) / float64(total), true
}

// Observations returns the total sample count across all buckets. Zero means
// cold start.
func (t *Table) Observations() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := 0
	for _, c := range t.counts {
		total += c.False + c.True
	}
	return total
}

// Buckets returns the number of distinct buckets with at least one sample.
func (t *Table) Buckets() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.counts)
}

// Snapshot copies every bucket's counters, for persistence and inspection.
func (t *Table) Snapshot() []BucketCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]BucketCount, 0, len(t.counts))
	for key, c := range t.counts {
		out = append(out, BucketCount{
			Detector:   key.Detector,
			Context:    key.Context,
			FalseCount: c.False,
			TrueCount:  c.True,
		})
	}
	return out
}
