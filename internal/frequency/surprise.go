package frequency

import "github.com/driftwatch/driftwatch/internal/pattern"

// violationDetectors is the fixed set of detectors whose observations are
// eligible for scoring. Context-only detectors gate or classify other
// signals and must never independently produce a score.
var violationDetectors = map[string]bool{
	"has_timeout_parameter": true,
	"mutates_parameter":     true,
	"writes_global_state":   true,
	"has_broad_exception":   true,
	"swallows_exception":    true,
}

// IsViolationDetector reports whether observations from this detector may
// be scored.
func IsViolationDetector(name string) bool {
	return violationDetectors[name]
}

// SurpriseScore compares one observation to the historical rate for its
// bucket. It carries all of its inputs so an explanation can be rendered
// later without going back to the table. Scores are never mutated.
type SurpriseScore struct {
	Detector       string          `json:"detector" yaml:"detector"`
	Context        pattern.Context `json:"context" yaml:"context"`
	Observed       bool            `json:"observed" yaml:"observed"`
	HistoricalFreq float64         `json:"historical_freq" yaml:"historical_freq"`
	Surprise       float64         `json:"surprise" yaml:"surprise"`
	SampleSize     int             `json:"sample_size" yaml:"sample_size"`
}

// ComputeSurprise scores one observation against the table. The second
// result is false when the detector is context-only or the bucket is below
// the sparsity gate; both refusals are silent, not errors.
//
// Surprise measures how often the opposite of the current observation
// occurred historically: the rate itself when the pattern is absent now,
// one minus the rate when it is present. Bounded in [0, 1].
func ComputeSurprise(detector string, ctx pattern.Context, observed bool, table *Table) (SurpriseScore, bool) {
	if !IsViolationDetector(detector) {
		return SurpriseScore{}, false
	}

	sampleSize := table.TotalObservations(detector, ctx)
	if sampleSize < table.MinObservations() {
		return SurpriseScore{}, false
	}

	freq, ok := table.Frequency(detector, ctx)
	if !ok {
		return SurpriseScore{}, false
	}

	surprise := freq
	if observed {
		surprise = 1.0 - freq
	}

	return SurpriseScore{
		Detector:       detector,
		Context:        ctx,
		Observed:       observed,
		HistoricalFreq: freq,
		Surprise:       surprise,
		SampleSize:     sampleSize,
	}, true
}
