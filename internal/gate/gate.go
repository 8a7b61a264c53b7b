package gate

import (
	"sort"

	"github.com/driftwatch/driftwatch/internal/frequency"
	"github.com/driftwatch/driftwatch/internal/pattern"
)

// Gating thresholds. Stock values; a Policy can carry tuned ones.
const (
	DefaultMinSurprise  = 0.6
	DefaultHighSurprise = 0.8
	DefaultMaxWarnings  = 5
)

// Warning wraps exactly one score that survived gating. The wrapped score
// is the same value that entered the pipeline, not a copy with edits.
type Warning struct {
	Score frequency.SurpriseScore `json:"score" yaml:"score"`
}

// Policy holds the gate's tunable thresholds.
type Policy struct {
	MinSurprise  float64
	HighSurprise float64
	MaxWarnings  int
}

// DefaultPolicy returns the stock gating thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinSurprise:  DefaultMinSurprise,
		HighSurprise: DefaultHighSurprise,
		MaxWarnings:  DefaultMaxWarnings,
	}
}

// stabilityRank orders stabilities for ranking tie-breaks: better-established
// files rank ahead when surprise and sample size tie.
var stabilityRank = map[pattern.Stability]int{
	pattern.StabilityStable:   0,
	pattern.StabilityModified: 1,
	pattern.StabilityVolatile: 2,
}

const unrankedStability = 99

// Gate runs the full pipeline once per batch: filter, dedup, rank, cap.
// Output is deterministic for a given input order.
func (p Policy) Gate(scores []frequency.SurpriseScore) []Warning {
	filtered := p.filter(scores)
	deduped := dedup(filtered)
	ranked := rank(deduped)
	capped := p.cap(ranked)

	warnings := make([]Warning, 0, len(capped))
	for _, s := range capped {
		warnings = append(warnings, Warning{Score: s})
	}
	return warnings
}

func (p Policy) passesThreshold(s frequency.SurpriseScore) bool {
	return s.Surprise >= p.MinSurprise
}

// passesStability applies the stability-aware policy: a brand-new file has
// no established baseline so NEW never warns, and an already-unstable file
// must clear the higher bar to cut noise.
func (p Policy) passesStability(s frequency.SurpriseScore) bool {
	switch s.Context.Stability {
	case pattern.StabilityNew:
		return false
	case pattern.StabilityVolatile:
		return s.Surprise >= p.HighSurprise
	default:
		return true
	}
}

func (p Policy) filter(scores []frequency.SurpriseScore) []frequency.SurpriseScore {
	var kept []frequency.SurpriseScore
	for _, s := range scores {
		if p.passesThreshold(s) && p.passesStability(s) {
			kept = append(kept, s)
		}
	}
	return kept
}

type exactKey struct {
	Detector string
	Context  pattern.Context
}

type operationKey struct {
	Context   pattern.Context
	Operation pattern.Operation
}

// dedup collapses redundant signals in two passes: first the best score per
// exact (detector, context) key, then the best survivor per (context,
// operation) key, so at most one warning remains per context bucket. Ties
// keep the earlier score. Output preserves first-seen order.
func dedup(scores []frequency.SurpriseScore) []frequency.SurpriseScore {
	byExact := make(map[exactKey]frequency.SurpriseScore)
	var exactOrder []exactKey
	for _, s := range scores {
		key := exactKey{Detector: s.Detector, Context: s.Context}
		best, seen := byExact[key]
		if !seen {
			exactOrder = append(exactOrder, key)
		}
		if !seen || s.Surprise > best.Surprise {
			byExact[key] = s
		}
	}

	byOperation := make(map[operationKey]frequency.SurpriseScore)
	var operationOrder []operationKey
	for _, ek := range exactOrder {
		s := byExact[ek]
		key := operationKey{Context: s.Context, Operation: s.Context.Operation}
		best, seen := byOperation[key]
		if !seen {
			operationOrder = append(operationOrder, key)
		}
		if !seen || s.Surprise > best.Surprise {
			byOperation[key] = s
		}
	}

	out := make([]frequency.SurpriseScore, 0, len(operationOrder))
	for _, key := range operationOrder {
		out = append(out, byOperation[key])
	}
	return out
}

// rank sorts descending by surprise, then descending by sample size, then by
// stability priority. The sort is stable so any remaining ties keep input
// order.
func rank(scores []frequency.SurpriseScore) []frequency.SurpriseScore {
	ranked := make([]frequency.SurpriseScore, len(scores))
	copy(ranked, scores)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Surprise != b.Surprise {
			return a.Surprise > b.Surprise
		}
		if a.SampleSize != b.SampleSize {
			return a.SampleSize > b.SampleSize
		}
		return stabilityOrder(a.Context.Stability) < stabilityOrder(b.Context.Stability)
	})
	return ranked
}

func stabilityOrder(s pattern.Stability) int {
	if r, ok := stabilityRank[s]; ok {
		return r
	}
	return unrankedStability
}

func (p Policy) cap(scores []frequency.SurpriseScore) []frequency.SurpriseScore {
	max := p.MaxWarnings
	if max <= 0 {
		max = DefaultMaxWarnings
	}
	if len(scores) > max {
		return scores[:max]
	}
	return scores
}
