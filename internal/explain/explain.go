// Package explain renders gated warnings into human-readable text.
// Every message is three sentences: what was observed, what the developer's
// history says is normal there, and that the two disagree. No sentence ever
// gives advice or passes judgment; the engine reports deviation, nothing
// more.
package explain

import (
	"fmt"
	"math"
	"strings"

	"github.com/driftwatch/driftwatch/internal/frequency"
	"github.com/driftwatch/driftwatch/internal/gate"
	"github.com/driftwatch/driftwatch/internal/pattern"
)

// Explanation pairs one warning with its rendered message.
type Explanation struct {
	Warning gate.Warning `json:"warning" yaml:"warning"`
	Message string       `json:"message" yaml:"message"`
}

type observationKey struct {
	Detector string
	Observed bool
}

// observationSentences maps (detector, observed) to a fixed first sentence.
// Detectors not registered here use the generic fallback keyed by observed.
var observationSentences = map[observationKey]string{
	{"has_timeout_parameter", false}: "This call does not carry a timeout or deadline.",
	{"has_timeout_parameter", true}:  "This call carries a timeout or deadline.",
	{"mutates_parameter", false}:     "This function does not reassign any of its parameters.",
	{"mutates_parameter", true}:      "This function reassigns one or more of its parameters.",
	{"writes_global_state", false}:   "This function does not write to package-level state.",
	{"writes_global_state", true}:    "This function writes to package-level state.",
	{"has_broad_exception", false}:   "This function does not install a blanket recover.",
	{"has_broad_exception", true}:    "This function installs a blanket recover for all panics.",
	{"swallows_exception", false}:    "This error is handled rather than discarded.",
	{"swallows_exception", true}:     "This error is discarded without being handled.",
}

var observationFallback = map[bool]string{
	false: "The pattern was not detected here.",
	true:  "The pattern was detected here.",
}

var locationLabels = map[pattern.Location]string{
	pattern.LocationTopLevel: "a top-level function",
	pattern.LocationMethod:   "a method",
	pattern.LocationNested:   "a nested function",
}

var stabilityLabels = map[pattern.Stability]string{
	pattern.StabilityNew:      "a recently created file",
	pattern.StabilityVolatile: "a frequently changing file",
	pattern.StabilityModified: "a recently modified file",
	pattern.StabilityStable:   "a stable file",
}

// deviationSentence closes every message. It is identical across detectors
// and contexts: it asserts the observation is unusual for this developer and
// nothing else.
const deviationSentence = "This deviation is unusual for you."

// Explain renders one explanation per warning, order-preserving. Inputs are
// never mutated.
func Explain(warnings []gate.Warning) []Explanation {
	explanations := make([]Explanation, 0, len(warnings))
	for _, w := range warnings {
		explanations = append(explanations, Explanation{
			Warning: w,
			Message: buildMessage(w.Score),
		})
	}
	return explanations
}

func buildMessage(s frequency.SurpriseScore) string {
	return strings.Join([]string{
		observationSentence(s),
		normSentence(s),
		deviationSentence,
	}, "\n")
}

func observationSentence(s frequency.SurpriseScore) string {
	if sentence, ok := observationSentences[observationKey{s.Detector, s.Observed}]; ok {
		return sentence
	}
	return observationFallback[s.Observed]
}

func normSentence(s frequency.SurpriseScore) string {
	trueCount := int(math.Round(s.HistoricalFreq * float64(s.SampleSize)))
	pct := int(math.Round(s.HistoricalFreq * 100))

	locLabel, ok := locationLabels[s.Context.Location]
	if !ok {
		locLabel = "this context"
	}
	stabLabel, ok := stabilityLabels[s.Context.Stability]
	if !ok {
		stabLabel = "this file"
	}

	return fmt.Sprintf("In %s within %s, this pattern is present %d%% of the time (%d out of %d).",
		locLabel, stabLabel, pct, trueCount, s.SampleSize)
}
