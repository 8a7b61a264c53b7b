package pattern

import (
	"time"

	"github.com/driftwatch/driftwatch/internal/gitlog"
)

// Stability thresholds. These are the stock values; a Classifier can be
// constructed with different ones through config.
const (
	DefaultNewDays      = 30
	DefaultVolatileDays = 90
	DefaultFixThreshold = 3
)

// DefaultDetectorOperations maps detector names to the operation family they
// observe. Detector names absent from the map classify as computation, so an
// unknown detector degrades safely instead of failing.
var DefaultDetectorOperations = map[string]Operation{
	"has_timeout_parameter": OpExternalCall,
	"has_error_wrapper":     OpErrorHandling,
	"mutates_parameter":     OpMutation,
	"writes_global_state":   OpMutation,
	"has_broad_exception":   OpErrorHandling,
	"swallows_exception":    OpErrorHandling,
}

// Classifier buckets (detector, code location, file history) triples into
// Contexts. It is pure: every method computes from its inputs alone.
type Classifier struct {
	DetectorOperations map[string]Operation
	FixKeywords        []string
	NewDays            int
	VolatileDays       int
	FixThreshold       int
}

// NewClassifier returns a classifier with the stock tables and thresholds.
func NewClassifier() *Classifier {
	return &Classifier{
		DetectorOperations: DefaultDetectorOperations,
		FixKeywords:        gitlog.FixKeywords,
		NewDays:            DefaultNewDays,
		VolatileDays:       DefaultVolatileDays,
		FixThreshold:       DefaultFixThreshold,
	}
}

// ScopeShape describes the enclosing scope of an AST node, reduced to what
// location classification needs.
type ScopeShape struct {
	// InFunction is true when the node sits inside a function body.
	InFunction bool
	// InMethod is true when the enclosing function has a receiver, or the
	// node sits directly inside a type's method set without a function.
	InMethod bool
	// Nested is true when the enclosing function is itself declared inside
	// another function.
	Nested bool
}

// DetermineLocation classifies scope shape. Precedence: nested function over
// method over top level; a function nested inside a method is still nested.
func DetermineLocation(scope ScopeShape) Location {
	if scope.InFunction {
		if scope.Nested {
			return LocationNested
		}
		if scope.InMethod {
			return LocationMethod
		}
		return LocationTopLevel
	}
	if scope.InMethod {
		return LocationMethod
	}
	return LocationTopLevel
}

// OperationFor returns the operation family for a detector name, defaulting
// to computation for names the table does not know.
func (cl *Classifier) OperationFor(detector string) Operation {
	if op, ok := cl.DetectorOperations[detector]; ok {
		return op
	}
	return OpComputation
}

// DetermineStability classifies a file from commit history.
// Precedence: NEW > VOLATILE > MODIFIED > STABLE.
func (cl *Classifier) DetermineStability(filePath string, commits []gitlog.Commit, now time.Time) Stability {
	firstSeen, seen := fileFirstSeen(filePath, commits)

	if !seen {
		return StabilityNew
	}

	if now.Sub(firstSeen).Hours()/24.0 < float64(cl.NewDays) {
		return StabilityNew
	}

	cutoff := now.Add(-time.Duration(cl.VolatileDays) * 24 * time.Hour)

	if cl.countFixCommits(filePath, commits, cutoff) >= cl.FixThreshold {
		return StabilityVolatile
	}

	lastMod, modified := lastModified(filePath, commits)
	if modified && !lastMod.Before(cutoff) {
		return StabilityModified
	}

	// No last-modified evidence defaults to the conservative middle ground,
	// never to STABLE and never to NEW.
	if !modified {
		return StabilityModified
	}

	return StabilityStable
}

// Assign composes location, operation and stability into one Context.
func (cl *Classifier) Assign(detector string, scope ScopeShape, filePath string, commits []gitlog.Commit, now time.Time) Context {
	return Context{
		Location:  DetermineLocation(scope),
		Operation: cl.OperationFor(detector),
		Stability: cl.DetermineStability(filePath, commits, now),
	}
}

func fileFirstSeen(filePath string, commits []gitlog.Commit) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, c := range commits {
		if c.Touches(filePath) {
			if !found || c.Timestamp.Before(earliest) {
				earliest = c.Timestamp
				found = true
			}
		}
	}
	return earliest, found
}

func lastModified(filePath string, commits []gitlog.Commit) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, c := range commits {
		if c.Touches(filePath) {
			if !found || c.Timestamp.After(latest) {
				latest = c.Timestamp
				found = true
			}
		}
	}
	return latest, found
}

func (cl *Classifier) countFixCommits(filePath string, commits []gitlog.Commit, cutoff time.Time) int {
	count := 0
	for _, c := range commits {
		if !c.Timestamp.Before(cutoff) && c.Touches(filePath) && c.MessageContainsAny(cl.FixKeywords) {
			count++
		}
	}
	return count
}
