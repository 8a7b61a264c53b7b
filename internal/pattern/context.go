package pattern

import "fmt"

// Location describes where in a source file a pattern was observed.
type Location string

const (
	LocationTopLevel Location = "top_level"
	LocationMethod   Location = "method"
	LocationNested   Location = "nested"
)

// Operation is the family of behavior a detector belongs to.
type Operation string

const (
	OpExternalCall  Operation = "external"
	OpMutation      Operation = "mutation"
	OpErrorHandling Operation = "error"
	OpComputation   Operation = "computation"
)

// Stability classifies a file by its recent commit history.
type Stability string

const (
	StabilityNew      Stability = "new"      // first appeared < 30 days ago
	StabilityVolatile Stability = "volatile" // >= 3 fix commits in 90 days
	StabilityModified Stability = "modified" // touched within 90 days
	StabilityStable   Stability = "stable"   // untouched for > 90 days
)

// Enumerations of every valid value, used to bound the bucket space.
var (
	Locations   = []Location{LocationTopLevel, LocationMethod, LocationNested}
	Operations  = []Operation{OpExternalCall, OpMutation, OpErrorHandling, OpComputation}
	Stabilities = []Stability{StabilityNew, StabilityVolatile, StabilityModified, StabilityStable}
)

// Context is the grouping key for frequency counting: one bucket per
// (location, operation, stability) triple. It is a plain value type so two
// independently built contexts with equal fields are the same map key.
type Context struct {
	Location  Location  `json:"location" yaml:"location"`
	Operation Operation `json:"operation" yaml:"operation"`
	Stability Stability `json:"stability" yaml:"stability"`
}

// Key renders the context as a compact bucket signature.
func (c Context) Key() string {
	return fmt.Sprintf("%s:%s:%s", c.Location, c.Operation, c.Stability)
}

// ParseOperation maps a configuration string to an Operation. Unknown values
// report false; callers fall back to OpComputation.
func ParseOperation(s string) (Operation, bool) {
	switch Operation(s) {
	case OpExternalCall, OpMutation, OpErrorHandling, OpComputation:
		return Operation(s), true
	}
	return OpComputation, false
}
