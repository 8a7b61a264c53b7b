package output

import (
	"io"
	"os"

	"github.com/driftwatch/driftwatch/internal/analyzer"
)

// Formatter renders an analysis report.
type Formatter interface {
	Format(report *analyzer.Report, w io.Writer) error
}

// Verbosity selects the rendering style.
type Verbosity int

const (
	VerbosityQuiet    Verbosity = iota // one-line summary, for hooks
	VerbosityStandard                  // full findings, colorized on a terminal
	VerbosityJSON                      // machine-readable JSON
	VerbosityYAML                      // machine-readable YAML
)

// NewFormatter returns the formatter for a verbosity level.
func NewFormatter(v Verbosity) Formatter {
	switch v {
	case VerbosityQuiet:
		return &QuietFormatter{}
	case VerbosityJSON:
		return &JSONFormatter{}
	case VerbosityYAML:
		return &YAMLFormatter{}
	default:
		return &StandardFormatter{}
	}
}

// DefaultVerbosity picks a default from the environment: quiet inside a git
// hook, standard everywhere else. Machine formats are opt-in flags.
func DefaultVerbosity() Verbosity {
	if os.Getenv("GIT_AUTHOR_DATE") != "" {
		return VerbosityQuiet
	}
	return VerbosityStandard
}
