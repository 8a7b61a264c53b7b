package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/driftwatch/driftwatch/internal/analyzer"
)

// QuietFormatter prints a one-line summary, suitable for pre-commit hooks.
type QuietFormatter struct{}

func (f *QuietFormatter) Format(report *analyzer.Report, w io.Writer) error {
	suffix := ""
	if report.ColdStart {
		suffix = " (cold start)"
	}
	_, err := fmt.Fprintf(w, "driftwatch: %d findings across %d files%s\n",
		len(report.Findings), report.AnalyzedFiles, suffix)
	return err
}

// JSONFormatter emits the full report as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(report *analyzer.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// YAMLFormatter emits the full report as YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(report *analyzer.Report, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(report)
}
