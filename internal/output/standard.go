package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/driftwatch/driftwatch/internal/analyzer"
)

// StandardFormatter renders the full findings as text, colorized when the
// destination is a terminal.
type StandardFormatter struct{}

func (f *StandardFormatter) Format(report *analyzer.Report, w io.Writer) error {
	header := color.New(color.Bold)
	detectorColor := color.New(color.FgYellow)
	dimColor := color.New(color.Faint)

	if !writerIsTerminal(w) {
		header.DisableColor()
		detectorColor.DisableColor()
		dimColor.DisableColor()
	}

	header.Fprintf(w, "Analyzed repository: %s\n", report.RepoPath)
	fmt.Fprintf(w, "Files: %d  Commits: %d  Findings: %d\n\n",
		report.AnalyzedFiles, report.Commits, len(report.Findings))

	if len(report.Findings) == 0 {
		if report.ColdStart {
			fmt.Fprintln(w, "No warnings (cold start).")
			fmt.Fprintln(w)
			fmt.Fprintln(w, "The frequency table is empty, so every pattern is blocked by the")
			fmt.Fprintln(w, "sparsity gate. The engine refuses to guess when evidence is missing;")
			fmt.Fprintln(w, "warnings appear once a baseline has accumulated.")
		} else {
			fmt.Fprintln(w, "No warnings. Nothing deviates from your historical patterns.")
		}
		return nil
	}

	for i, finding := range report.Findings {
		score := finding.Warning.Score

		header.Fprintf(w, "Finding #%d\n", i+1)
		detectorColor.Fprintf(w, "Detector: %s\n", score.Detector)
		dimColor.Fprintf(w, "Context: %s  surprise=%.2f  samples=%d\n",
			score.Context.Key(), score.Surprise, score.SampleSize)
		fmt.Fprintln(w)
		fmt.Fprintln(w, finding.Message)
		fmt.Fprintln(w)
		dimColor.Fprintln(w, strings.Repeat("-", 70))
		fmt.Fprintln(w)
	}

	return nil
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
