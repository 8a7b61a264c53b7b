package gitlog

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxAgeDays bounds history extraction to roughly six months.
	DefaultMaxAgeDays = 180
	// DefaultMaxCommits caps how many commits are parsed per run.
	DefaultMaxCommits = 250
)

// Options controls history extraction.
type Options struct {
	// AuthorEmail restricts history to one author. Empty means "resolve it":
	// git config user.email first, then the most frequent recent author.
	AuthorEmail string
	// MaxAgeDays is the temporal window; commits older than this are dropped.
	MaxAgeDays int
	// MaxCount caps the number of commits returned.
	MaxCount int
	// ReferenceTime anchors the window. Zero means time.Now in UTC.
	ReferenceTime time.Time
}

// History extracts commit history from a local git repository.
type History struct {
	repoPath string
	logger   *logrus.Logger
}

// NewHistory validates repoPath is a git repository and returns an extractor.
func NewHistory(repoPath string, logger *logrus.Logger) (*History, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve repo path: %w", err)
	}

	h := &History{repoPath: abs, logger: logger}
	if _, err := h.run("rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("not a git repository: %s", repoPath)
	}
	return h, nil
}

func (h *History) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = h.repoPath
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w (output: %s)", strings.Join(args, " "), err, string(out))
	}
	return string(out), nil
}

// Commits returns the author's commits newest-first, windowed and capped per
// opts. Only commits that touched at least one Go file are kept.
func (h *History) Commits(opts Options) ([]Commit, error) {
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = DefaultMaxAgeDays
	}
	if opts.MaxCount <= 0 {
		opts.MaxCount = DefaultMaxCommits
	}
	reference := opts.ReferenceTime
	if reference.IsZero() {
		reference = time.Now().UTC()
	}

	author := opts.AuthorEmail
	if author == "" {
		author = h.resolveAuthor()
	}
	if author == "" {
		return nil, fmt.Errorf("could not determine author for %s", h.repoPath)
	}

	// Fetch extra commits; the Go-file filter below discards some.
	out, err := h.run("log",
		"--no-merges",
		"--format=%H|%ae|%at|%s",
		"--author="+author,
		fmt.Sprintf("--max-count=%d", opts.MaxCount*2),
		"HEAD")
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}

	window := time.Duration(opts.MaxAgeDays) * 24 * time.Hour
	var commits []Commit

	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}

		unix, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			continue
		}
		ts := time.Unix(unix, 0).UTC()

		age := reference.Sub(ts)
		if age < 0 {
			// Clock skew can place commits in the future; skip them.
			continue
		}
		if age > window {
			// git log is ordered newest to oldest, nothing further qualifies.
			break
		}

		commit, err := h.loadCommit(parts[0], parts[1], ts)
		if err != nil {
			if h.logger != nil {
				h.logger.WithError(err).WithField("sha", parts[0]).Debug("skipping unreadable commit")
			}
			continue
		}

		if len(commit.GoFilesChanged()) > 0 {
			commits = append(commits, commit)
		}
		if len(commits) >= opts.MaxCount {
			break
		}
	}

	return commits, nil
}

// resolveAuthor picks the developer whose habits are being modeled:
// the configured git identity when present, otherwise the most frequent
// author among recent commits.
func (h *History) resolveAuthor() string {
	if out, err := h.run("config", "--get", "user.email"); err == nil {
		if email := strings.TrimSpace(out); email != "" {
			return email
		}
	}
	return h.mostFrequentAuthor()
}

func (h *History) mostFrequentAuthor() string {
	out, err := h.run("log", "--format=%ae", "--max-count=100", "HEAD")
	if err != nil {
		return ""
	}

	counts := make(map[string]int)
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			counts[line]++
		}
	}
	if len(counts) == 0 {
		return ""
	}

	authors := make([]string, 0, len(counts))
	for a := range counts {
		authors = append(authors, a)
	}
	sort.Slice(authors, func(i, j int) bool {
		if counts[authors[i]] != counts[authors[j]] {
			return counts[authors[i]] > counts[authors[j]]
		}
		return authors[i] < authors[j]
	})
	return authors[0]
}

func (h *History) loadCommit(sha, authorEmail string, ts time.Time) (Commit, error) {
	message, err := h.run("log", "-1", "--format=%B", sha)
	if err != nil {
		return Commit{}, fmt.Errorf("read message for %s: %w", sha, err)
	}
	diff, err := h.run("show", "--format=", sha)
	if err != nil {
		return Commit{}, fmt.Errorf("read diff for %s: %w", sha, err)
	}

	return Commit{
		SHA:         sha,
		AuthorEmail: authorEmail,
		Timestamp:   ts,
		Message:     strings.TrimSpace(message),
		FileDiffs:   ParseDiff(diff),
	}, nil
}

var diffHeaderRe = regexp.MustCompile(` b/(.+)$`)

// ParseDiff splits raw `git show` output into per-file diffs, keeping Go
// files only. It counts added and removed lines but never interprets them.
func ParseDiff(raw string) []FileDiff {
	var diffs []FileDiff
	var currentFile string
	var currentLines []string

	flush := func() {
		if currentFile != "" && strings.HasSuffix(currentFile, ".go") {
			diffs = append(diffs, buildFileDiff(currentFile, currentLines))
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "diff --git") {
			flush()
			currentFile = ""
			currentLines = []string{line}
			if m := diffHeaderRe.FindStringSubmatch(line); m != nil {
				currentFile = m[1]
			}
			continue
		}
		if currentFile != "" {
			currentLines = append(currentLines, line)
		}
	}
	flush()

	return diffs
}

func buildFileDiff(path string, lines []string) FileDiff {
	additions, deletions := 0, 0
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			additions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
	}
	return FileDiff{
		FilePath:  path,
		Additions: additions,
		Deletions: deletions,
		DiffText:  strings.Join(lines, "\n"),
	}
}
