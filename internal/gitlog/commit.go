package gitlog

import (
	"strings"
	"time"
)

// FileDiff represents the changes to a single file within one commit.
type FileDiff struct {
	FilePath  string `json:"file_path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	DiffText  string `json:"-"`
}

// IsGo reports whether the diff touches a Go source file.
func (d FileDiff) IsGo() bool {
	return strings.HasSuffix(d.FilePath, ".go")
}

// Commit is a single commit with metadata and per-file changes.
// Commits are supplied to the analysis core newest-first and are
// treated as read-only after extraction.
type Commit struct {
	SHA         string     `json:"sha"`
	AuthorEmail string     `json:"author_email"`
	Timestamp   time.Time  `json:"timestamp"`
	Message     string     `json:"message"`
	FileDiffs   []FileDiff `json:"file_diffs"`
}

// FilesChanged returns the paths touched by this commit.
func (c Commit) FilesChanged() []string {
	paths := make([]string, 0, len(c.FileDiffs))
	for _, d := range c.FileDiffs {
		paths = append(paths, d.FilePath)
	}
	return paths
}

// Touches reports whether the commit changed the given path.
func (c Commit) Touches(path string) bool {
	for _, d := range c.FileDiffs {
		if d.FilePath == path {
			return true
		}
	}
	return false
}

// GoFilesChanged returns the Go file paths touched by this commit.
func (c Commit) GoFilesChanged() []string {
	var paths []string
	for _, d := range c.FileDiffs {
		if d.IsGo() {
			paths = append(paths, d.FilePath)
		}
	}
	return paths
}

// AgeInDays returns the commit age in fractional days at the reference time.
func (c Commit) AgeInDays(reference time.Time) float64 {
	return reference.Sub(c.Timestamp).Hours() / 24.0
}

// Default keyword lists for commit message classification. The stability
// classifier accepts its own list; these are the stock values.
var (
	FixKeywords      = []string{"fix", "bug", "error", "crash", "broken", "issue"}
	RefactorKeywords = []string{"refactor", "cleanup", "style", "migration"}
)

// MessageContainsAny reports whether the commit message contains any of the
// given keywords, case-insensitively.
func (c Commit) MessageContainsAny(keywords []string) bool {
	msg := strings.ToLower(c.Message)
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// HasFixKeyword reports whether the commit message suggests a bug fix.
func (c Commit) HasFixKeyword() bool {
	return c.MessageContainsAny(FixKeywords)
}

// IsRefactor reports whether the commit message suggests an intentional
// refactor rather than a fix.
func (c Commit) IsRefactor() bool {
	return c.MessageContainsAny(RefactorKeywords)
}
