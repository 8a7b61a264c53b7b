package gitlog

import (
	"testing"
	"time"
)

func TestMessageContainsAny(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"fix keyword", "fix nil pointer in handler", true},
		{"uppercase", "Fix race in worker pool", true},
		{"embedded", "hotfix for release", true},
		{"bug keyword", "resolve parser bug", true},
		{"crash keyword", "prevent crash on empty input", true},
		{"feature commit", "add pagination to list endpoint", false},
		{"refactor commit", "refactor config loading", false},
		{"empty message", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Commit{Message: tt.message}
			if got := c.HasFixKeyword(); got != tt.want {
				t.Errorf("HasFixKeyword(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestIsRefactor(t *testing.T) {
	if !(Commit{Message: "cleanup dead code"}).IsRefactor() {
		t.Error("cleanup should classify as refactor")
	}
	if (Commit{Message: "fix crash on startup"}).IsRefactor() {
		t.Error("fix should not classify as refactor")
	}
}

func TestCommitFileQueries(t *testing.T) {
	c := Commit{
		FileDiffs: []FileDiff{
			{FilePath: "internal/api/server.go"},
			{FilePath: "README.md"},
			{FilePath: "internal/api/server_test.go"},
		},
	}

	if !c.Touches("README.md") {
		t.Error("Touches should find README.md")
	}
	if c.Touches("missing.go") {
		t.Error("Touches should not find missing.go")
	}
	if got := len(c.FilesChanged()); got != 3 {
		t.Errorf("FilesChanged() returned %d paths, want 3", got)
	}
	if got := len(c.GoFilesChanged()); got != 2 {
		t.Errorf("GoFilesChanged() returned %d paths, want 2", got)
	}
}

func TestAgeInDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := Commit{Timestamp: now.AddDate(0, 0, -45)}
	if got := c.AgeInDays(now); got != 45 {
		t.Errorf("AgeInDays() = %v, want 45", got)
	}
}

const sampleDiff = `diff --git a/internal/api/server.go b/internal/api/server.go
index 1111111..2222222 100644
--- a/internal/api/server.go
+++ b/internal/api/server.go
@@ -10,6 +10,8 @@ func (s *Server) Start() error {
 	ln, err := net.Listen("tcp", s.addr)
 	if err != nil {
-		return err
+		return fmt.Errorf("listen on %s: %w", s.addr, err)
 	}
+	s.ln = ln
 	return s.serve(ln)
diff --git a/docs/usage.md b/docs/usage.md
index 3333333..4444444 100644
--- a/docs/usage.md
+++ b/docs/usage.md
@@ -1,2 +1,3 @@
+New docs line.
diff --git a/internal/api/routes.go b/internal/api/routes.go
index 5555555..6666666 100644
--- a/internal/api/routes.go
+++ b/internal/api/routes.go
@@ -5,3 +5,4 @@
+	mux.HandleFunc("/healthz", s.healthz)
`

func TestParseDiff(t *testing.T) {
	diffs := ParseDiff(sampleDiff)

	if len(diffs) != 2 {
		t.Fatalf("ParseDiff() returned %d diffs, want 2 (markdown excluded)", len(diffs))
	}

	server := diffs[0]
	if server.FilePath != "internal/api/server.go" {
		t.Errorf("first diff path = %q, want internal/api/server.go", server.FilePath)
	}
	if server.Additions != 2 || server.Deletions != 1 {
		t.Errorf("server.go counts = +%d/-%d, want +2/-1", server.Additions, server.Deletions)
	}
	if !server.IsGo() {
		t.Error("server.go should report IsGo")
	}

	routes := diffs[1]
	if routes.FilePath != "internal/api/routes.go" {
		t.Errorf("second diff path = %q, want internal/api/routes.go", routes.FilePath)
	}
	if routes.Additions != 1 || routes.Deletions != 0 {
		t.Errorf("routes.go counts = +%d/-%d, want +1/-0", routes.Additions, routes.Deletions)
	}
}

func TestParseDiffEmpty(t *testing.T) {
	if diffs := ParseDiff(""); len(diffs) != 0 {
		t.Errorf("ParseDiff(\"\") returned %d diffs, want 0", len(diffs))
	}
	if diffs := ParseDiff("not a diff at all\njust text\n"); len(diffs) != 0 {
		t.Errorf("ParseDiff(garbage) returned %d diffs, want 0", len(diffs))
	}
}
