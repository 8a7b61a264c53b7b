package gitlog

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	if err := gitIn(dir, "init"); err != nil {
		t.Skip("git not available")
	}
	mustGit(t, dir, "config", "user.email", "dev@example.com")
	mustGit(t, dir, "config", "user.name", "Dev")
	return dir
}

func gitIn(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return cmd.Run()
}

func mustGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	if err := gitIn(dir, args...); err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
}

func commitFile(t *testing.T, dir, name, content, message string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	mustGit(t, dir, "add", name)
	mustGit(t, dir, "commit", "-m", message)
}

func TestNewHistoryRejectsNonRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	_, err := NewHistory(t.TempDir(), nil)
	if err == nil {
		t.Fatal("NewHistory should reject a directory that is not a git repository")
	}
}

func TestCommits(t *testing.T) {
	dir := initTestRepo(t)

	commitFile(t, dir, "main.go", "package main\n\nfunc main() {}\n", "initial commit")
	commitFile(t, dir, "main.go", "package main\n\nfunc main() { run() }\n", "fix startup crash")
	commitFile(t, dir, "README.md", "# Project\n", "add readme")

	h, err := NewHistory(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	commits, err := h.Commits(Options{AuthorEmail: "dev@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	// The readme-only commit is dropped; the two Go commits survive,
	// newest first.
	if len(commits) != 2 {
		t.Fatalf("Commits() returned %d commits, want 2", len(commits))
	}
	if commits[0].Message != "fix startup crash" {
		t.Errorf("newest commit message = %q, want %q", commits[0].Message, "fix startup crash")
	}
	if !commits[0].HasFixKeyword() {
		t.Error("fix commit should carry a fix keyword")
	}
	if commits[1].Message != "initial commit" {
		t.Errorf("oldest commit message = %q, want %q", commits[1].Message, "initial commit")
	}

	for _, c := range commits {
		if c.AuthorEmail != "dev@example.com" {
			t.Errorf("author = %q, want dev@example.com", c.AuthorEmail)
		}
		if !c.Touches("main.go") {
			t.Errorf("commit %s should touch main.go", c.SHA)
		}
	}

	if commits[1].FileDiffs[0].Additions == 0 {
		t.Error("initial commit should count added lines")
	}
}

func TestCommitsResolvesAuthorFromConfig(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "pkg.go", "package pkg\n", "add package")

	h, err := NewHistory(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Empty author falls back to git config user.email.
	commits, err := h.Commits(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 1 {
		t.Fatalf("Commits() returned %d commits, want 1", len(commits))
	}
}

func TestCommitsMaxCount(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "a.go", "package p\n", "add a")
	commitFile(t, dir, "b.go", "package p\n", "add b")
	commitFile(t, dir, "c.go", "package p\n", "add c")

	h, err := NewHistory(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	commits, err := h.Commits(Options{AuthorEmail: "dev@example.com", MaxCount: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 2 {
		t.Fatalf("Commits() returned %d commits, want 2", len(commits))
	}
}

func TestCommitsFiltersOtherAuthors(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "mine.go", "package p\n", "my change")

	mustGit(t, dir, "config", "user.email", "other@example.com")
	commitFile(t, dir, "theirs.go", "package p\n", "their change")
	mustGit(t, dir, "config", "user.email", "dev@example.com")

	h, err := NewHistory(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	commits, err := h.Commits(Options{AuthorEmail: "dev@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 1 {
		t.Fatalf("Commits() returned %d commits, want 1", len(commits))
	}
	if commits[0].Message != "my change" {
		t.Errorf("commit message = %q, want %q", commits[0].Message, "my change")
	}
}
