package history

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/ebuildkit/histscan/internal/git"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requireGit(t *testing.T) {
	t.Helper()
	if !git.Available() {
		t.Skip("git binary not available")
	}
}

// testRepo builds git repositories with go-git for the CLI oracle to
// read back.
type testRepo struct {
	t    *testing.T
	dir  string
	w    *gogit.Worktree
	when time.Time
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to initialize git repo: %v", err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	return &testRepo{
		t:    t,
		dir:  dir,
		w:    w,
		when: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *testRepo) write(name, content string) {
	r.t.Helper()
	path := filepath.Join(r.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
	if _, err := r.w.Add(name); err != nil {
		r.t.Fatalf("add %s: %v", name, err)
	}
}

func (r *testRepo) remove(name string) {
	r.t.Helper()
	if _, err := r.w.Remove(name); err != nil {
		r.t.Fatalf("remove %s: %v", name, err)
	}
}

// commit creates a commit one day after the previous one and returns
// its full hash.
func (r *testRepo) commit(message string) string {
	r.t.Helper()
	r.when = r.when.Add(24 * time.Hour)
	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: r.when}
	hash, err := r.w.Commit(message, &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		r.t.Fatalf("commit %q: %v", message, err)
	}
	return hash.String()
}
