package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// requireGit skips tests that need a real git binary.
func requireGit(t *testing.T) {
	t.Helper()
	if !Available() {
		t.Skip("git binary not available")
	}
}

func execGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v: %s", args, err, out)
	}
	return string(out)
}

// initRepo creates a git repository with a deterministic identity.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	execGit(t, dir, "init", "-b", "master")
	execGit(t, dir, "config", "user.name", "Test User")
	execGit(t, dir, "config", "user.email", "test@example.com")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
