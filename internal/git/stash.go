package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Stash shelves uncommitted working-tree state for the duration of a
// scan. Acquire it before touching the repository and defer Release so
// restoration runs on every exit path. Concurrent git activity in the
// same repository while a stash is held is unsupported.
type Stash struct {
	repoPath string
	stashed  bool
	released bool
}

// AcquireStash checks the working tree for untracked or uncommitted
// modifications and, if any exist, shelves them under a stash entry
// labeled with label. A shelving failure is returned as a fatal error
// and the working tree is not touched further.
func AcquireStash(ctx context.Context, repoPath, label string) (*Stash, error) {
	s := &Stash{repoPath: repoPath}

	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "ls-files", "-mo", "--exclude-standard")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil || strings.TrimSpace(stdout.String()) == "" {
		// nothing to shelve (or not a git repo, which later oracle
		// calls will report on their own)
		return s, nil
	}

	push := exec.CommandContext(ctx, "git", "-C", repoPath, "stash", "push", "-u", "-m", label)
	var stderr bytes.Buffer
	push.Stderr = &stderr
	if err := push.Run(); err != nil {
		return nil, fmt.Errorf("git failed stashing files: %s", firstLine(stderr.String()))
	}
	s.stashed = true
	return s, nil
}

// Stashed reports whether a shelving occurred on acquisition.
func (s *Stash) Stashed() bool { return s.stashed }

// Release restores previously shelved state. It is idempotent; only the
// first call pops the stash. A restore failure (e.g. a conflict) is
// returned with remediation guidance and no automatic resolution is
// attempted.
func (s *Stash) Release(ctx context.Context) error {
	if !s.stashed || s.released {
		return nil
	}
	s.released = true

	pop := exec.CommandContext(ctx, "git", "-C", s.repoPath, "stash", "pop")
	var stderr bytes.Buffer
	pop.Stderr = &stderr
	if err := pop.Run(); err != nil {
		return fmt.Errorf(
			"git failed applying stash: %s: run `git stash pop` in %s to restore your changes manually",
			firstLine(stderr.String()), s.repoPath)
	}
	return nil
}
