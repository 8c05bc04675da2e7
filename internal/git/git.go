// Package git is the version-control oracle layer: it shells out to the
// git binary for log, diff, rev-parse, and stash operations and parses
// their output into the model types consumed by the history cache.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrGitUnavailable indicates the git binary was not found on PATH.
var ErrGitUnavailable = errors.New("git binary not found in PATH")

// OracleError carries the diagnostic output of a failed git invocation.
// Partial is set when the command had already produced output that was
// consumed before it failed; callers treat non-partial failures as a
// warning-level "no data" condition and partial failures as fatal.
type OracleError struct {
	Op      string
	Stderr  string
	Partial bool
	Err     error
}

func (e *OracleError) Error() string {
	msg := fmt.Sprintf("git %s failed: %v", e.Op, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + firstLine(s)
	}
	return msg
}

func (e *OracleError) Unwrap() error { return e.Err }

// Available reports whether the git binary can be found.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// ResolveCommit resolves a revision to its full commit hash via
// rev-parse.
func ResolveCommit(ctx context.Context, repoPath, rev string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "rev-parse", rev)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &OracleError{Op: "rev-parse", Stderr: stderr.String(), Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
