package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Sentinel lines framing each commit in the custom log format. The "# "
// prefix cannot appear in any of the fixed metadata fields, so the
// markers never collide with ordinary log content.
const (
	beginCommitMarker = "# BEGIN COMMIT"
	endBodyMarker     = "# END MESSAGE BODY"
)

// logFormat is the --pretty layout: begin marker, four fixed metadata
// lines, the full message body, then the end-body marker. File-change
// lines from --name-status follow each commit.
var logFormat = strings.Join([]string{
	beginCommitMarker,
	"%h",       // abbreviated commit hash
	"%cd",      // committer date
	"%an <%ae>",
	"%cn <%ce>",
	"%B",
	endBodyMarker,
}, "%n")

// LogParser streams commits out of `git log --name-status` for a
// repository. Each invocation of Commits or Changes spawns one git
// process and consumes its output line by line; the sequence is
// forward-only and a fresh call is needed to re-read.
type LogParser struct {
	RepoPath string
}

// Commits runs the log oracle over commitRange and invokes fn once per
// parsed commit, passing the commit and its raw file-change lines.
// Returning an error from fn stops the stream and kills the process.
func (p *LogParser) Commits(ctx context.Context, commitRange string, fn func(*Commit, []string) error) error {
	args := []string{
		"-C", p.RepoPath,
		"log",
		"--name-status",
		"--date=short",
		"--diff-filter=ARMD",
		"--pretty=tformat:" + logFormat,
		commitRange,
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &OracleError{Op: "log", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &OracleError{Op: "log", Err: err}
	}

	produced, parseErr := parseLog(stdout, fn)
	if parseErr != nil {
		// stop and reap the process before reporting
		cmd.Process.Kill()
		io.Copy(io.Discard, stdout)
		cmd.Wait()
		return &OracleError{Op: "log", Stderr: stderr.String(), Partial: produced, Err: parseErr}
	}
	if err := cmd.Wait(); err != nil {
		return &OracleError{Op: "log", Stderr: stderr.String(), Partial: produced, Err: err}
	}
	return nil
}

// Changes runs the log oracle and invokes fn once per package change
// classified from the file-status section of each commit. When local is
// set, rename lines additionally yield an old-side event (see Classify).
func (p *LogParser) Changes(ctx context.Context, commitRange string, local bool, fn func(*PkgChange) error) error {
	return p.Commits(ctx, commitRange, func(c *Commit, lines []string) error {
		for _, line := range lines {
			for _, pc := range Classify(line, c, local) {
				if err := fn(pc); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// parseLog is the state machine over the sentinel-framed log stream.
// It reports whether at least one commit was emitted.
func parseLog(r io.Reader, fn func(*Commit, []string) error) (bool, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	produced := false
	line, ok := scanLine(sc)
	for ok {
		if line != beginCommitMarker {
			line, ok = scanLine(sc)
			continue
		}

		var meta [4]string
		for i := range meta {
			meta[i], ok = scanLine(sc)
			if !ok {
				return produced, fmt.Errorf("truncated log output: commit metadata")
			}
		}

		var message []string
		for {
			body, bok := scanLine(sc)
			if !bok {
				return produced, fmt.Errorf("truncated log output: message body")
			}
			if body == endBodyMarker {
				break
			}
			message = append(message, body)
		}
		// tformat appends one blank line after %B
		if n := len(message); n > 0 && message[n-1] == "" {
			message = message[:n-1]
		}

		commit := &Commit{
			Hash:      meta[0],
			Date:      meta[1],
			Author:    meta[2],
			Committer: meta[3],
			Message:   message,
		}

		var changes []string
		for {
			line, ok = scanLine(sc)
			if !ok || line == beginCommitMarker {
				break
			}
			if line != "" {
				changes = append(changes, line)
			}
		}

		if err := fn(commit, changes); err != nil {
			return produced, err
		}
		produced = true
	}
	return produced, sc.Err()
}

func scanLine(sc *bufio.Scanner) (string, bool) {
	if !sc.Scan() {
		return "", false
	}
	return sc.Text(), true
}
