// Package scope turns the committed changes against a reference into a
// concrete restriction set: the package atoms and eclass names a scan
// should be limited to.
package scope

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"

	"github.com/ebuildkit/histscan/internal/atom"
	"github.com/ebuildkit/histscan/internal/git"
)

// ErrNothingToScan signals that the diff against the reference yielded
// no targets; the scan should terminate cleanly rather than proceed
// with an empty restriction.
var ErrNothingToScan = errors.New("no changes to scan")

// Scope is the computed restriction: an OR over changed package atoms
// plus a name set over changed eclasses.
type Scope struct {
	Atoms    []atom.Atom
	Eclasses []string
}

// HasEclass reports membership in the changed-eclass set.
func (s *Scope) HasEclass(name string) bool {
	for _, e := range s.Eclasses {
		if e == name {
			return true
		}
	}
	return false
}

// MatchesAtom reports whether a package atom falls inside the scope
// (category/package granularity).
func (s *Scope) MatchesAtom(a atom.Atom) bool {
	for _, sa := range s.Atoms {
		if sa.CP() == a.CP() {
			return true
		}
	}
	return false
}

var eclassRE = regexp.MustCompile(`^eclass/(\S+)\.eclass$`)

// Resolve computes the scan scope for a repository: the name-only diff
// of staged changes between ref and the index, restricted to the given
// top-level category directories plus the eclass directory when
// present. Paths that do not produce valid atoms are dropped silently.
func Resolve(ctx context.Context, repoPath, ref string, categoryDirs []string, hasEclassDir bool) (*Scope, error) {
	if !git.Available() {
		return nil, fmt.Errorf("%w: needed to determine scan targets", git.ErrGitUnavailable)
	}

	targets := append([]string{}, categoryDirs...)
	sort.Strings(targets)
	if hasEclassDir {
		targets = append(targets, "eclass")
	}

	args := append([]string{"-C", repoPath, "diff", "--cached", ref, "--name-only", "--"}, targets...)
	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		oe := &git.OracleError{Op: "diff", Stderr: stderr.String(), Err: err}
		return nil, fmt.Errorf("failed determining scan targets: %w", oe)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return nil, ErrNothingToScan
	}

	scope := &Scope{}
	seenCP := map[string]bool{}
	for _, path := range strings.Split(out, "\n") {
		if m := eclassRE.FindStringSubmatch(path); m != nil {
			scope.Eclasses = append(scope.Eclasses, m[1])
			continue
		}
		// the first two path segments name the package
		parts := strings.SplitN(path, "/", 3)
		if len(parts) < 3 {
			continue
		}
		cp := parts[0] + "/" + parts[1]
		if seenCP[cp] {
			continue
		}
		a, err := packageAtom(parts[0], parts[1])
		if err != nil {
			continue
		}
		seenCP[cp] = true
		scope.Atoms = append(scope.Atoms, a)
	}

	if len(scope.Atoms) == 0 && len(scope.Eclasses) == 0 {
		return nil, ErrNothingToScan
	}

	sort.Slice(scope.Atoms, func(i, j int) bool {
		return atom.Compare(scope.Atoms[i], scope.Atoms[j]) < 0
	})
	sort.Strings(scope.Eclasses)
	return scope, nil
}

// packageAtom builds an unversioned package-granularity atom, applying
// the same name validation as the exact-version parser.
func packageAtom(category, pkg string) (atom.Atom, error) {
	// piggyback on the versioned parser with a placeholder version
	a, err := atom.Parse(category + "/" + pkg + "-0")
	if err != nil || a.Package != pkg {
		return atom.Atom{}, fmt.Errorf("invalid package path %s/%s", category, pkg)
	}
	return atom.Atom{Category: category, Package: pkg}, nil
}
