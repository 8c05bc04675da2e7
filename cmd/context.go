package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ebuildkit/histscan/config"
	"github.com/ebuildkit/histscan/internal/history"
	"github.com/ebuildkit/histscan/internal/output"
)

// non-category directories found at the top level of ebuild repositories
var nonCategoryDirs = map[string]bool{
	"eclass":    true,
	"profiles":  true,
	"metadata":  true,
	"licenses":  true,
	"scripts":   true,
	"files":     true,
	"distfiles": true,
	"packages":  true,
}

// repoTarget resolves and validates the --repo flag.
func repoTarget(c *cli.Context) (string, error) {
	path, err := filepath.Abs(c.String("repo"))
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("not a repository directory: %s", path)
	}
	return path, nil
}

// categoryDirs lists the repository's top-level category directories,
// preferring the profiles/categories listing when it exists.
func categoryDirs(repoPath string) ([]string, error) {
	if data, err := os.ReadFile(filepath.Join(repoPath, "profiles", "categories")); err == nil {
		var cats []string
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				cats = append(cats, line)
			}
		}
		sort.Strings(cats)
		return cats, nil
	}

	entries, err := os.ReadDir(repoPath)
	if err != nil {
		return nil, err
	}
	var cats []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || nonCategoryDirs[name] || strings.HasPrefix(name, ".") {
			continue
		}
		cats = append(cats, name)
	}
	sort.Strings(cats)
	return cats, nil
}

// hasEclassDir reports whether the repository carries an eclass dir.
func hasEclassDir(repoPath string) bool {
	info, err := os.Stat(filepath.Join(repoPath, "eclass"))
	return err == nil && info.IsDir()
}

// newAddon wires a history addon from the configuration.
func newAddon(c *cli.Context, cfg config.Config) *history.Addon {
	return history.NewAddon(history.Options{
		CacheDir:    cfg.Cache.Dir,
		Enabled:     cfg.Git.Enabled,
		Reference:   cfg.Git.Reference,
		LocalBranch: cfg.Git.LocalBranch,
	}, newLogger(c))
}

// statusFilter maps a filter name to the corresponding view.
func statusFilter(name string) (history.StatusFilter, error) {
	switch name {
	case "changed", "":
		return history.FilterChanged, nil
	case "modified":
		return history.FilterModified, nil
	case "added":
		return history.FilterAdded, nil
	case "removed":
		return history.FilterRemoved, nil
	default:
		return nil, fmt.Errorf("unknown status filter %q (expected changed, modified, added, or removed)", name)
	}
}

// collectEvents flattens repo queries into reportable events, ordered
// by commit date.
func collectEvents(repo history.Repo, category, pkg string) []output.Event {
	var pkgs []history.PseudoPackage
	switch {
	case category != "" && pkg != "":
		pkgs = repo.VersionsSorted(category, pkg, history.ByDate)
	case category != "":
		for _, p := range repo.Packages(category) {
			pkgs = append(pkgs, repo.VersionsSorted(category, p, history.ByDate)...)
		}
	default:
		for _, cat := range repo.Categories() {
			for _, p := range repo.Packages(cat) {
				pkgs = append(pkgs, repo.VersionsSorted(cat, p, history.ByDate)...)
			}
		}
	}

	events := make([]output.Event, 0, len(pkgs))
	for _, p := range pkgs {
		events = append(events, output.Event{
			Atom:   p.Atom().String(),
			Status: p.Status().String(),
			Date:   p.Date(),
			Commit: p.CommitHash(),
		})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	return events
}
