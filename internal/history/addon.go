package history

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ebuildkit/histscan/internal/git"
)

// Options configures the history addon.
type Options struct {
	// CacheDir is the root under which per-location cache files live.
	CacheDir string
	// Enabled toggles the whole git subsystem; it is forced off when
	// the git binary is missing.
	Enabled bool
	// Reference is the remote-tracking head that cross-run history is
	// merged up to.
	Reference string
	// LocalBranch is the branch compared against Reference when
	// building local-commits views.
	LocalBranch string
}

func (o *Options) applyDefaults() {
	if o.Reference == "" {
		o.Reference = "origin/HEAD"
	}
	if o.LocalBranch == "" {
		o.LocalBranch = "master"
	}
}

// Addon owns the registry of per-location history caches for one
// service instance. It is constructed at startup and passed by
// reference to consumers; there is no ambient global state.
type Addon struct {
	opts    Options
	logger  *slog.Logger
	enabled bool
	caches  map[string]*Cache
	ignores map[string][]string
}

// NewAddon builds the addon, probing for the git binary; a missing
// binary disables the subsystem as a feature flag rather than failing.
func NewAddon(opts Options, logger *slog.Logger) *Addon {
	opts.applyDefaults()
	enabled := opts.Enabled
	if enabled && !git.Available() {
		logger.Warn("git binary not found, disabling git support")
		enabled = false
	}
	return &Addon{
		opts:    opts,
		logger:  logger,
		enabled: enabled,
		caches:  make(map[string]*Cache),
		ignores: make(map[string][]string),
	}
}

// Enabled reports whether git support is active.
func (a *Addon) Enabled() bool { return a.enabled }

// CacheFile returns the cache file path for a repository location.
func (a *Addon) CacheFile(location string) string {
	name := strings.Trim(strings.ReplaceAll(location, string(os.PathSeparator), "_"), "_")
	return filepath.Join(a.opts.CacheDir, "repos", name, "git.json.zst")
}

// UpdateCache refreshes the cache of each repository location and
// persists any cache that was created or extended. With force set the
// full history is re-parsed regardless of existing cache state.
func (a *Addon) UpdateCache(ctx context.Context, locations []string, force bool) error {
	if !a.enabled {
		return nil
	}
	for _, loc := range locations {
		head, err := git.ResolveCommit(ctx, loc, a.opts.Reference)
		if err != nil {
			a.logger.Debug("skipping git cache update", "repo", loc, "err", err)
			continue
		}

		path := a.CacheFile(loc)
		var c *Cache
		if !force {
			c = Load(path, a.logger)
		}

		dirty := false
		switch {
		case c == nil:
			a.logger.Debug("building git cache", "repo", loc, "head", head)
			data, err := a.update(ctx, loc, a.opts.Reference, nil)
			if err != nil {
				if errors.Is(err, errSkipRepo) {
					continue
				}
				return err
			}
			c = &Cache{Version: SchemaVersion, Commit: head, Data: data}
			dirty = true
		case c.Commit != head:
			a.logger.Debug("updating git cache", "repo", loc, "from", c.Commit, "to", head)
			data, err := a.update(ctx, loc, c.Commit+".."+a.opts.Reference, c.Data)
			if err != nil {
				if errors.Is(err, errSkipRepo) {
					continue
				}
				return err
			}
			c = &Cache{Version: SchemaVersion, Commit: head, Data: data}
			dirty = true
		}

		a.caches[loc] = c
		if dirty {
			if err := Save(path, c); err != nil {
				return fmt.Errorf("failed writing git cache for %s: %w", loc, err)
			}
		}
	}
	return nil
}

var errSkipRepo = errors.New("skipping repo")

// update wraps Update with the oracle failure policy: a process that
// failed before producing any output downgrades to a warning and skips
// the repo, while a mid-stream failure aborts without persisting.
func (a *Addon) update(ctx context.Context, loc, commitRange string, data Data) (Data, error) {
	merged, err := Update(ctx, loc, commitRange, data, false)
	if err != nil {
		var oe *git.OracleError
		if errors.As(err, &oe) && !oe.Partial {
			a.logger.Warn("skipping git checks", "repo", loc, "err", oe)
			return nil, errSkipRepo
		}
		return nil, err
	}
	return merged, nil
}

// RemoveCache deletes the persisted cache files for the given
// locations.
func (a *Addon) RemoveCache(locations []string) error {
	for _, loc := range locations {
		if err := os.Remove(a.CacheFile(loc)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed removing git cache for %s: %w", loc, err)
		}
	}
	return nil
}

// CachedRepo exposes the refreshed history of the given locations as a
// single (possibly multiplexed) virtual repository restricted by
// filter. It returns nil when git support is disabled or any location
// has no usable history (e.g. a shallow clone with no commits).
func (a *Addon) CachedRepo(filter StatusFilter, locations ...string) Repo {
	if !a.enabled {
		return nil
	}
	var repos []Repo
	for _, loc := range locations {
		c := a.caches[loc]
		if c == nil || len(c.Data) == 0 {
			a.logger.Warn("skipping git checks: no history", "repo", loc)
			return nil
		}
		repos = append(repos, NewRepo(filepath.Base(loc)+"-history", c.Data, filter))
	}
	return Multiplex(repos...)
}

// CommitsRepo builds a virtual repository over commits that exist on
// the local branch but not on the reference, with full commit records
// attached (local mode). The result is empty when the heads match or
// git support is disabled.
func (a *Addon) CommitsRepo(ctx context.Context, location string, filter StatusFilter) Repo {
	id := filepath.Base(location) + "-commits"
	data := Data{}
	if a.enabled {
		if rng, ok := a.localRange(ctx, location); ok {
			d, err := Update(ctx, location, rng, nil, true)
			if err != nil {
				a.logger.Warn("skipping git commit checks", "repo", location, "err", err)
			} else {
				data = d
			}
		}
	}
	return NewRepo(id, data, filter)
}

// Commits returns the raw commit records on the local branch that are
// not on the reference, newest first.
func (a *Addon) Commits(ctx context.Context, location string) ([]*git.Commit, error) {
	if !a.enabled {
		return nil, nil
	}
	rng, ok := a.localRange(ctx, location)
	if !ok {
		return nil, nil
	}
	var commits []*git.Commit
	p := &git.LogParser{RepoPath: location}
	err := p.Commits(ctx, rng, func(c *git.Commit, _ []string) error {
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		a.logger.Warn("skipping git commit checks", "repo", location, "err", err)
		return nil, nil
	}
	return commits, nil
}

func (a *Addon) localRange(ctx context.Context, location string) (string, bool) {
	origin, err := git.ResolveCommit(ctx, location, a.opts.Reference)
	if err != nil {
		a.logger.Warn("skipping git commit checks", "repo", location, "err", err)
		return "", false
	}
	local, err := git.ResolveCommit(ctx, location, a.opts.LocalBranch)
	if err != nil {
		a.logger.Warn("skipping git commit checks", "repo", location, "err", err)
		return "", false
	}
	if origin == local {
		return "", false
	}
	return a.opts.Reference + ".." + a.opts.LocalBranch, true
}

// Ignored reports whether a path inside a repository is matched by the
// repo's .gitignore or .git/info/exclude patterns. Patterns apply in
// file order with the last match deciding, so a later "!pattern" line
// re-includes a path an earlier line excluded.
func (a *Addon) Ignored(location, path string) bool {
	rel := strings.TrimPrefix(path, location)
	rel = strings.TrimPrefix(rel, string(os.PathSeparator))
	rel = filepath.ToSlash(rel)
	ignored := false
	for _, pattern := range a.ignorePatterns(location) {
		negated := strings.HasPrefix(pattern, "!")
		if negated {
			pattern = pattern[1:]
		}
		if matchIgnore(pattern, rel) {
			ignored = !negated
		}
	}
	return ignored
}

func (a *Addon) ignorePatterns(location string) []string {
	if pats, ok := a.ignores[location]; ok {
		return pats
	}
	var pats []string
	for _, name := range []string{".gitignore", filepath.Join(".git", "info", "exclude")} {
		f, err := os.Open(filepath.Join(location, name))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				a.logger.Warn("failed reading ignore file", "path", name, "err", err)
			}
			continue
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			pats = append(pats, line)
		}
		f.Close()
	}
	a.ignores[location] = pats
	return pats
}

func matchIgnore(pattern, rel string) bool {
	pattern = strings.TrimPrefix(pattern, "/")
	if strings.HasSuffix(pattern, "/") {
		pattern += "**"
	}
	if ok, _ := doublestar.Match(pattern, rel); ok {
		return true
	}
	// unanchored patterns match at any depth
	if !strings.Contains(strings.TrimSuffix(pattern, "/**"), "/") {
		if ok, _ := doublestar.Match("**/"+pattern, rel); ok {
			return true
		}
	}
	return false
}
