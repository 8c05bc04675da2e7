// Package history reconstructs a queryable model of package changes
// from a repository's git history: an incremental on-disk cache of
// parsed commit data plus read-only pseudo-package views over it.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/ebuildkit/histscan/internal/atom"
	"github.com/ebuildkit/histscan/internal/git"
)

// SchemaVersion tags the persisted cache layout. Any mismatch with a
// stored file discards that file entirely; there is no migration.
const SchemaVersion = 4

// Tuple is one recorded change of a package version. Hash carries the
// bare commit hash for persisted cross-run data; Commit is populated
// instead for same-run local-commit queries and is never written to
// disk. Extra currently holds only the rename linkage of local
// old-side events.
type Tuple struct {
	Version string            `json:"version"`
	Date    string            `json:"date"`
	Hash    string            `json:"hash,omitempty"`
	Commit  *git.Commit       `json:"-"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// CommitRef returns the identifier of the owning commit regardless of
// how the tuple was recorded.
func (t Tuple) CommitRef() string {
	if t.Commit != nil {
		return t.Commit.Hash
	}
	return t.Hash
}

// Data is the nested change structure:
// category -> package -> status -> ordered tuples.
type Data map[string]map[string]map[git.Status][]Tuple

// Append records a tuple under the atom's category/package and status.
// It only ever appends; existing entries are never dropped.
func (d Data) Append(a atom.Atom, status git.Status, tup Tuple) {
	pkgs, ok := d[a.Category]
	if !ok {
		pkgs = make(map[string]map[git.Status][]Tuple)
		d[a.Category] = pkgs
	}
	statuses, ok := pkgs[a.Package]
	if !ok {
		statuses = make(map[git.Status][]Tuple)
		pkgs[a.Package] = statuses
	}
	statuses[status] = append(statuses[status], tup)
}

// merger applies the per-batch (atom, status) deduplication on top of
// Data.Append: only the first occurrence within one Update call is kept.
type merger struct {
	data Data
	seen map[string]struct{}
}

func newMerger(data Data) *merger {
	if data == nil {
		data = Data{}
	}
	return &merger{data: data, seen: make(map[string]struct{})}
}

func (m *merger) add(pc *git.PkgChange, local bool) {
	key := pc.Atom.String() + "\x00" + string(pc.Status)
	if _, dup := m.seen[key]; dup {
		return
	}
	m.seen[key] = struct{}{}

	tup := Tuple{Version: pc.Atom.Version, Date: pc.Commit.Date}
	if local {
		tup.Commit = pc.Commit
		if pc.OldAtom != nil {
			tup.Extra = map[string]string{"oldAtom": pc.OldAtom.String()}
		}
	} else {
		tup.Hash = pc.Commit.Hash
	}
	m.data.Append(pc.Atom, pc.Status, tup)
}

// Update runs the log parser over commitRange and merges the resulting
// package change events into data, returning the merged structure. It
// is append-only with respect to data and deduplicates (atom, status)
// pairs within this call. Callers must supply non-overlapping,
// ancestor-respecting ranges for incremental merges to be equivalent to
// a single full-range merge; that precondition is not verified here.
func Update(ctx context.Context, repoPath, commitRange string, data Data, local bool) (Data, error) {
	m := newMerger(data)
	p := &git.LogParser{RepoPath: repoPath}
	err := p.Changes(ctx, commitRange, local, func(pc *git.PkgChange) error {
		m.add(pc, local)
		return nil
	})
	return m.data, err
}

// Cache is the persisted envelope: schema version, the exact commit the
// data was merged up to, and the change data itself.
type Cache struct {
	Version int    `json:"version"`
	Commit  string `json:"commit"`
	Data    Data   `json:"data"`
}

// Load reads a persisted cache file. An absent file yields nil. A file
// that cannot be decoded or whose schema version differs from the
// current one is treated as absent and removed, logged at debug level;
// only this closed set of conditions triggers the silent rebuild path.
func Load(path string, logger *slog.Logger) *Cache {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Debug("discarding unreadable cache", "path", path, "err", err)
			os.Remove(path)
		}
		return nil
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		logger.Debug("discarding corrupt cache", "path", path, "err", err)
		os.Remove(path)
		return nil
	}
	defer zr.Close()

	var c Cache
	if err := json.NewDecoder(zr).Decode(&c); err != nil {
		logger.Debug("discarding corrupt cache", "path", path, "err", err)
		os.Remove(path)
		return nil
	}
	if c.Version != SchemaVersion {
		logger.Debug("discarding cache with outdated schema",
			"path", path, "version", c.Version, "want", SchemaVersion)
		os.Remove(path)
		return nil
	}
	return &c
}

// Save writes the cache atomically: the zstd-compressed JSON envelope
// goes to a temporary file in the target directory which is then
// renamed into place, so an interrupted write never leaves a partial
// file visible to later loads.
func Save(path string, c *Cache) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-cache-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	zw, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("creating cache encoder: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(c); err != nil {
		zw.Close()
		tmp.Close()
		return fmt.Errorf("encoding cache: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming cache into place: %w", err)
	}
	return nil
}
