package history

import (
	"sort"

	"github.com/ebuildkit/histscan/internal/atom"
	"github.com/ebuildkit/histscan/internal/git"
)

// StatusFilter selects which recorded statuses a virtual repository
// exposes.
type StatusFilter map[git.Status]bool

var (
	// FilterChanged exposes every recorded change.
	FilterChanged = StatusFilter{git.StatusAdded: true, git.StatusRenamed: true, git.StatusModified: true, git.StatusDeleted: true}
	// FilterModified exposes packages that currently exist or were modified.
	FilterModified = StatusFilter{git.StatusAdded: true, git.StatusRenamed: true, git.StatusModified: true}
	// FilterAdded exposes package additions (including rename targets).
	FilterAdded = StatusFilter{git.StatusAdded: true, git.StatusRenamed: true}
	// FilterRemoved exposes package removals.
	FilterRemoved = StatusFilter{git.StatusDeleted: true}
)

// SortKey selects the ordering of a package's version list.
type SortKey int

const (
	// ByVersion orders candidates version-ascending (default).
	ByVersion SortKey = iota
	// ByDate orders candidates by commit date, oldest first.
	ByDate
)

// Repo is the read-only query surface of a virtual history repository.
// Iteration is restartable: every call re-derives its result from the
// underlying data.
type Repo interface {
	ID() string
	Categories() []string
	Packages(category string) []string
	Versions(category, pkg string) []PseudoPackage
	VersionsSorted(category, pkg string, key SortKey) []PseudoPackage
	Match(a atom.Atom) []PseudoPackage
}

// HistoryRepo is a status-filtered overlay over one repository's cached
// change data.
type HistoryRepo struct {
	id     string
	data   Data
	filter StatusFilter
}

// NewRepo builds a virtual repository over data exposing only statuses
// accepted by filter.
func NewRepo(id string, data Data, filter StatusFilter) *HistoryRepo {
	return &HistoryRepo{id: id, data: data, filter: filter}
}

// ID returns the repository identifier, e.g. "<location>-history".
func (r *HistoryRepo) ID() string { return r.id }

// Categories lists categories with at least one visible change, sorted.
func (r *HistoryRepo) Categories() []string {
	var cats []string
	for cat, pkgs := range r.data {
		for pkg := range pkgs {
			if len(r.visible(cat, pkg)) > 0 {
				cats = append(cats, cat)
				break
			}
		}
	}
	sort.Strings(cats)
	return cats
}

// Packages lists packages of a category with visible changes, sorted.
func (r *HistoryRepo) Packages(category string) []string {
	var pkgs []string
	for pkg := range r.data[category] {
		if len(r.visible(category, pkg)) > 0 {
			pkgs = append(pkgs, pkg)
		}
	}
	sort.Strings(pkgs)
	return pkgs
}

// Versions returns the visible candidates of a package ordered by the
// default sort key.
func (r *HistoryRepo) Versions(category, pkg string) []PseudoPackage {
	return r.VersionsSorted(category, pkg, ByVersion)
}

// VersionsSorted returns the visible candidates of a package ordered by
// the requested sort key.
func (r *HistoryRepo) VersionsSorted(category, pkg string, key SortKey) []PseudoPackage {
	out := r.visible(category, pkg)
	sortPackages(out, key)
	return out
}

// Match returns the visible candidates matching an exact-version atom.
func (r *HistoryRepo) Match(a atom.Atom) []PseudoPackage {
	var out []PseudoPackage
	for _, p := range r.visible(a.Category, a.Package) {
		if p.Version() == a.Version {
			out = append(out, p)
		}
	}
	sortPackages(out, ByVersion)
	return out
}

func (r *HistoryRepo) visible(category, pkg string) []PseudoPackage {
	var out []PseudoPackage
	for status, tuples := range r.data[category][pkg] {
		if !r.filter[status] {
			continue
		}
		for _, tup := range tuples {
			out = append(out, newPseudoPackage(category, pkg, status, tup))
		}
	}
	return out
}

func sortPackages(pkgs []PseudoPackage, key SortKey) {
	sort.SliceStable(pkgs, func(i, j int) bool {
		if key == ByDate && pkgs[i].Date() != pkgs[j].Date() {
			return pkgs[i].Date() < pkgs[j].Date()
		}
		if c := atom.CompareVersions(pkgs[i].Version(), pkgs[j].Version()); c != 0 {
			return c < 0
		}
		// visible() walks a map; break remaining ties so equal
		// version (and date) candidates keep a stable order.
		if pkgs[i].Status() != pkgs[j].Status() {
			return pkgs[i].Status() < pkgs[j].Status()
		}
		return pkgs[i].CommitHash() < pkgs[j].CommitHash()
	})
}

// multiplexed composes several virtual repositories into one view that
// answers queries across all of them.
type multiplexed struct {
	id    string
	repos []Repo
}

// Multiplex combines repositories into a single queryable view. A
// single repository is returned unwrapped; nil is returned for an empty
// composition.
func Multiplex(repos ...Repo) Repo {
	switch len(repos) {
	case 0:
		return nil
	case 1:
		return repos[0]
	}
	return &multiplexed{id: "multiplex", repos: repos}
}

func (m *multiplexed) ID() string { return m.id }

func (m *multiplexed) Categories() []string {
	seen := map[string]bool{}
	var cats []string
	for _, r := range m.repos {
		for _, c := range r.Categories() {
			if !seen[c] {
				seen[c] = true
				cats = append(cats, c)
			}
		}
	}
	sort.Strings(cats)
	return cats
}

func (m *multiplexed) Packages(category string) []string {
	seen := map[string]bool{}
	var pkgs []string
	for _, r := range m.repos {
		for _, p := range r.Packages(category) {
			if !seen[p] {
				seen[p] = true
				pkgs = append(pkgs, p)
			}
		}
	}
	sort.Strings(pkgs)
	return pkgs
}

func (m *multiplexed) Versions(category, pkg string) []PseudoPackage {
	return m.VersionsSorted(category, pkg, ByVersion)
}

func (m *multiplexed) VersionsSorted(category, pkg string, key SortKey) []PseudoPackage {
	var out []PseudoPackage
	for _, r := range m.repos {
		out = append(out, r.VersionsSorted(category, pkg, key)...)
	}
	sortPackages(out, key)
	return out
}

func (m *multiplexed) Match(a atom.Atom) []PseudoPackage {
	var out []PseudoPackage
	for _, r := range m.repos {
		out = append(out, r.Match(a)...)
	}
	sortPackages(out, ByVersion)
	return out
}
