package history

import (
	"github.com/ebuildkit/histscan/internal/atom"
	"github.com/ebuildkit/histscan/internal/git"
)

// PseudoPackage is a read-only, package-shaped value synthesized from
// historical commit data. It stands in for a real repository package
// anywhere only the category/package/version accessors are needed.
type PseudoPackage struct {
	category string
	pkg      string
	version  string
	status   git.Status
	date     string
	hash     string
	commit   *git.Commit
	extra    map[string]string
}

func newPseudoPackage(category, pkg string, status git.Status, tup Tuple) PseudoPackage {
	return PseudoPackage{
		category: category,
		pkg:      pkg,
		version:  tup.Version,
		status:   status,
		date:     tup.Date,
		hash:     tup.CommitRef(),
		commit:   tup.Commit,
		extra:    tup.Extra,
	}
}

func (p PseudoPackage) Category() string   { return p.category }
func (p PseudoPackage) Package() string    { return p.pkg }
func (p PseudoPackage) Version() string    { return p.version }
func (p PseudoPackage) Status() git.Status { return p.status }
func (p PseudoPackage) Date() string       { return p.date }

// CommitHash returns the identifier of the recording commit.
func (p PseudoPackage) CommitHash() string { return p.hash }

// Commit returns the full commit record when the package came from a
// same-run local-commits query, nil otherwise.
func (p PseudoPackage) Commit() *git.Commit { return p.commit }

// Extra returns optional event metadata, e.g. the "oldAtom" rename
// linkage.
func (p PseudoPackage) Extra(key string) (string, bool) {
	v, ok := p.extra[key]
	return v, ok
}

// Atom returns the exact-version atom for the package.
func (p PseudoPackage) Atom() atom.Atom {
	return atom.Atom{Category: p.category, Package: p.pkg, Version: p.version}
}

func (p PseudoPackage) String() string {
	return p.Atom().String()
}
