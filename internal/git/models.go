package git

import (
	"github.com/ebuildkit/histscan/internal/atom"
)

// Status classifies a package-level change within a commit. The values
// mirror git's name-status letters and are used directly as cache keys.
type Status string

const (
	StatusAdded    Status = "A"
	StatusDeleted  Status = "D"
	StatusModified Status = "M"
	StatusRenamed  Status = "R"
)

// String returns a human-readable form of the status.
func (s Status) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusModified:
		return "modified"
	case StatusRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Commit represents one parsed commit from the log output.
type Commit struct {
	Hash      string
	Date      string // committer date, YYYY-MM-DD
	Author    string // "Name <email>"
	Committer string // "Name <email>"
	Message   []string
}

// Equal reports commit identity; commits are value-equal by hash.
func (c *Commit) Equal(other *Commit) bool {
	return other != nil && c.Hash == other.Hash
}

// String returns the commit hash.
func (c *Commit) String() string {
	return c.Hash
}

// PkgChange is a package-level change event derived from one file-change
// line of a commit. For rename-derived old-side events, OldAtom links to
// the atom the package was renamed to.
type PkgChange struct {
	Atom    atom.Atom
	Status  Status
	Commit  *Commit
	OldAtom *atom.Atom
}
