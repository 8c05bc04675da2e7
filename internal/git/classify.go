package git

import (
	"regexp"

	"github.com/ebuildkit/histscan/internal/atom"
)

// File-change line shapes from --name-status output. The path regex is
// deliberately loose; real validation happens in the atom parser.
const ebuildPath = `([^/\t]+)/[^/\t]+/([^/\t]+)\.ebuild`

var changeLineRE = regexp.MustCompile(
	`^([ADM])\t` + ebuildPath + `$|^R[0-9]+\t` + ebuildPath + `\t` + ebuildPath + `$`)

// Classify matches one file-change line against the ebuild path shapes
// and returns the package change events it yields: none for non-ebuild
// paths or malformed atoms (best-effort extraction, not a parse
// failure), one for A/D/M lines, and for rename lines the new-side
// event always plus, when local is set, an old-side event whose OldAtom
// links to the new atom so the rename is discoverable from either side.
func Classify(line string, commit *Commit, local bool) []*PkgChange {
	m := changeLineRE.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	if m[1] != "" {
		// A/D/M: <status>\t<category>/<pkg>/<pkg-version>.ebuild
		a, err := atom.Parse(m[2] + "/" + m[3])
		if err != nil {
			return nil
		}
		return []*PkgChange{{Atom: a, Status: Status(m[1]), Commit: commit}}
	}

	// rename: R<similarity>\t<old path>\t<new path>
	newAtom, err := atom.Parse(m[6] + "/" + m[7])
	if err != nil {
		return nil
	}
	events := []*PkgChange{{Atom: newAtom, Status: StatusRenamed, Commit: commit}}
	if local {
		if oldAtom, err := atom.Parse(m[4] + "/" + m[5]); err == nil {
			events = append(events, &PkgChange{
				Atom:    oldAtom,
				Status:  StatusRenamed,
				Commit:  commit,
				OldAtom: &newAtom,
			})
		}
	}
	return events
}
