package git

import "testing"

func TestClassify_StatusLines(t *testing.T) {
	commit := &Commit{Hash: "abc1234", Date: "2024-03-01"}

	tests := []struct {
		line   string
		atom   string
		status Status
	}{
		{"A\tapp-misc/foo/foo-1.0.ebuild", "app-misc/foo-1.0", StatusAdded},
		{"M\tapp-misc/foo/foo-1.0.ebuild", "app-misc/foo-1.0", StatusModified},
		{"D\tdev-libs/bar/bar-2.3-r1.ebuild", "dev-libs/bar-2.3-r1", StatusDeleted},
	}
	for _, tt := range tests {
		events := Classify(tt.line, commit, false)
		if len(events) != 1 {
			t.Errorf("Classify(%q): %d events, want 1", tt.line, len(events))
			continue
		}
		e := events[0]
		if e.Atom.String() != tt.atom {
			t.Errorf("Classify(%q): atom = %q, want %q", tt.line, e.Atom, tt.atom)
		}
		if e.Status != tt.status {
			t.Errorf("Classify(%q): status = %v, want %v", tt.line, e.Status, tt.status)
		}
		if e.Commit != commit {
			t.Errorf("Classify(%q): commit not linked", tt.line)
		}
	}
}

func TestClassify_Rename(t *testing.T) {
	commit := &Commit{Hash: "abc1234"}
	line := "R100\tapp-misc/foo/foo-1.0.ebuild\tapp-misc/bar/bar-1.0.ebuild"

	events := Classify(line, commit, false)
	if len(events) != 1 {
		t.Fatalf("non-local rename: %d events, want 1", len(events))
	}
	if events[0].Atom.String() != "app-misc/bar-1.0" {
		t.Errorf("non-local rename atom = %q, want new-side atom", events[0].Atom)
	}
	if events[0].OldAtom != nil {
		t.Error("non-local rename carries OldAtom linkage")
	}

	events = Classify(line, commit, true)
	if len(events) != 2 {
		t.Fatalf("local rename: %d events, want 2", len(events))
	}
	if events[1].Atom.String() != "app-misc/foo-1.0" {
		t.Errorf("old-side atom = %q, want app-misc/foo-1.0", events[1].Atom)
	}
	if events[1].OldAtom == nil || events[1].OldAtom.String() != "app-misc/bar-1.0" {
		t.Errorf("old-side OldAtom = %v, want link to app-misc/bar-1.0", events[1].OldAtom)
	}
	if events[1].Status != StatusRenamed {
		t.Errorf("old-side status = %v, want renamed", events[1].Status)
	}
}

func TestClassify_Skips(t *testing.T) {
	commit := &Commit{Hash: "abc1234"}
	for _, line := range []string{
		"A\tprofiles/package.mask",            // not an ebuild path
		"A\tapp-misc/foo/foo.ebuild",          // no version: malformed atom
		"A\tapp-misc/foo/metadata.xml",        // not an ebuild
		"C50\tapp-misc/a/a-1.ebuild\tb/b/b-1.ebuild", // unsupported status
		"A\tfoo-1.0.ebuild",                   // too few path segments
		"",
	} {
		if events := Classify(line, commit, true); len(events) != 0 {
			t.Errorf("Classify(%q): expected no events, got %d", line, len(events))
		}
	}
}
