package atom

import "testing"

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		in       string
		category string
		pkg      string
		version  string
	}{
		{"dev-libs/foo-1.2.3", "dev-libs", "foo", "1.2.3"},
		{"app-misc/hello-world-2.0", "app-misc", "hello-world", "2.0"},
		{"sys-apps/pkg-1.0-r2", "sys-apps", "pkg", "1.0-r2"},
		{"dev-lang/python-3.12.1_rc1", "dev-lang", "python", "3.12.1_rc1"},
		{"net-misc/tool-20240101", "net-misc", "tool", "20240101"},
		{"x11-libs/lib2-1.0b", "x11-libs", "lib2", "1.0b"},
		{"virtual/rust-1.71.0_alpha2_p3-r1", "virtual", "rust", "1.71.0_alpha2_p3-r1"},
	}
	for _, tt := range tests {
		a, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if a.Category != tt.category || a.Package != tt.pkg || a.Version != tt.version {
			t.Errorf("Parse(%q) = %v/%v-%v, want %v/%v-%v",
				tt.in, a.Category, a.Package, a.Version, tt.category, tt.pkg, tt.version)
		}
		if a.String() != tt.in {
			t.Errorf("Parse(%q).String() = %q", tt.in, a.String())
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"noslash-1.0",
		"cat/pkg",          // missing version
		"cat/pkg-",         // empty version
		"cat/pkg-abc",      // version must start with a digit
		"a/b/c-1.0",        // too many segments
		"cat/-1.0",         // empty package
		"cat/pkg-1.0_zeta", // unknown suffix
	} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): expected error", in)
		}
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"1.9", "1.10", -1},
		{"1.0", "1.0.1", -1},
		{"2.0", "1.9.9", 1},
		{"1.0a", "1.0b", -1},
		{"1.0", "1.0a", -1},
		{"1.0_alpha1", "1.0_beta1", -1},
		{"1.0_rc3", "1.0", -1},
		{"1.0", "1.0_p1", -1},
		{"1.0", "1.0-r1", -1},
		{"1.0-r2", "1.0-r10", -1},
		{"1.0_alpha", "1.0_alpha1", -1},
	}
	for _, tt := range tests {
		if got := CompareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := CompareVersions(tt.b, tt.a); got != -tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
		}
	}
}

func TestCompare_AtomOrdering(t *testing.T) {
	a := Atom{Category: "app-misc", Package: "foo", Version: "1.0"}
	b := Atom{Category: "dev-libs", Package: "foo", Version: "1.0"}
	if Compare(a, b) >= 0 {
		t.Errorf("expected %v < %v", a, b)
	}
	c := Atom{Category: "app-misc", Package: "foo", Version: "1.1"}
	if Compare(a, c) >= 0 {
		t.Errorf("expected %v < %v", a, c)
	}
	if Compare(a, a) != 0 {
		t.Errorf("expected %v == %v", a, a)
	}
}
