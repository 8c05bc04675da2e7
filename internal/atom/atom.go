// Package atom implements exact-version package atoms of the form
// category/name-version, the identifier scheme used throughout an
// ebuild repository.
package atom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Atom identifies a package at an exact version.
type Atom struct {
	Category string
	Package  string
	Version  string
}

var (
	categoryRE = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9+_.-]*$`)
	packageRE  = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9+_-]*$`)
	versionRE  = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*[a-z]?(_(alpha|beta|pre|rc|p)[0-9]*)*(-r[0-9]+)?$`)
)

// Parse parses "category/name-version" into an Atom. The version part is
// mandatory; the name/version boundary is the rightmost hyphen that is
// followed by a syntactically valid version.
func Parse(s string) (Atom, error) {
	cat, rest, ok := strings.Cut(s, "/")
	if !ok || strings.Contains(rest, "/") {
		return Atom{}, fmt.Errorf("invalid atom %q: expected category/name-version", s)
	}
	if !categoryRE.MatchString(cat) {
		return Atom{}, fmt.Errorf("invalid atom %q: bad category", s)
	}
	pkg, ver, err := splitVersion(rest)
	if err != nil {
		return Atom{}, fmt.Errorf("invalid atom %q: %w", s, err)
	}
	if !packageRE.MatchString(pkg) {
		return Atom{}, fmt.Errorf("invalid atom %q: bad package name", s)
	}
	return Atom{Category: cat, Package: pkg, Version: ver}, nil
}

// splitVersion splits "name-version" at the rightmost hyphen whose
// remainder parses as a version.
func splitVersion(s string) (pkg, ver string, err error) {
	for i := len(s) - 1; i > 0; i-- {
		if s[i] != '-' {
			continue
		}
		if versionRE.MatchString(s[i+1:]) {
			return s[:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("missing or malformed version in %q", s)
}

// String renders the atom as category/name-version.
func (a Atom) String() string {
	return a.Category + "/" + a.Package + "-" + a.Version
}

// CP renders the unversioned category/name pair.
func (a Atom) CP() string {
	return a.Category + "/" + a.Package
}

// IsZero reports whether the atom is the zero value.
func (a Atom) IsZero() bool {
	return a.Category == "" && a.Package == "" && a.Version == ""
}

// suffix ordering: _alpha < _beta < _pre < _rc < plain < _p
var suffixRank = map[string]int{
	"alpha": -4,
	"beta":  -3,
	"pre":   -2,
	"rc":    -1,
	"p":     1,
}

type parsedVersion struct {
	nums     []int
	letter   byte
	suffixes [][2]int // (rank, number)
	revision int
}

func parseVersion(v string) parsedVersion {
	var p parsedVersion
	if i := strings.Index(v, "-r"); i >= 0 {
		p.revision, _ = strconv.Atoi(v[i+2:])
		v = v[:i]
	}
	parts := strings.Split(v, "_")
	base := parts[0]
	for _, sfx := range parts[1:] {
		name := strings.TrimRight(sfx, "0123456789")
		n, _ := strconv.Atoi(sfx[len(name):])
		p.suffixes = append(p.suffixes, [2]int{suffixRank[name], n})
	}
	if base != "" && base[len(base)-1] >= 'a' && base[len(base)-1] <= 'z' {
		p.letter = base[len(base)-1]
		base = base[:len(base)-1]
	}
	for _, c := range strings.Split(base, ".") {
		n, _ := strconv.Atoi(c)
		p.nums = append(p.nums, n)
	}
	return p
}

// CompareVersions orders two version strings, returning -1, 0, or 1.
// Ordering follows the ebuild version scheme: dotted numeric components,
// optional trailing letter, _alpha/_beta/_pre/_rc/_p suffixes, and a -rN
// revision as the final tiebreaker.
func CompareVersions(a, b string) int {
	va, vb := parseVersion(a), parseVersion(b)
	for i := 0; i < len(va.nums) || i < len(vb.nums); i++ {
		na, nb := 0, 0
		if i < len(va.nums) {
			na = va.nums[i]
		}
		if i < len(vb.nums) {
			nb = vb.nums[i]
		}
		if na != nb {
			return cmp(na, nb)
		}
	}
	if va.letter != vb.letter {
		return cmp(int(va.letter), int(vb.letter))
	}
	for i := 0; i < len(va.suffixes) || i < len(vb.suffixes); i++ {
		// a missing suffix ranks as the plain version
		sa, sb := [2]int{0, 0}, [2]int{0, 0}
		if i < len(va.suffixes) {
			sa = va.suffixes[i]
		}
		if i < len(vb.suffixes) {
			sb = vb.suffixes[i]
		}
		if sa[0] != sb[0] {
			return cmp(sa[0], sb[0])
		}
		if sa[1] != sb[1] {
			return cmp(sa[1], sb[1])
		}
	}
	return cmp(va.revision, vb.revision)
}

// Compare orders atoms by category, package, then version.
func Compare(a, b Atom) int {
	if a.Category != b.Category {
		return strings.Compare(a.Category, b.Category)
	}
	if a.Package != b.Package {
		return strings.Compare(a.Package, b.Package)
	}
	return CompareVersions(a.Version, b.Version)
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
