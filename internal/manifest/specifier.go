package manifest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Requirement is a single dependency declaration from the manifest,
// e.g. "requests>=2.31" or "uvicorn[standard]==0.30.*".
type Requirement struct {
	Name       string // normalized (PEP 503)
	Extras     []string
	Specifiers []Specifier
	Raw        string
}

// Specifier is one version clause of a requirement.
type Specifier struct {
	Op      string // ==, !=, >=, <=, >, <, ~=
	Version Version
	Prefix  bool // trailing ".*" on == or !=
}

// Version is a parsed release version. Only the numeric release
// segments participate in ordering; local/pre-release suffixes are
// carried along for display but compared as opaque tie-breakers.
type Version struct {
	Release []int
	Suffix  string
	Raw     string
}

var (
	normalizeRe = regexp.MustCompile(`[-_.]+`)
	nameRe      = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)`)
	extrasRe    = regexp.MustCompile(`^\[([^\]]*)\]`)
)

// NormalizeName normalizes a distribution name per PEP 503.
func NormalizeName(name string) string {
	return strings.ToLower(normalizeRe.ReplaceAllString(strings.TrimSpace(name), "-"))
}

// ParseRequirement parses a PEP 508 requirement string. Environment
// markers (after ';') are accepted and ignored, URL requirements are
// rejected.
func ParseRequirement(s string) (Requirement, error) {
	raw := s
	if i := strings.Index(s, ";"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Requirement{}, fmt.Errorf("empty requirement")
	}
	if strings.Contains(s, "@") {
		return Requirement{}, fmt.Errorf("URL requirement not supported: %s", raw)
	}

	m := nameRe.FindString(s)
	if m == "" {
		return Requirement{}, fmt.Errorf("invalid requirement %q", raw)
	}
	req := Requirement{Name: NormalizeName(m), Raw: raw}
	s = strings.TrimSpace(s[len(m):])

	if em := extrasRe.FindStringSubmatch(s); em != nil {
		for _, extra := range strings.Split(em[1], ",") {
			if extra = strings.TrimSpace(extra); extra != "" {
				req.Extras = append(req.Extras, NormalizeName(extra))
			}
		}
		s = strings.TrimSpace(s[len(em[0]):])
	}

	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	if s = strings.TrimSpace(s); s == "" {
		return req, nil
	}

	for _, clause := range strings.Split(s, ",") {
		spec, err := parseSpecifier(clause)
		if err != nil {
			return Requirement{}, fmt.Errorf("requirement %q: %w", raw, err)
		}
		req.Specifiers = append(req.Specifiers, spec)
	}
	return req, nil
}

var specOps = []string{"===", "==", "!=", "~=", ">=", "<=", ">", "<"}

func parseSpecifier(s string) (Specifier, error) {
	s = strings.TrimSpace(s)
	for _, op := range specOps {
		if !strings.HasPrefix(s, op) {
			continue
		}
		verStr := strings.TrimSpace(s[len(op):])
		if op == "===" {
			op = "=="
		}
		spec := Specifier{Op: op}
		if strings.HasSuffix(verStr, ".*") {
			if op != "==" && op != "!=" {
				return Specifier{}, fmt.Errorf("prefix match not allowed with %s", op)
			}
			spec.Prefix = true
			verStr = strings.TrimSuffix(verStr, ".*")
		}
		ver, err := ParseVersion(verStr)
		if err != nil {
			return Specifier{}, err
		}
		spec.Version = ver
		return spec, nil
	}
	return Specifier{}, fmt.Errorf("invalid specifier %q", s)
}

// ParseVersion parses a release version like "2.31.0" or "1.0.post1".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version")
	}
	v := Version{Raw: s}
	rest := strings.TrimPrefix(s, "v")
	for len(rest) > 0 {
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 0 {
			break
		}
		n, err := strconv.Atoi(rest[:i])
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		v.Release = append(v.Release, n)
		rest = rest[i:]
		if !strings.HasPrefix(rest, ".") {
			break
		}
		rest = rest[1:]
	}
	if len(v.Release) == 0 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	v.Suffix = rest
	return v, nil
}

// Compare orders two versions by their release segments, padding the
// shorter with zeros. Equal releases are ordered by suffix class:
// pre-releases sort below the final release, post-releases above.
func (v Version) Compare(o Version) int {
	n := len(v.Release)
	if len(o.Release) > n {
		n = len(o.Release)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v.Release) {
			a = v.Release[i]
		}
		if i < len(o.Release) {
			b = o.Release[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return compareSuffix(v.Suffix, o.Suffix)
}

func (v Version) String() string { return v.Raw }

func compareSuffix(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := suffixRank(a), suffixRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// suffixRank classes a version suffix: pre-release (-1), final (0),
// post-release (1). Unknown suffixes are treated as pre-releases,
// matching how PEP 440 orders a1/b1/rc1/dev1 against the bare release.
func suffixRank(s string) int {
	s = strings.ToLower(strings.TrimLeft(s, ".-_"))
	switch {
	case s == "":
		return 0
	case strings.HasPrefix(s, "rc"):
		return -1
	case strings.HasPrefix(s, "post"), strings.HasPrefix(s, "rev"), strings.HasPrefix(s, "r"):
		return 1
	default:
		return -1
	}
}

// Matches reports whether a version satisfies the specifier clause.
func (s Specifier) Matches(v Version) bool {
	if s.Prefix {
		ok := matchesPrefix(s.Version, v)
		if s.Op == "!=" {
			return !ok
		}
		return ok
	}
	cmp := v.Compare(s.Version)
	switch s.Op {
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case "~=":
		// ~= X.Y.Z is >= X.Y.Z with the leading segments pinned.
		if cmp < 0 {
			return false
		}
		return matchesPrefix(truncated(s.Version), v)
	}
	return false
}

// Satisfies reports whether the version meets every clause of the
// requirement. A requirement with no clauses accepts any version.
func (r Requirement) Satisfies(v Version) bool {
	for _, spec := range r.Specifiers {
		if !spec.Matches(v) {
			return false
		}
	}
	return true
}

// Constraint renders the specifier list, e.g. ">=2.31, <3".
func (r Requirement) Constraint() string {
	if len(r.Specifiers) == 0 {
		return "*"
	}
	parts := make([]string, len(r.Specifiers))
	for i, s := range r.Specifiers {
		star := ""
		if s.Prefix {
			star = ".*"
		}
		parts[i] = s.Op + s.Version.Raw + star
	}
	return strings.Join(parts, ", ")
}

func matchesPrefix(prefix, v Version) bool {
	for i, seg := range prefix.Release {
		got := 0
		if i < len(v.Release) {
			got = v.Release[i]
		}
		if got != seg {
			return false
		}
	}
	return true
}

func truncated(v Version) Version {
	if len(v.Release) <= 1 {
		return v
	}
	return Version{Release: v.Release[:len(v.Release)-1], Raw: v.Raw}
}
