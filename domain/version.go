package domain

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// versionCorePattern extracts the leading numeric core of a specifier once
// range operators are stripped: major, then optional minor and patch.
var versionCorePattern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// Normalize coerces an npm version specifier to a concrete semantic version.
// Range operators are stripped and missing minor or patch segments default to
// zero, so "^4.17" normalizes to 4.17.0 and "~2" to 2.0.0. Specifiers that do
// not reduce to a numeric core (git URLs, local paths, dist tags such as
// "latest") are unparseable and yield ok == false.
func Normalize(specifier string) (*semver.Version, bool) {
	s := strings.TrimSpace(specifier)
	if s == "" || strings.ContainsAny(s, ":/\\") {
		return nil, false
	}

	// Strip range operators and a leading "v". For compound ranges the
	// first comparator decides: ">=1.2.3 <2.0.0" normalizes to 1.2.3.
	s = strings.TrimLeft(s, "^~<>=!v \t")

	m := versionCorePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}

	v, err := semver.NewVersion(m[1] + "." + orZero(m[2]) + "." + orZero(m[3]))
	if err != nil {
		return nil, false
	}
	return v, true
}

func orZero(segment string) string {
	if segment == "" {
		return "0"
	}
	return segment
}

// SelectHigher applies the merge policy to two specifiers declared for the
// same package. It returns the winning specifier and whether the first
// argument won. The first argument is the incumbent: it wins ties, and it
// wins whenever neither side parses. A parseable side always beats an
// unparseable one.
func SelectHigher(current, candidate string) (string, bool) {
	cur, okCur := Normalize(current)
	cand, okCand := Normalize(candidate)

	switch {
	case !okCur && !okCand:
		return current, true
	case !okCur:
		return candidate, false
	case !okCand:
		return current, true
	case cand.GreaterThan(cur):
		return candidate, false
	default:
		return current, true
	}
}

// IsLower reports whether declared pins an older version than selected.
// Unparseable specifiers on either side never order as lower: only two
// concrete versions can be compared.
func IsLower(declared, selected string) bool {
	d, okDeclared := Normalize(declared)
	s, okSelected := Normalize(selected)
	return okDeclared && okSelected && d.LessThan(s)
}
