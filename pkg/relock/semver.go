package relock

import "strings"

// RangeBeyondPatch reports whether a requirement range moved at more than
// patch granularity: after stripping any leading ~ or ^ qualifier, the major
// or minor component differs. A patch-only bump (same major.minor) is not
// considered a deliberate update and keeps the previous resolution; anything
// larger must propagate.
func RangeBeyondPatch(prev, curr string) bool {
	if prev == curr {
		return false
	}
	pMajor, pMinor := majorMinor(stripQualifier(prev))
	cMajor, cMinor := majorMinor(stripQualifier(curr))
	return pMajor != cMajor || pMinor != cMinor
}

// stripQualifier removes a single leading ^ or ~ range qualifier.
func stripQualifier(r string) string {
	if len(r) > 0 && (r[0] == '^' || r[0] == '~') {
		return r[1:]
	}
	return r
}

// majorMinor returns the first two dot-separated components of a version
// string. Missing components come back empty, so "1" compares unequal to
// "1.2" at minor granularity.
func majorMinor(v string) (string, string) {
	parts := strings.SplitN(v, ".", 3)
	major := parts[0]
	minor := ""
	if len(parts) > 1 {
		minor = parts[1]
	}
	return major, minor
}
