package relock

import (
	"regexp"

	"github.com/matzehuels/relock/pkg/errors"
)

// Matcher decides whether a dependency name is a project module: a
// local/path-based package expected to change without version bumps. Project
// modules are always re-examined by the differ regardless of range
// stability.
type Matcher struct {
	patterns []*regexp.Regexp
}

// NewMatcher compiles the configured project-module patterns. Patterns are
// standard Go regular expressions matched against dependency names.
func NewMatcher(patterns []string) (*Matcher, error) {
	if err := errors.ValidatePatterns(patterns); err != nil {
		return nil, err
	}
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return &Matcher{patterns: compiled}, nil
}

// IsProjectModule reports whether name matches any configured pattern.
func (m *Matcher) IsProjectModule(name string) bool {
	if m == nil {
		return false
	}
	for _, re := range m.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
