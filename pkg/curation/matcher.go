package curation

import (
	"regexp"
)

// NamedPattern is a registered heuristic used to spot institutions that
// should start out excluded.
type NamedPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// Matcher classifies institution names against an ordered set of patterns
type Matcher struct {
	patterns []NamedPattern
}

var defaultMatcher = DefaultMatcher()

// DefaultMatcher returns a matcher with the fixed default-exclusion patterns
func DefaultMatcher() *Matcher {
	m := &Matcher{}

	// Sub-units are usually listed as "Parent - Child"
	m.RegisterPattern("separator", ` - `)
	m.RegisterPattern("suffix", `(?i)\b(entry|course|\d+)$`)
	m.RegisterPattern("container", `^(insts|Colleges)$`)
	m.RegisterPattern("keyword", `\b(Institutions|Courses?|Temporary)\b`)

	return m
}

// RegisterPattern appends a pattern. Patterns are evaluated in registration order.
func (m *Matcher) RegisterPattern(name, pattern string) {
	m.patterns = append(m.patterns, NamedPattern{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
	})
}

// Match returns the name of the first pattern matching name.
func (m *Matcher) Match(name string) (string, bool) {
	for _, p := range m.patterns {
		if p.Pattern.MatchString(name) {
			return p.Name, true
		}
	}
	return "", false
}

// Patterns returns the registered patterns in evaluation order
func (m *Matcher) Patterns() []NamedPattern {
	out := make([]NamedPattern, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// IsDefaultExcluded reports whether an institution name looks unimportant
// enough to be excluded the first time a tree is loaded.
func IsDefaultExcluded(name string) bool {
	_, ok := defaultMatcher.Match(name)
	return ok
}
