package curation

import (
	"regexp"
	"sort"
	"strings"

	"github.com/evanschultz/instlist/pkg/models"
)

// ExclusionSet maps institution ID to the label it had when it was excluded.
// An ID is present iff the institution is deselected.
type ExclusionSet map[string]string

// exclusionLine matches "ID", "ID -" and "ID - LABEL". Lines are trimmed
// before matching, so the serialized form of an empty label ("ID - ")
// arrives here as "ID -".
var exclusionLine = regexp.MustCompile(`^(\w+)(?: -(?: (.*))?)?$`)

// BuildDefault excludes every institution whose label matches the default
// exclusion patterns.
func BuildDefault(institutions []models.Institution) ExclusionSet {
	set := make(ExclusionSet)
	for _, inst := range institutions {
		if IsDefaultExcluded(inst.Label) {
			set[inst.ID] = inst.Label
		}
	}
	return set
}

// ParseExclusions reads the textual exclusion list. Lines that are not
// "ID" or "ID - LABEL" are skipped; a repeated ID keeps the last label.
func ParseExclusions(text string) ExclusionSet {
	set := make(ExclusionSet)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		match := exclusionLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		set[match[1]] = match[2]
	}
	return set
}

// String serializes the set as sorted "ID - LABEL" lines.
func (s ExclusionSet) String() string {
	if len(s) == 0 {
		return ""
	}

	lines := make([]string, 0, len(s))
	for id, label := range s {
		lines = append(lines, id+" - "+label)
	}
	sort.Strings(lines)

	return strings.Join(lines, "\n")
}

// Has reports whether id is excluded
func (s ExclusionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy of the set
func (s ExclusionSet) Clone() ExclusionSet {
	out := make(ExclusionSet, len(s))
	for id, label := range s {
		out[id] = label
	}
	return out
}
