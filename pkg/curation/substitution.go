package curation

import (
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Rule is a single find/replace step. Find is an ECMAScript regular
// expression; Replace may reference groups with $1, $& and friends.
type Rule struct {
	Find    string
	Replace string
}

// matchTimeout bounds a single rule evaluation on a single label.
const matchTimeout = time.Second

// ruleLine matches "s/FIND/REPLACE/" where both parts may contain "\/".
var ruleLine = regexp.MustCompile(`^s/((?:[^/\\]|\\.)*)/((?:[^/\\]|\\.)*)/$`)

// CompileRules reads one "s/FIND/REPLACE/" rule per line. Malformed lines
// and empty finds are dropped. Finds are not compiled here; NewPipeline
// skips the ones that are not valid regular expressions.
func CompileRules(text string) []Rule {
	var rules []Rule
	for _, line := range strings.Split(text, "\n") {
		match := ruleLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil || match[1] == "" {
			continue
		}
		rules = append(rules, Rule{
			Find:    unescapeSlashes(match[1]),
			Replace: unescapeSlashes(match[2]),
		})
	}
	return rules
}

// FormatRules writes rules back as "s/FIND/REPLACE/" lines
func FormatRules(rules []Rule) string {
	lines := make([]string, len(rules))
	for i, rule := range rules {
		lines[i] = "s/" + escapeSlashes(rule.Find) + "/" + escapeSlashes(rule.Replace) + "/"
	}
	return strings.Join(lines, "\n")
}

func escapeSlashes(s string) string {
	return strings.ReplaceAll(s, "/", `\/`)
}

func unescapeSlashes(s string) string {
	return strings.ReplaceAll(s, `\/`, `/`)
}

// Pipeline applies an ordered list of rules and counts how often each one
// matched since the last Reset.
type Pipeline struct {
	rules    []Rule
	compiled []*regexp2.Regexp
	counts   []int
}

// NewPipeline compiles the rules. Invalid rules are skipped.
func NewPipeline(rules []Rule) *Pipeline {
	p := &Pipeline{}
	for _, rule := range rules {
		if rule.Find == "" {
			continue
		}
		re, err := regexp2.Compile(rule.Find, regexp2.ECMAScript)
		if err != nil {
			continue
		}
		re.MatchTimeout = matchTimeout

		p.rules = append(p.rules, rule)
		p.compiled = append(p.compiled, re)
	}
	p.counts = make([]int, len(p.rules))
	return p
}

// Apply runs text through every rule in order. Each rule sees the output
// of the previous one.
func (p *Pipeline) Apply(text string) string {
	for i, re := range p.compiled {
		n, err := countMatches(re, text)
		if err != nil {
			// Timed out: leave the text alone for this rule
			continue
		}
		p.counts[i] += n
		if n == 0 {
			continue
		}

		replaced, err := re.Replace(text, p.rules[i].Replace, -1, -1)
		if err != nil {
			continue
		}
		text = replaced
	}
	return text
}

func countMatches(re *regexp2.Regexp, text string) (int, error) {
	n := 0
	m, err := re.FindStringMatch(text)
	for m != nil && err == nil {
		n++
		m, err = re.FindNextMatch(m)
	}
	return n, err
}

// Reset zeros all occurrence counters
func (p *Pipeline) Reset() {
	for i := range p.counts {
		p.counts[i] = 0
	}
}

// Rules returns a copy of the active rules
func (p *Pipeline) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// Counts returns a copy of the occurrence counters, aligned with Rules
func (p *Pipeline) Counts() []int {
	out := make([]int, len(p.counts))
	copy(out, p.counts)
	return out
}

// Len returns the number of active rules
func (p *Pipeline) Len() int {
	return len(p.rules)
}
