package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/evanschultz/instlist/pkg/curation"
	"github.com/evanschultz/instlist/pkg/models"
)

// Renderer turns session state into styled terminal text
type Renderer struct {
	term   *glamour.TermRenderer
	source string
}

// Source describes the style the renderer was prepared from
func (r *Renderer) Source() string {
	return r.source
}

// RenderRules renders the substitution list annotated with match counts
func (r *Renderer) RenderRules(rules []curation.Rule, counts []int) (string, error) {
	return r.term.Render(RulesMarkdown(rules, counts))
}

// RenderSummary renders a short overview of the current list
func (r *Renderer) RenderSummary(rows []models.Row, excluded curation.ExclusionSet, rules []curation.Rule) (string, error) {
	return r.term.Render(SummaryMarkdown(rows, excluded, rules))
}

// RulesMarkdown builds the markdown table used by RenderRules
func RulesMarkdown(rules []curation.Rule, counts []int) string {
	var md strings.Builder
	md.WriteString("## Substitutions\n\n")

	if len(rules) == 0 {
		md.WriteString("_No substitutions. Add `s/FIND/REPLACE/` lines._\n")
		return md.String()
	}

	md.WriteString("| # | Find | Replace | Matches |\n")
	md.WriteString("|---|------|---------|---------|\n")
	for i, rule := range rules {
		count := 0
		if i < len(counts) {
			count = counts[i]
		}
		md.WriteString(fmt.Sprintf("| %d | %s | %s | %d |\n",
			i+1, codeCell(rule.Find), codeCell(rule.Replace), count))
	}
	return md.String()
}

// SummaryMarkdown builds the markdown used by RenderSummary
func SummaryMarkdown(rows []models.Row, excluded curation.ExclusionSet, rules []curation.Rule) string {
	var md strings.Builder
	md.WriteString("## Institution list\n\n")
	md.WriteString(fmt.Sprintf("- **%d** included\n", len(rows)))
	md.WriteString(fmt.Sprintf("- **%d** excluded\n", len(excluded)))
	md.WriteString(fmt.Sprintf("- **%d** substitutions\n", len(rules)))
	return md.String()
}

func codeCell(s string) string {
	if s == "" {
		return "_(empty)_"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "`", "'")
	return "`" + s + "`"
}
