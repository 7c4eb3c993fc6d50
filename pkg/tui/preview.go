package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evanschultz/instlist/pkg/curation"
	"github.com/evanschultz/instlist/pkg/render"
)

// Preview shows the rule list with match counts above the generated CSV
type Preview struct {
	viewport viewport.Model
	renderer *render.Renderer
	last     curation.Snapshot
	selected int // rule under the rule cursor
	focused  bool
	width    int
	height   int
	err      error

	focusedStyle   lipgloss.Style
	unfocusedStyle lipgloss.Style
	titleStyle     lipgloss.Style
}

// NewPreview creates an empty preview
func NewPreview() *Preview {
	return &Preview{
		viewport: viewport.New(0, 0),
		focusedStyle: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")),
		unfocusedStyle: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")),
	}
}

func (p *Preview) Focus() tea.Cmd {
	p.focused = true
	return nil
}

func (p *Preview) Blur() tea.Cmd {
	p.focused = false
	return nil
}

func (p *Preview) Focused() bool {
	return p.focused
}

// SetRenderer installs the prepared renderer and redraws
func (p *Preview) SetRenderer(r *render.Renderer) {
	p.renderer = r
	p.Render(p.last)
}

// Render rebuilds the content from a snapshot
func (p *Preview) Render(s curation.Snapshot) {
	p.last = s
	p.err = nil
	p.selected = min(max(0, p.selected), max(0, len(s.Rules)-1))

	var content strings.Builder
	if p.renderer != nil {
		rules, err := p.renderer.RenderRules(s.Rules, s.Counts)
		if err != nil {
			p.err = err
		}
		content.WriteString(rules)
	}
	content.WriteString(s.CSV())
	p.viewport.SetContent(content.String())
}

// Err returns the last rendering error
func (p *Preview) Err() error {
	return p.err
}

// SelectNext moves the rule cursor down
func (p *Preview) SelectNext() {
	if p.selected < len(p.last.Rules)-1 {
		p.selected++
	}
}

// SelectPrev moves the rule cursor up
func (p *Preview) SelectPrev() {
	if p.selected > 0 {
		p.selected--
	}
}

// SelectLast puts the rule cursor on the newest rule
func (p *Preview) SelectLast() {
	p.selected = max(0, len(p.last.Rules)-1)
}

// Selected returns the index of the rule under the rule cursor
func (p *Preview) Selected() (int, bool) {
	if len(p.last.Rules) == 0 {
		return 0, false
	}
	return p.selected, true
}

func (p *Preview) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

func (p *Preview) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.viewport.Width = max(1, width-2)
	p.viewport.Height = max(1, height-3)
}

func (p *Preview) View() string {
	style := p.unfocusedStyle
	if p.focused {
		style = p.focusedStyle
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		p.titleStyle.Render(p.title()),
		style.Width(max(1, p.width-2)).Render(p.viewport.View()),
	)
}

func (p *Preview) title() string {
	i, ok := p.Selected()
	if !ok {
		return "Preview"
	}
	rule := p.last.Rules[i]
	return fmt.Sprintf("Preview · rule %d/%d %s", i+1, len(p.last.Rules), curation.FormatRules([]curation.Rule{rule}))
}

// Content returns the unstyled text currently shown
func (p *Preview) Content() string {
	return p.last.CSV()
}
