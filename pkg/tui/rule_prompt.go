package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type promptKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
	Switch key.Binding
}

var promptKeys = promptKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "add rule"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Switch: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "find/replace"),
	),
}

// promptHeight is the number of lines View takes while the prompt is open
const promptHeight = 3

// RulePrompt collects the find and replace halves of a new substitution
type RulePrompt struct {
	find    textinput.Model
	replace textinput.Model
	active  bool

	titleStyle lipgloss.Style
}

func NewRulePrompt() *RulePrompt {
	find := textinput.New()
	find.Prompt = "Find:    "
	find.Placeholder = "regular expression"

	replace := textinput.New()
	replace.Prompt = "Replace: "
	replace.Placeholder = "replacement, $1 for groups"

	return &RulePrompt{
		find:    find,
		replace: replace,
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")),
	}
}

// Open shows the prompt with find prefilled and focuses the find field
func (p *RulePrompt) Open(find string) tea.Cmd {
	p.active = true
	p.find.SetValue(find)
	p.find.CursorEnd()
	p.replace.Reset()
	p.replace.Blur()
	return p.find.Focus()
}

// Close hides the prompt
func (p *RulePrompt) Close() {
	p.active = false
	p.find.Blur()
	p.replace.Blur()
}

func (p *RulePrompt) Active() bool {
	return p.active
}

// Values returns the find and replace text
func (p *RulePrompt) Values() (string, string) {
	return p.find.Value(), p.replace.Value()
}

// Update edits the focused field. Switch keys move between the fields.
func (p *RulePrompt) Update(msg tea.Msg) tea.Cmd {
	if !p.active {
		return nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, promptKeys.Switch) {
		if p.find.Focused() {
			p.find.Blur()
			return p.replace.Focus()
		}
		p.replace.Blur()
		return p.find.Focus()
	}

	var cmd tea.Cmd
	if p.find.Focused() {
		p.find, cmd = p.find.Update(msg)
	} else {
		p.replace, cmd = p.replace.Update(msg)
	}
	return cmd
}

func (p *RulePrompt) View(width int) string {
	if !p.active {
		return ""
	}
	p.find.Width = max(10, width-len(p.find.Prompt)-2)
	p.replace.Width = p.find.Width
	return lipgloss.JoinVertical(
		lipgloss.Left,
		p.titleStyle.Render("New substitution"),
		p.find.View(),
		p.replace.View(),
	)
}

// Height returns the lines taken by View
func (p *RulePrompt) Height() int {
	if !p.active {
		return 0
	}
	return promptHeight
}
