package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TextPane is a titled, bordered textarea that can take focus
type TextPane struct {
	textarea textarea.Model
	title    string
	width    int
	height   int
	focused  bool

	// Styles
	focusedStyle   lipgloss.Style
	unfocusedStyle lipgloss.Style
	titleStyle     lipgloss.Style
}

type KeyMap struct {
	Submit key.Binding
}

var DefaultKeyMap = KeyMap{
	Submit: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "apply"),
	),
}

func NewTextPane(title, placeholder string) *TextPane {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.Blur()

	return &TextPane{
		textarea: ta,
		title:    title,
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

func (p *TextPane) Focus() tea.Cmd {
	p.focused = true
	return p.textarea.Focus()
}

func (p *TextPane) Blur() tea.Cmd {
	p.focused = false
	p.textarea.Blur()
	return nil
}

func (p *TextPane) Focused() bool {
	return p.focused
}

func (p *TextPane) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}
	var cmd tea.Cmd
	p.textarea, cmd = p.textarea.Update(msg)
	return cmd
}

func (p *TextPane) View() string {
	style := p.unfocusedStyle
	if p.focused {
		style = p.focusedStyle
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		p.titleStyle.Render(p.title),
		style.Width(max(1, p.width-2)).Render(p.textarea.View()),
	)
}

func (p *TextPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.textarea.SetWidth(max(1, width-2))
	// title line plus top and bottom border
	p.textarea.SetHeight(max(1, height-3))
}

// SetValue replaces the text. It is a no-op when the text is unchanged so
// the cursor stays where the user left it.
func (p *TextPane) SetValue(value string) {
	if p.textarea.Value() == value {
		return
	}
	p.textarea.SetValue(value)
}

func (p *TextPane) Value() string {
	return p.textarea.Value()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
