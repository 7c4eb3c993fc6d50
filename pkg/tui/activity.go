package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ActivityEntry is one line in the activity panel
type ActivityEntry struct {
	Timestamp time.Time
	Type      string // LOAD, TOGGLE, EXCLUSIONS, RULES, SAVE, ...
	Content   string
	Level     ActivityLevel
}

// ActivityLevel colours an entry
type ActivityLevel string

const (
	LevelInfo    ActivityLevel = "info"
	LevelSuccess ActivityLevel = "success"
	LevelWarning ActivityLevel = "warning"
	LevelError   ActivityLevel = "error"
)

const (
	maxActivityEntries = 50
	shownActivity      = 8
)

// ActivityPanel keeps a bounded log of session activity
type ActivityPanel struct {
	entries    []ActivityEntry
	maxEntries int
	visible    bool
	now        func() time.Time

	// Styles
	panelStyle   lipgloss.Style
	headerStyle  lipgloss.Style
	infoStyle    lipgloss.Style
	successStyle lipgloss.Style
	warningStyle lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewActivityPanel creates a hidden panel
func NewActivityPanel() *ActivityPanel {
	return &ActivityPanel{
		maxEntries: maxActivityEntries,
		now:        time.Now,

		panelStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),

		headerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true).
			Underline(true),

		infoStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")), // cyan

		successStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")), // green

		warningStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")), // yellow

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")), // red
	}
}

// Add appends an entry, dropping the oldest past the limit
func (p *ActivityPanel) Add(entryType, content string, level ActivityLevel) {
	p.entries = append(p.entries, ActivityEntry{
		Timestamp: p.now(),
		Type:      entryType,
		Content:   content,
		Level:     level,
	})

	if len(p.entries) > p.maxEntries {
		p.entries = p.entries[len(p.entries)-p.maxEntries:]
	}
}

// AddError records a failure
func (p *ActivityPanel) AddError(entryType string, err error) {
	p.Add(entryType, err.Error(), LevelError)
}

// Toggle toggles the visibility of the panel
func (p *ActivityPanel) Toggle() {
	p.visible = !p.visible
}

// IsVisible returns whether the panel is visible
func (p *ActivityPanel) IsVisible() bool {
	return p.visible
}

// Entries returns a copy of the retained entries, oldest first
func (p *ActivityPanel) Entries() []ActivityEntry {
	return append([]ActivityEntry(nil), p.entries...)
}

// Height is the number of terminal rows View uses when visible
func (p *ActivityPanel) Height() int {
	if !p.visible {
		return 0
	}
	// header, blank line, entries, border
	return shownActivity + 4
}

// View renders the most recent entries
func (p *ActivityPanel) View(width int) string {
	if !p.visible {
		return ""
	}

	var content strings.Builder
	content.WriteString(p.headerStyle.Render("Activity") + "\n\n")

	if len(p.entries) == 0 {
		content.WriteString("No activity yet")
	}

	start := max(0, len(p.entries)-shownActivity)
	for i := start; i < len(p.entries); i++ {
		content.WriteString(p.renderEntry(p.entries[i]))
		if i < len(p.entries)-1 {
			content.WriteString("\n")
		}
	}

	return p.panelStyle.
		Width(max(1, width-2)).
		Height(shownActivity + 2).
		Render(content.String())
}

func (p *ActivityPanel) renderEntry(e ActivityEntry) string {
	var style lipgloss.Style
	switch e.Level {
	case LevelSuccess:
		style = p.successStyle
	case LevelWarning:
		style = p.warningStyle
	case LevelError:
		style = p.errorStyle
	default:
		style = p.infoStyle
	}

	// [15:04:05] TYPE: content
	return fmt.Sprintf("[%s] %s: %s",
		e.Timestamp.Format("15:04:05"),
		style.Render(e.Type),
		e.Content)
}
