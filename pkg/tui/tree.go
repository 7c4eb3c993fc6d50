package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evanschultz/instlist/pkg/curation"
	"github.com/evanschultz/instlist/pkg/models"
)

// treeNode is a single checkbox row
type treeNode struct {
	inst    models.Institution
	checked bool
}

type treeKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	CheckAll   key.Binding
	UncheckAll key.Binding
}

var treeKeys = treeKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space", "toggle"),
	),
	CheckAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "check all"),
	),
	UncheckAll: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "uncheck all"),
	),
}

// Tree is the institution checkbox tree. It renders session snapshots and
// turns key presses into session events.
type Tree struct {
	nodes    []treeNode
	cursor   int
	offset   int // first visible row
	width    int
	height   int
	focused  bool
	dispatch func(curation.Event) bool

	// Styles
	checkStyle     lipgloss.Style
	excludedStyle  lipgloss.Style
	cursorStyle    lipgloss.Style
	focusedStyle   lipgloss.Style
	unfocusedStyle lipgloss.Style
}

// NewTree creates a tree that sends its edits to dispatch
func NewTree(dispatch func(curation.Event) bool) *Tree {
	return &Tree{
		dispatch:      dispatch,
		checkStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		excludedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		cursorStyle:   lipgloss.NewStyle().Background(lipgloss.Color("62")),
		focusedStyle: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")),
		unfocusedStyle: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
	}
}

// Focus gives focus to the tree
func (t *Tree) Focus() tea.Cmd {
	t.focused = true
	return nil
}

// Blur removes focus from the tree
func (t *Tree) Blur() tea.Cmd {
	t.focused = false
	return nil
}

// Focused returns whether the tree has focus
func (t *Tree) Focused() bool {
	return t.focused
}

// SetSize sets the outer dimensions, border included
func (t *Tree) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.scroll()
}

// Render refreshes the checkboxes from a snapshot
func (t *Tree) Render(s curation.Snapshot) {
	nodes := make([]treeNode, len(s.Institutions))
	for i, inst := range s.Institutions {
		nodes[i] = treeNode{inst: inst, checked: s.Checked(inst.ID)}
	}
	t.nodes = nodes
	if t.cursor >= len(t.nodes) {
		t.cursor = max(0, len(t.nodes)-1)
	}
	t.scroll()
}

// Update handles navigation and checkbox keys
func (t *Tree) Update(msg tea.Msg) tea.Cmd {
	if !t.focused {
		return nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, treeKeys.Up):
		if t.cursor > 0 {
			t.cursor--
		}

	case key.Matches(keyMsg, treeKeys.Down):
		if t.cursor < len(t.nodes)-1 {
			t.cursor++
		}

	case key.Matches(keyMsg, treeKeys.Toggle):
		if t.cursor < len(t.nodes) {
			node := t.nodes[t.cursor]
			t.dispatch(curation.ToggleInstitution{ID: node.inst.ID, Checked: !node.checked})
		}

	case key.Matches(keyMsg, treeKeys.CheckAll):
		t.dispatch(curation.EditExclusions{Text: ""})

	case key.Matches(keyMsg, treeKeys.UncheckAll):
		all := make(curation.ExclusionSet, len(t.nodes))
		for _, node := range t.nodes {
			all[node.inst.ID] = node.inst.Label
		}
		t.dispatch(curation.EditExclusions{Text: all.String()})
	}

	t.scroll()
	return nil
}

// View renders the visible rows
func (t *Tree) View() string {
	var content strings.Builder

	if len(t.nodes) == 0 {
		content.WriteString(t.excludedStyle.Render("No institutions loaded"))
	}

	end := min(len(t.nodes), t.offset+t.rows())
	for i := t.offset; i < end; i++ {
		node := t.nodes[i]
		indent := strings.Repeat("  ", node.inst.Depth)

		box := checkbox(node.checked)
		label := t.excludedStyle.Render(node.inst.Label)
		if node.checked {
			box = t.checkStyle.Render(box)
			label = node.inst.Label
		}

		line := indent + box + " " + label
		if i == t.cursor && t.focused {
			line = indent + t.cursorStyle.Render(checkbox(node.checked)+" "+node.inst.Label)
		}

		content.WriteString(line)
		if i < end-1 {
			content.WriteString("\n")
		}
	}

	style := t.unfocusedStyle
	if t.focused {
		style = t.focusedStyle
	}
	return style.Width(max(1, t.width-2)).Height(t.rows()).Render(content.String())
}

// Cursor returns the institution under the cursor
func (t *Tree) Cursor() (models.Institution, bool) {
	if t.cursor >= len(t.nodes) {
		return models.Institution{}, false
	}
	return t.nodes[t.cursor].inst, true
}

func (t *Tree) rows() int {
	return max(1, t.height-2)
}

// scroll keeps the cursor inside the visible window
func (t *Tree) scroll() {
	rows := t.rows()
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+rows {
		t.offset = t.cursor - rows + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}
