package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/evanschultz/instlist/pkg/curation"
	"github.com/evanschultz/instlist/pkg/models"
)

func treeSnapshot() curation.Snapshot {
	return curation.Snapshot{
		Institutions: []models.Institution{
			{ID: "UNI", Label: "University"},
			{ID: "PHYS", Label: "Physics", Depth: 1},
			{ID: "CHEM", Label: "Chemistry", Depth: 1},
		},
		Excluded: curation.ExclusionSet{"PHYS": "Physics"},
	}
}

func newTestTree() (*Tree, *[]curation.Event) {
	var events []curation.Event
	tree := NewTree(func(ev curation.Event) bool {
		events = append(events, ev)
		return true
	})
	tree.SetSize(40, 10)
	tree.Render(treeSnapshot())
	tree.Focus()
	return tree, &events
}

func TestTreeToggle(t *testing.T) {
	tree, events := newTestTree()

	tree.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	tree.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	tree.Update(tea.KeyMsg{Type: tea.KeyDown})
	tree.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	want := []curation.Event{
		curation.ToggleInstitution{ID: "PHYS", Checked: true},
		curation.ToggleInstitution{ID: "CHEM", Checked: false},
	}
	if diff := cmp.Diff(want, *events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeCheckAndUncheckAll(t *testing.T) {
	tree, events := newTestTree()

	tree.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	tree.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	want := []curation.Event{
		curation.EditExclusions{Text: ""},
		curation.EditExclusions{Text: "CHEM - Chemistry\nPHYS - Physics\nUNI - University"},
	}
	if diff := cmp.Diff(want, *events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeIgnoresKeysWhenBlurred(t *testing.T) {
	tree, events := newTestTree()
	tree.Blur()

	tree.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Empty(t, *events)
}

func TestTreeCursorBounds(t *testing.T) {
	tree, _ := newTestTree()

	tree.Update(tea.KeyMsg{Type: tea.KeyUp})
	inst, ok := tree.Cursor()
	assert.True(t, ok)
	assert.Equal(t, "UNI", inst.ID)

	for i := 0; i < 5; i++ {
		tree.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	inst, _ = tree.Cursor()
	assert.Equal(t, "CHEM", inst.ID)

	tree.Render(curation.Snapshot{Institutions: []models.Institution{{ID: "ONLY", Label: "Only"}}})
	inst, _ = tree.Cursor()
	assert.Equal(t, models.Institution{ID: "ONLY", Label: "Only"}, inst)

	tree.Render(curation.Snapshot{})
	_, ok = tree.Cursor()
	assert.False(t, ok)
}

func TestTreeScrollsToCursor(t *testing.T) {
	tree, _ := newTestTree()
	tree.SetSize(40, 4) // two visible rows

	tree.Update(tea.KeyMsg{Type: tea.KeyDown})
	tree.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, tree.offset)

	view := tree.View()
	assert.Contains(t, view, "Chemistry")
	assert.NotContains(t, view, "University")
}

func TestTreeView(t *testing.T) {
	tree, _ := newTestTree()
	tree.Blur()

	view := tree.View()
	assert.Contains(t, view, "[x] University")
	assert.Contains(t, view, "  [ ] Physics")
	assert.Contains(t, view, "  [x] Chemistry")

	empty := NewTree(func(curation.Event) bool { return true })
	empty.SetSize(30, 5)
	assert.Contains(t, empty.View(), "No institutions loaded")
}
