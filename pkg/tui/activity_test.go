package tui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivityPanelBounded(t *testing.T) {
	p := NewActivityPanel()
	for i := 0; i < maxActivityEntries+7; i++ {
		p.Add("TOGGLE", fmt.Sprintf("entry %d", i), LevelInfo)
	}

	entries := p.Entries()
	assert.Len(t, entries, maxActivityEntries)
	assert.Equal(t, "entry 7", entries[0].Content)
	assert.Equal(t, fmt.Sprintf("entry %d", maxActivityEntries+6), entries[len(entries)-1].Content)
}

func TestActivityPanelView(t *testing.T) {
	p := NewActivityPanel()
	p.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC) }

	assert.Equal(t, "", p.View(80))
	assert.Equal(t, 0, p.Height())

	p.Toggle()
	assert.Contains(t, p.View(80), "No activity yet")

	p.AddError("SAVE", errors.New("disk full"))
	view := p.View(80)
	assert.Contains(t, view, "[09:30:15]")
	assert.Contains(t, view, "disk full")
	assert.Equal(t, shownActivity+4, p.Height())
}
