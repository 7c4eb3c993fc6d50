package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestTextPaneIgnoresKeysWhenBlurred(t *testing.T) {
	p := NewTextPane("Exclusions", "")
	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")})
	assert.Equal(t, "", p.Value())

	p.Focus()
	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")})
	assert.Equal(t, "abc", p.Value())
	assert.True(t, p.Focused())

	p.Blur()
	assert.False(t, p.Focused())
}

func TestTextPaneSetValue(t *testing.T) {
	p := NewTextPane("Exclusions", "")
	p.SetSize(40, 10)
	p.SetValue("1 - One\n2 - Two")
	assert.Equal(t, "1 - One\n2 - Two", p.Value())

	p.SetValue("1 - One\n2 - Two")
	assert.Equal(t, "1 - One\n2 - Two", p.Value())
	assert.Contains(t, p.View(), "Exclusions")
}
