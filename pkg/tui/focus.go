package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// FocusableComponent represents a pane that can receive focus
type FocusableComponent interface {
	// Focus gives focus to the component
	Focus() tea.Cmd
	// Blur removes focus from the component
	Blur() tea.Cmd
	// Focused returns whether the component currently has focus
	Focused() bool
}

// FocusManager cycles focus through the curation panes
type FocusManager struct {
	components []FocusableComponent
	current    int
	enabled    bool
}

// NewFocusManager creates a focus manager; nothing is focused until Enable
func NewFocusManager(components ...FocusableComponent) *FocusManager {
	return &FocusManager{components: components}
}

// Next moves focus to the next component
func (fm *FocusManager) Next() tea.Cmd {
	if !fm.enabled || len(fm.components) == 0 {
		return nil
	}
	return fm.move((fm.current + 1) % len(fm.components))
}

// Previous moves focus to the previous component
func (fm *FocusManager) Previous() tea.Cmd {
	if !fm.enabled || len(fm.components) == 0 {
		return nil
	}
	return fm.move((fm.current - 1 + len(fm.components)) % len(fm.components))
}

// SetFocus sets focus to a specific component index
func (fm *FocusManager) SetFocus(index int) tea.Cmd {
	if !fm.enabled || index < 0 || index >= len(fm.components) {
		return nil
	}
	return fm.move(index)
}

// Current returns the currently focused component index
func (fm *FocusManager) Current() int {
	return fm.current
}

// Enabled reports whether a pane holds focus
func (fm *FocusManager) Enabled() bool {
	return fm.enabled
}

// Enable focuses the pane at index
func (fm *FocusManager) Enable(index int) tea.Cmd {
	if index < 0 || index >= len(fm.components) {
		return nil
	}
	if fm.enabled {
		fm.components[fm.current].Blur()
	}
	fm.enabled = true
	fm.current = index
	return fm.components[index].Focus()
}

// Disable blurs the current pane
func (fm *FocusManager) Disable() {
	if !fm.enabled {
		return
	}
	fm.components[fm.current].Blur()
	fm.enabled = false
}

func (fm *FocusManager) move(index int) tea.Cmd {
	if index == fm.current {
		return nil
	}
	fm.components[fm.current].Blur()
	fm.current = index
	return fm.components[fm.current].Focus()
}
