package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive program on the alternate screen
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
