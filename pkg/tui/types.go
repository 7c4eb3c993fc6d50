package tui

import (
	"github.com/evanschultz/instlist/pkg/render"
)

// Messages
type rendererReadyMsg struct {
	renderer *render.Renderer
}

type rendererFailedMsg struct {
	err error
}

type savedMsg struct {
	kind string // csv, exclusions, clipboard
	name string
	data string
}

type saveFailedMsg struct {
	kind string
	err  error
}

// step is the page the user is on
type step int

const (
	stepXML step = iota
	stepCurate
)

// Curation panes in focus order
const (
	paneTree = iota
	paneExclusions
	paneSubstitutions
	panePreview
)

const (
	kindCSV        = "csv"
	kindExclusions = "exclusions"
	kindClipboard  = "clipboard"
)
