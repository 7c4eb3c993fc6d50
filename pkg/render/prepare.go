package render

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/charmbracelet/glamour"

	"github.com/evanschultz/instlist/pkg/config"
)

//go:embed styles/instlist.json
var embeddedStyle []byte

const defaultWordWrap = 80

// Preparer builds the Renderer once at startup
type Preparer interface {
	Prepare(ctx context.Context) (*Renderer, error)
	// Source describes where the style comes from, for logs and errors
	Source() string
}

// EmbeddedPreparer compiles the style shipped with the binary, or a glamour
// standard style when Style is set.
type EmbeddedPreparer struct {
	Style    string
	WordWrap int
}

// Prepare compiles the renderer
func (p EmbeddedPreparer) Prepare(ctx context.Context) (*Renderer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	styleOpt := glamour.WithStylesFromJSONBytes(embeddedStyle)
	if p.Style != "" {
		styleOpt = glamour.WithStandardStyle(p.Style)
	}
	return newRenderer(styleOpt, p.WordWrap, p.Source())
}

// Source returns the style name
func (p EmbeddedPreparer) Source() string {
	if p.Style != "" {
		return "standard:" + p.Style
	}
	return "embedded"
}

// RemotePreparer fetches a glamour JSON style over HTTP
type RemotePreparer struct {
	URL      string
	Client   *http.Client // nil uses a client with a 30 second timeout
	WordWrap int
}

// Prepare fetches and compiles the style
func (p RemotePreparer) Prepare(ctx context.Context) (*Renderer, error) {
	fetcher := NewFetcher()
	if p.Client != nil {
		fetcher = NewFetcherWithClient(p.Client)
	}

	style, err := fetcher.Get(ctx, p.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPrepare, p.URL, err)
	}
	return newRenderer(glamour.WithStylesFromJSONBytes(style), p.WordWrap, p.Source())
}

// Source returns the style URL
func (p RemotePreparer) Source() string {
	return p.URL
}

// Select picks the preparation strategy. A style URL selects the network
// fetch; everything else is served locally.
func Select(cfg *config.Config) Preparer {
	if cfg.StyleURL != "" {
		return RemotePreparer{URL: cfg.StyleURL, WordWrap: cfg.WordWrap}
	}
	return EmbeddedPreparer{Style: cfg.Style, WordWrap: cfg.WordWrap}
}

func newRenderer(styleOpt glamour.TermRendererOption, wordWrap int, source string) (*Renderer, error) {
	if wordWrap <= 0 {
		wordWrap = defaultWordWrap
	}

	tr, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPrepare, source, err)
	}
	return &Renderer{term: tr, source: source}, nil
}
