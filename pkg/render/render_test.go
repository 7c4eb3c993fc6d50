package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanschultz/instlist/pkg/config"
	"github.com/evanschultz/instlist/pkg/curation"
	"github.com/evanschultz/instlist/pkg/models"
)

func TestSelect(t *testing.T) {
	cfg := config.Default()
	cfg.WordWrap = 60
	p := Select(cfg)
	assert.Equal(t, EmbeddedPreparer{WordWrap: 60}, p)
	assert.Equal(t, "embedded", p.Source())

	cfg.Style = "dark"
	assert.Equal(t, "standard:dark", Select(cfg).Source())

	cfg.StyleURL = "https://example.org/style.json"
	p = Select(cfg)
	remote, ok := p.(RemotePreparer)
	require.True(t, ok)
	assert.Equal(t, "https://example.org/style.json", remote.URL)
}

func TestEmbeddedPrepare(t *testing.T) {
	r, err := EmbeddedPreparer{}.Prepare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "embedded", r.Source())

	out, err := r.RenderRules([]curation.Rule{{Find: "Dept", Replace: "Department"}}, []int{3})
	require.NoError(t, err)
	assert.Contains(t, out, "Department")
}

func TestEmbeddedPrepareCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := EmbeddedPreparer{}.Prepare(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemotePrepare(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(embeddedStyle)
	}))
	defer srv.Close()

	p := RemotePreparer{URL: srv.URL, Client: srv.Client()}
	r, err := p.Prepare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, srv.URL, r.Source())
}

func TestRemotePrepareErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "no such style", http.StatusNotFound)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>nope</html>"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			p := RemotePreparer{URL: srv.URL, Client: srv.Client()}
			r, err := p.Prepare(context.Background())
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, ErrPrepare), "got %v", err)
		})
	}
}

func TestFetcherTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", maxStyleSize+1)))
	}))
	defer srv.Close()

	_, err := NewFetcherWithClient(srv.Client()).Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrStyleTooLarge)
}

func TestRulesMarkdown(t *testing.T) {
	md := RulesMarkdown([]curation.Rule{
		{Find: "a|b", Replace: ""},
		{Find: "x", Replace: "y"},
	}, []int{2})

	assert.Contains(t, md, "| 1 | `a\\|b` | _(empty)_ | 2 |")
	assert.Contains(t, md, "| 2 | `x` | `y` | 0 |")

	empty := RulesMarkdown(nil, nil)
	assert.Contains(t, empty, "No substitutions")
}

func TestSummaryMarkdown(t *testing.T) {
	md := SummaryMarkdown(
		[]models.Row{{ID: "A", Label: "Alpha"}},
		curation.ExclusionSet{"B": "Beta", "C": "Gamma"},
		nil,
	)
	assert.Contains(t, md, "**1** included")
	assert.Contains(t, md, "**2** excluded")
	assert.Contains(t, md, "**0** substitutions")
}
