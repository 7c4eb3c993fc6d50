package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	fetchTimeout = 30 * time.Second
	maxStyleSize = 1 << 20
)

var (
	// ErrPrepare is returned when the renderer style cannot be prepared.
	ErrPrepare = errors.New("prepare renderer")

	// ErrStyleTooLarge is returned when a fetched style exceeds maxStyleSize.
	ErrStyleTooLarge = errors.New("style document too large")
)

// Fetcher downloads style documents
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher returns a Fetcher with a 30 second timeout
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// NewFetcherWithClient uses the given HTTP client
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{httpClient: client}
}

// Get returns the body of url
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP error: %d - %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStyleSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxStyleSize {
		return nil, ErrStyleTooLarge
	}
	return body, nil
}
