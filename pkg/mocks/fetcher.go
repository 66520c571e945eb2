package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/ogstory/pkg/ports"
)

// Fetcher is a mock implementation of ports.Fetcher.
// Responses are served from Responses by URL unless FetchFunc is set.
type Fetcher struct {
	FetchFunc func(ctx context.Context, url string, accept string) (*ports.FetchResult, error)

	mu        sync.Mutex
	Responses map[string]*ports.FetchResult
	Calls     []string
}

// NewFetcher creates a mock Fetcher with no canned responses.
func NewFetcher() *Fetcher {
	return &Fetcher{Responses: make(map[string]*ports.FetchResult)}
}

// Serve registers body as the response for url.
func (m *Fetcher) Serve(url, contentType string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[url] = &ports.FetchResult{URL: url, StatusCode: 200, ContentType: contentType, Body: body}
}

// Fetch implements ports.Fetcher.
func (m *Fetcher) Fetch(ctx context.Context, url string, accept string) (*ports.FetchResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, url)
	res, ok := m.Responses[url]
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, url, accept)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("GET %s: HTTP 404", url)
	}
	return res, nil
}

// CallCount returns the number of fetches made.
func (m *Fetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

var _ ports.Fetcher = (*Fetcher)(nil)
