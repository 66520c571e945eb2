package ports

import (
	"context"
)

// Fetcher retrieves remote resources over HTTP(S).
type Fetcher interface {
	// Fetch downloads url and returns its body.
	// accept is sent as the Accept header when non-empty.
	// Implementations report transport errors and non-2xx statuses as errors.
	Fetch(ctx context.Context, url string, accept string) (*FetchResult, error)
}

// FetchResult is a successfully downloaded resource.
type FetchResult struct {
	URL         string // final URL after redirects
	StatusCode  int
	ContentType string
	Body        []byte
}
