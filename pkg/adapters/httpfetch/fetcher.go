// Package httpfetch provides a ports.Fetcher backed by net/http.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/ogstory/pkg/ports"
)

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ogstory/1.0; +https://github.com/user/ogstory)"

// Options configures fetch behavior.
type Options struct {
	Timeout   time.Duration // per request, including the body read
	UserAgent string
	MaxBytes  int64 // response bodies larger than this are rejected
}

// DefaultOptions returns Options with default values.
func DefaultOptions() Options {
	return Options{
		Timeout:   15 * time.Second,
		UserAgent: DefaultUserAgent,
		MaxBytes:  20 << 20, // 20MB
	}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Fetcher implements ports.Fetcher.
type Fetcher struct {
	client *http.Client
	opts   Options
}

// New creates a Fetcher with its own http.Client.
func New(opts Options) *Fetcher {
	return NewWithClient(&http.Client{}, opts)
}

// NewWithClient creates a Fetcher that uses client for requests.
func NewWithClient(client *http.Client, opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultOptions().MaxBytes
	}
	return &Fetcher{client: client, opts: opts}
}

// Fetch downloads url.
func (f *Fetcher) Fetch(ctx context.Context, url string, accept string) (*ports.FetchResult, error) {
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.opts.MaxBytes {
		return nil, fmt.Errorf("GET %s: response exceeds %d bytes", url, f.opts.MaxBytes)
	}

	return &ports.FetchResult{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Ensure Fetcher implements ports.Fetcher
var _ ports.Fetcher = (*Fetcher)(nil)
