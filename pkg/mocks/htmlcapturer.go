package mocks

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"

	"github.com/user/ogstory/pkg/ports"
)

// HTMLCapturer is a mock implementation of ports.HTMLCapturer.
type HTMLCapturer struct {
	CaptureHTMLFunc func(ctx context.Context, html string, width, height int) ([]byte, error)

	// Track calls for assertions
	mu               sync.Mutex
	CaptureHTMLCalls []struct {
		HTML   string
		Width  int
		Height int
	}
}

// NewHTMLCapturer creates a new mock HTMLCapturer that returns a blank PNG
// of the requested size.
func NewHTMLCapturer() *HTMLCapturer {
	return &HTMLCapturer{}
}

// CaptureHTML implements ports.HTMLCapturer.
func (m *HTMLCapturer) CaptureHTML(ctx context.Context, html string, width, height int) ([]byte, error) {
	m.mu.Lock()
	m.CaptureHTMLCalls = append(m.CaptureHTMLCalls, struct {
		HTML   string
		Width  int
		Height int
	}{html, width, height})
	m.mu.Unlock()
	if m.CaptureHTMLFunc != nil {
		return m.CaptureHTMLFunc(ctx, html, width, height)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ ports.HTMLCapturer = (*HTMLCapturer)(nil)
