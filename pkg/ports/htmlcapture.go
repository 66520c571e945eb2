package ports

import (
	"context"
)

// HTMLCapturer renders HTML in a browser and captures it as PNG.
type HTMLCapturer interface {
	// CaptureHTML renders html in a viewport of exactly width x height CSS
	// pixels at device scale 1 and returns the PNG screenshot of that viewport.
	CaptureHTML(ctx context.Context, html string, width, height int) ([]byte, error)
}
