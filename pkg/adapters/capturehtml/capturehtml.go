// Package capturehtml provides HTML-to-PNG capture using a headless browser.
package capturehtml

import (
	"context"
	"fmt"
	"os"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/ogstory/pkg/ports"
)

// Options configures the browser used for capture.
type Options struct {
	ChromePath string // empty uses the system default lookup
	NoSandbox  bool   // needed when running as root in containers
}

// Capturer captures HTML as PNG using a headless browser.
// Each capture launches its own browser, so a Capturer is safe for
// concurrent use.
type Capturer struct {
	opts Options
}

// New creates a new HTML capturer.
func New(opts Options) *Capturer {
	opts.ChromePath = ResolveChromePath(opts.ChromePath)
	return &Capturer{opts: opts}
}

// Ensure Capturer implements ports.HTMLCapturer
var _ ports.HTMLCapturer = (*Capturer)(nil)

// CaptureHTML renders html in a width x height viewport and returns PNG bytes.
func (c *Capturer) CaptureHTML(ctx context.Context, html string, width, height int) ([]byte, error) {
	// Write HTML to a temporary file
	tmp, err := os.CreateTemp("", "ogstory-*.html")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(width, height),
	)
	if c.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.opts.ChromePath))
	}
	if c.opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var buf []byte
	if err := chromedp.Run(browserCtx,
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false),
		chromedp.Navigate("file://"+tmp.Name()),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, err := page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithClip(&page.Viewport{X: 0, Y: 0, Width: float64(width), Height: float64(height), Scale: 1}).
				Do(ctx)
			if err != nil {
				return err
			}
			buf = data
			return nil
		}),
	); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}

	return buf, nil
}
