// Package summarizer provides summary generation for story runs.
package summarizer

import (
	"time"

	"github.com/user/ogstory/pkg/orchestrator"
)

// Summary contains all data collected during a generation run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Page information
	Page PageInfo

	// Gradient colors
	Colors ColorInfo

	// Timing results
	Timing TimingInfo

	// Generation settings
	Settings Settings

	// Image output details
	Output OutputInfo
}

// PageInfo contains the Open Graph data of the page.
type PageInfo struct {
	Title       string
	Description string
	Host        string
	URL         string
	ImageURL    string
}

// ColorInfo contains the gradient stops as hex strings.
type ColorInfo struct {
	Base       string
	Harmonized string
	CSS        string
}

// TimingInfo contains per-stage durations.
type TimingInfo struct {
	ExtractMs   int
	GradientMs  int
	FontsMs     int // 0 when fonts were injected
	LayoutMs    int
	RasterizeMs int
	TotalMs     int
}

// Settings contains the generation configuration.
type Settings struct {
	Engine       string
	Sampler      string
	FontFallback string
	Fonts        []string
}

// OutputInfo contains information about the output image.
type OutputInfo struct {
	Path     string
	Width    int
	Height   int
	FileSize int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithPage sets page information.
func (b *Builder) WithPage(page PageInfo) *Builder {
	b.summary.Page = page
	return b
}

// WithColors sets gradient colors.
func (b *Builder) WithColors(colors ColorInfo) *Builder {
	b.summary.Colors = colors
	return b
}

// WithTiming sets timing information.
func (b *Builder) WithTiming(timing TimingInfo) *Builder {
	b.summary.Timing = timing
	return b
}

// WithSettings sets generation settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithOutput sets output image information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithRunResult fills page, colors, timing and output size from a run.
// The output path and settings are left to the caller.
func (b *Builder) WithRunResult(r orchestrator.RunResult) *Builder {
	b.summary.Page = PageInfo{
		Title:       r.Metadata.Title,
		Description: r.Metadata.Description,
		Host:        r.Metadata.Host,
		URL:         r.PageURL,
		ImageURL:    r.ImageURL,
	}
	b.summary.Colors = ColorInfo{
		Base:       r.Gradient.Start.Hex(),
		Harmonized: r.Gradient.End.Hex(),
		CSS:        r.Gradient.CSS(),
	}
	b.summary.Timing = TimingInfo{
		ExtractMs:   int(r.Timing.Extract.Milliseconds()),
		GradientMs:  int(r.Timing.Gradient.Milliseconds()),
		FontsMs:     int(r.Timing.Fonts.Milliseconds()),
		LayoutMs:    int(r.Timing.Layout.Milliseconds()),
		RasterizeMs: int(r.Timing.Rasterize.Milliseconds()),
		TotalMs:     int(r.Timing.Total.Milliseconds()),
	}
	b.summary.Output.Width = r.Width
	b.summary.Output.Height = r.Height
	b.summary.Output.FileSize = int64(len(r.Image.PNG))
	if len(b.summary.Settings.Fonts) == 0 {
		b.summary.Settings.Fonts = r.Fonts
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
