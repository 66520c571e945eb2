package pipeline

import (
	"fmt"
	"image"
	"net/url"
	"sort"
	"strings"

	"github.com/user/ogstory/pkg/palette"
)

// =============================================================================
// Extract Stage Types
// =============================================================================

// OGMetadata is the Open Graph data of a page plus the host it came from.
type OGMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Host        string `json:"host"`
}

// ResolveImage returns the og:image reference resolved against pageURL.
// Absolute references and unparsable inputs are returned unchanged.
func (m OGMetadata) ResolveImage(pageURL string) string {
	if m.Image == "" || strings.HasPrefix(m.Image, "http://") || strings.HasPrefix(m.Image, "https://") {
		return m.Image
	}
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return m.Image
	}
	ref, err := url.Parse(m.Image)
	if err != nil {
		return m.Image
	}
	return base.ResolveReference(ref).String()
}

// =============================================================================
// Sample / Gradient Stage Types
// =============================================================================

// SampleResult is the sampled dominant color together with the decoded
// image, so later stages can draw it without a second fetch.
type SampleResult struct {
	Base      palette.Color
	Image     image.Image
	Data      []byte
	MediaType string
}

// GradientSpec is a two-stop linear gradient.
// Angle follows CSS conventions; 180 means top to bottom.
type GradientSpec struct {
	Start palette.Color `json:"start"`
	End   palette.Color `json:"end"`
	Angle float64       `json:"angle"`
}

// NewVerticalGradient creates a top-to-bottom gradient from start to end.
func NewVerticalGradient(start, end palette.Color) GradientSpec {
	return GradientSpec{Start: start, End: end, Angle: 180}
}

// CSS renders the gradient as a CSS linear-gradient value.
func (g GradientSpec) CSS() string {
	return fmt.Sprintf("linear-gradient(%gdeg, %s, %s)", g.Angle, g.Start.CSS(), g.End.CSS())
}

// GradientResult is the gradient plus the sample it was derived from.
type GradientResult struct {
	Gradient GradientSpec
	Sample   SampleResult
}

// =============================================================================
// Font Types
// =============================================================================

// Standard font weights used by the story template.
const (
	WeightNormal = 400
	WeightMedium = 500
)

// FontAsset is one font file with its CSS-style descriptors.
type FontAsset struct {
	Family string
	Style  string
	Weight int
	Data   []byte
}

// FontSet is a collection of font assets ordered by weight.
type FontSet []FontAsset

// Sorted returns a copy of the set ordered by ascending weight.
func (s FontSet) Sorted() FontSet {
	out := make(FontSet, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight < out[j].Weight })
	return out
}

// ByWeight returns the asset with the given weight.
func (s FontSet) ByWeight(weight int) (FontAsset, bool) {
	for _, f := range s {
		if f.Weight == weight {
			return f, true
		}
	}
	return FontAsset{}, false
}

// FontRequest describes one font file to load.
type FontRequest struct {
	Family string
	Style  string
	Weight int
	File   string // file name relative to the CDN base or local directory
}

// FontsInput contains the fonts to load.
type FontsInput struct {
	Requests []FontRequest
}

// DefaultFontsInput returns the two Wanted Sans weights used by the template.
func DefaultFontsInput() FontsInput {
	return FontsInput{
		Requests: []FontRequest{
			{Family: "Wanted Sans", Style: "normal", Weight: WeightNormal, File: "WantedSans-Regular.otf"},
			{Family: "Wanted Sans", Style: "normal", Weight: WeightMedium, File: "WantedSans-Medium.otf"},
		},
	}
}

// =============================================================================
// Layout Stage Types
// =============================================================================

// Fixed story canvas size.
const (
	CanvasWidth  = 1080
	CanvasHeight = 1920
)

// LayoutInput contains everything needed to lay out the story template.
type LayoutInput struct {
	Metadata OGMetadata
	Gradient GradientSpec
	Image    image.Image // may be nil when the page has no usable image
	// ImageData and ImageMediaType are embedded into the SVG form.
	ImageData      []byte
	ImageMediaType string
	Fonts          FontSet
	Theme          StoryTheme
}

// =============================================================================
// Rasterize Stage Types
// =============================================================================

// DataURIPrefix marks an inline PNG payload.
const DataURIPrefix = "data:image/png;base64,"

// EncodedImage is the final output of the pipeline.
type EncodedImage struct {
	PNG     []byte
	DataURI string
}
