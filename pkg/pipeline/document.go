package pipeline

import (
	"image"
	"image/color"
)

// =============================================================================
// Story Theme
// =============================================================================

// StoryTheme defines the colors of the story card.
type StoryTheme struct {
	PanelColor       color.NRGBA
	TitleColor       color.NRGBA
	DescriptionColor color.NRGBA
	HostColor        color.NRGBA
	BorderColor      color.NRGBA
	ShadowColor      color.NRGBA
}

// DefaultStoryTheme returns the standard story card colors.
func DefaultStoryTheme() StoryTheme {
	return StoryTheme{
		PanelColor:       color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		TitleColor:       color.NRGBA{R: 0x08, G: 0x09, B: 0x0A, A: 255},
		DescriptionColor: color.NRGBA{R: 0x3E, G: 0x49, B: 0x51, A: 255},
		HostColor:        color.NRGBA{R: 0x97, G: 0xA1, B: 0xA9, A: 255},
		BorderColor:      color.NRGBA{R: 0, G: 0, B: 0, A: 26},
		ShadowColor:      color.NRGBA{R: 0, G: 0, B: 0, A: 64},
	}
}

// =============================================================================
// Document
// =============================================================================

// Document is a laid-out vector scene. Nodes are painted in order.
type Document struct {
	Width  int
	Height int
	Nodes  []Node
	Fonts  FontSet
}

// Node is an element of a Document.
type Node interface {
	node()
}

// Paint is either a solid color or a linear gradient.
type Paint struct {
	Color    color.NRGBA
	Gradient *LinearGradient
}

// LinearGradient runs from (X0,Y0) to (X1,Y1) in canvas coordinates.
type LinearGradient struct {
	X0, Y0, X1, Y1 float64
	Stops          []GradientStop
}

// GradientStop is a color at an offset in [0, 1].
type GradientStop struct {
	Offset float64
	Color  color.NRGBA
}

// Shadow is a CSS-style box shadow.
type Shadow struct {
	OffsetX float64
	OffsetY float64
	Blur    float64
	Spread  float64
	Color   color.NRGBA
}

// RectNode is a filled, optionally rounded, stroked and shadowed rectangle.
type RectNode struct {
	X, Y, Width, Height float64
	Radius              float64
	Fill                Paint
	Stroke              color.NRGBA
	StrokeWidth         float64
	Shadow              *Shadow
}

// ClipNode paints its children clipped to a rounded rectangle.
type ClipNode struct {
	X, Y, Width, Height float64
	Radius              float64
	Children            []Node
}

// ImageNode draws a raster image stretched to the given box.
// The layout stage is responsible for preserving aspect ratio.
type ImageNode struct {
	X, Y, Width, Height float64
	Image               image.Image
	Data                []byte
	MediaType           string
}

// TextNode is a single line of text positioned by its baseline.
type TextNode struct {
	X        float64
	Baseline float64
	Text     string
	Family   string
	Weight   int
	Size     float64
	Color    color.NRGBA
}

func (RectNode) node()  {}
func (ClipNode) node()  {}
func (ImageNode) node() {}
func (TextNode) node()  {}
