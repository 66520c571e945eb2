package ports

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
)

// Renderer abstracts raster image operations.
type Renderer interface {
	// CreateCanvas creates a new drawing canvas with the specified dimensions and background color.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// DecodeImage decodes image data of any registered format.
	// It returns the image and the format name reported by the decoder.
	DecodeImage(data []byte) (image.Image, string, error)

	// EncodePNG encodes an image as PNG.
	EncodePNG(img image.Image) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image

	// BlurImage applies a Gaussian blur with the given standard deviation.
	BlurImage(img image.Image, sigma float64) image.Image
}

// Canvas provides drawing operations for painting a story.
// Coordinates are in canvas pixels; radius 0 draws square corners.
type Canvas interface {
	// FillRoundedRect fills a rounded rectangle with a solid color.
	FillRoundedRect(x, y, w, h, radius float64, c color.Color)

	// FillRoundedRectGradient fills a rounded rectangle with a linear gradient.
	FillRoundedRectGradient(x, y, w, h, radius float64, g Gradient)

	// StrokeRoundedRect draws a rounded rectangle outline.
	StrokeRoundedRect(x, y, w, h, radius float64, c color.Color, strokeWidth float64)

	// ClipRoundedRect restricts subsequent drawing to a rounded rectangle.
	ClipRoundedRect(x, y, w, h, radius float64)

	// ClipOutsideRoundedRect restricts subsequent drawing to everything
	// outside a rounded rectangle.
	ClipOutsideRoundedRect(x, y, w, h, radius float64)

	// ResetClip removes any clip.
	ResetClip()

	// DrawImageScaled draws an image scaled to the specified box.
	DrawImageScaled(img image.Image, x, y, width, height int)

	// DrawText draws a single line of text with its baseline at y.
	DrawText(text string, x, y float64, style TextStyle)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// Gradient is a linear gradient between two canvas points.
type Gradient struct {
	X0, Y0, X1, Y1 float64
	Stops          []GradientStop
}

// GradientStop is a color at an offset in [0, 1].
type GradientStop struct {
	Offset float64
	Color  color.Color
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	Face  font.Face
	Color color.Color
}
