// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/user/ogstory/pkg/ports"
)

// DefaultMaxPixels bounds the decoded size of an image.
const DefaultMaxPixels = 50_000_000

// ErrImageTooLarge is returned by DecodeImage when the image header declares
// more pixels than the renderer allows.
var ErrImageTooLarge = errors.New("image too large")

// Renderer implements ports.Renderer using the gg library.
type Renderer struct {
	maxPixels int64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxPixels sets the decode budget. Non-positive values keep the default.
func WithMaxPixels(n int64) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxPixels = n
		}
	}
}

// New creates a new Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateCanvas creates a new drawing canvas.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{dc: dc, renderer: r}
}

// DecodeImage decodes PNG, JPEG, GIF, WebP or BMP data. The header is read
// first and images over the pixel budget are rejected before any pixel
// buffer is allocated.
func (r *Renderer) DecodeImage(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > r.maxPixels {
		return nil, format, fmt.Errorf("%w: %s is %dx%d, limit is %d pixels",
			ErrImageTooLarge, format, cfg.Width, cfg.Height, r.maxPixels)
	}
	return image.Decode(bytes.NewReader(data))
}

// EncodePNG encodes an image as PNG.
// The default compression level keeps output bytes identical for identical input.
func (r *Renderer) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// ResizeImage resizes an image to the specified dimensions.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// BlurImage applies a Gaussian blur. A non-positive sigma returns img unchanged.
func (r *Renderer) BlurImage(img image.Image, sigma float64) image.Image {
	if sigma <= 0 {
		return img
	}
	return imaging.Blur(img, sigma)
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc       *gg.Context
	renderer *Renderer
}

func (c *Canvas) roundedRectPath(x, y, w, h, radius float64) {
	c.dc.NewSubPath()
	if radius <= 0 {
		c.dc.DrawRectangle(x, y, w, h)
		return
	}
	c.dc.DrawRoundedRectangle(x, y, w, h, radius)
}

// FillRoundedRect fills a rounded rectangle with a solid color.
func (c *Canvas) FillRoundedRect(x, y, w, h, radius float64, col color.Color) {
	c.dc.SetColor(col)
	c.roundedRectPath(x, y, w, h, radius)
	c.dc.Fill()
}

// FillRoundedRectGradient fills a rounded rectangle with a linear gradient.
func (c *Canvas) FillRoundedRectGradient(x, y, w, h, radius float64, g ports.Gradient) {
	grad := gg.NewLinearGradient(g.X0, g.Y0, g.X1, g.Y1)
	for _, stop := range g.Stops {
		grad.AddColorStop(stop.Offset, stop.Color)
	}
	c.dc.SetFillStyle(grad)
	c.roundedRectPath(x, y, w, h, radius)
	c.dc.Fill()
}

// StrokeRoundedRect draws a rounded rectangle outline.
func (c *Canvas) StrokeRoundedRect(x, y, w, h, radius float64, col color.Color, strokeWidth float64) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(strokeWidth)
	c.roundedRectPath(x, y, w, h, radius)
	c.dc.Stroke()
}

// ClipRoundedRect restricts subsequent drawing to a rounded rectangle.
func (c *Canvas) ClipRoundedRect(x, y, w, h, radius float64) {
	c.roundedRectPath(x, y, w, h, radius)
	c.dc.Clip()
}

// ClipOutsideRoundedRect restricts subsequent drawing to the area outside
// a rounded rectangle. Any existing clip is intersected.
func (c *Canvas) ClipOutsideRoundedRect(x, y, w, h, radius float64) {
	c.roundedRectPath(x, y, w, h, radius)
	c.dc.Clip()
	c.dc.InvertMask()
}

// ResetClip removes any clip.
func (c *Canvas) ResetClip() {
	c.dc.ResetClip()
}

// DrawImageScaled draws an image scaled to the specified dimensions.
func (c *Canvas) DrawImageScaled(img image.Image, x, y, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	bounds := img.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		img = c.renderer.ResizeImage(img, width, height)
	}
	c.dc.DrawImage(img, x, y)
}

// DrawText draws left-aligned text with its baseline at y.
func (c *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) {
	if style.Face != nil {
		c.dc.SetFontFace(style.Face)
	}
	c.dc.SetColor(style.Color)
	c.dc.DrawString(text, x, y)
}

// ToImage returns the canvas as an image.Image.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

// Ensure Canvas implements ports.Canvas
var _ ports.Canvas = (*Canvas)(nil)
