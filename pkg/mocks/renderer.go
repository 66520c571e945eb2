package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/ogstory/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	DecodeImageFunc  func(data []byte) (image.Image, string, error)
	EncodePNGFunc    func(img image.Image) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image
	BlurImageFunc    func(img image.Image, sigma float64) image.Image

	mu       sync.Mutex
	Canvases []*Canvas
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := &Canvas{Width: width, Height: height}
	m.mu.Lock()
	m.Canvases = append(m.Canvases, c)
	m.mu.Unlock()
	return c
}

func (m *Renderer) DecodeImage(data []byte) (image.Image, string, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), "png", nil
}

func (m *Renderer) EncodePNG(img image.Image) ([]byte, error) {
	if m.EncodePNGFunc != nil {
		return m.EncodePNGFunc(img)
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) BlurImage(img image.Image, sigma float64) image.Image {
	if m.BlurImageFunc != nil {
		return m.BlurImageFunc(img, sigma)
	}
	return img
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas that records the
// name of every drawing call in order.
type Canvas struct {
	Width  int
	Height int
	Ops    []string
	Texts  []string
}

func (m *Canvas) FillRoundedRect(x, y, w, h, radius float64, c color.Color) {
	m.Ops = append(m.Ops, "fill")
}

func (m *Canvas) FillRoundedRectGradient(x, y, w, h, radius float64, g ports.Gradient) {
	m.Ops = append(m.Ops, "gradient")
}

func (m *Canvas) StrokeRoundedRect(x, y, w, h, radius float64, c color.Color, strokeWidth float64) {
	m.Ops = append(m.Ops, "stroke")
}

func (m *Canvas) ClipRoundedRect(x, y, w, h, radius float64) {
	m.Ops = append(m.Ops, "clip")
}

func (m *Canvas) ClipOutsideRoundedRect(x, y, w, h, radius float64) {
	m.Ops = append(m.Ops, "clipout")
}

func (m *Canvas) ResetClip() {
	m.Ops = append(m.Ops, "reset")
}

func (m *Canvas) DrawImageScaled(img image.Image, x, y, width, height int) {
	m.Ops = append(m.Ops, "image")
}

func (m *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) {
	m.Ops = append(m.Ops, "text")
	m.Texts = append(m.Texts, text)
}

func (m *Canvas) ToImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
}

var _ ports.Canvas = (*Canvas)(nil)
