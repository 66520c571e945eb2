// Package rasterize implements the rasterize stage: it paints a
// pipeline.Document at native size and encodes it as a PNG data URI.
package rasterize

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/color"
	"image/png"
	"math"

	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/ports"
	"github.com/user/ogstory/pkg/svgdoc"
	"github.com/user/ogstory/pkg/typeface"
)

// Engine selects how documents are painted.
type Engine string

const (
	// EngineGG paints with the in-process 2D canvas.
	EngineGG Engine = "gg"
	// EngineBrowser screenshots the SVG form in headless Chrome.
	EngineBrowser Engine = "browser"
)

// ParseEngine parses an engine name. The empty string selects EngineGG.
func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case "", EngineGG:
		return EngineGG, nil
	case EngineBrowser:
		return EngineBrowser, nil
	default:
		return "", fmt.Errorf("unknown rasterizer engine %q (want gg or browser)", s)
	}
}

// shadowScale is the downsampling factor used when blurring shadows.
const shadowScale = 4

// Stage rasterizes documents.
type Stage struct {
	engine   Engine
	renderer ports.Renderer
	capturer ports.HTMLCapturer
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new rasterize stage. capturer may be nil when engine
// is EngineGG.
func NewStage(engine Engine, renderer ports.Renderer, capturer ports.HTMLCapturer, sink ports.DebugSink, logger ports.Logger) *Stage {
	if engine == "" {
		engine = EngineGG
	}
	return &Stage{
		engine:   engine,
		renderer: renderer,
		capturer: capturer,
		sink:     sink,
		logger:   logger.WithComponent("rasterize"),
	}
}

// Execute paints doc and returns the PNG bytes and data URI.
func (s *Stage) Execute(ctx context.Context, doc pipeline.Document) (pipeline.EncodedImage, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.EncodedImage{}, err
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return pipeline.EncodedImage{}, pipeline.NewError(pipeline.KindRender, "rasterize",
			fmt.Errorf("invalid document size %dx%d", doc.Width, doc.Height))
	}

	s.logger.Debug("Rasterizing %dx%d document with %s engine", doc.Width, doc.Height, s.engine)

	if s.sink.Enabled() {
		if svg, err := svgdoc.Render(doc); err == nil {
			if err := s.sink.SaveDocumentSVG([]byte(svg)); err != nil {
				s.logger.Warn("Failed to save debug output: %s", err)
			}
		}
	}

	var data []byte
	var err error
	switch s.engine {
	case EngineBrowser:
		data, err = s.captureBrowser(ctx, doc)
	default:
		data, err = s.paintGG(doc)
	}
	if err != nil {
		return pipeline.EncodedImage{}, err
	}

	if s.sink.Enabled() {
		if err := s.sink.SavePNG(data); err != nil {
			s.logger.Warn("Failed to save debug output: %s", err)
		}
	}

	s.logger.Debug("Rasterized %d bytes", len(data))
	return Encode(data), nil
}

// Encode wraps PNG bytes as an EncodedImage.
func Encode(data []byte) pipeline.EncodedImage {
	return pipeline.EncodedImage{
		PNG:     data,
		DataURI: pipeline.DataURIPrefix + base64.StdEncoding.EncodeToString(data),
	}
}

func (s *Stage) captureBrowser(ctx context.Context, doc pipeline.Document) ([]byte, error) {
	if s.capturer == nil {
		return nil, pipeline.NewError(pipeline.KindRender, "rasterize", fmt.Errorf("browser engine is not available"))
	}
	html, err := svgdoc.RenderHTML(doc)
	if err != nil {
		return nil, pipeline.NewError(pipeline.KindRender, "serialize document", err)
	}
	data, err := s.capturer.CaptureHTML(ctx, html, doc.Width, doc.Height)
	if err != nil {
		return nil, pipeline.NewError(pipeline.KindRender, "capture document", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, pipeline.NewError(pipeline.KindEncode, "capture document", err)
	}
	if cfg.Width != doc.Width || cfg.Height != doc.Height {
		return nil, pipeline.NewError(pipeline.KindRender, "capture document",
			fmt.Errorf("screenshot is %dx%d, want %dx%d", cfg.Width, cfg.Height, doc.Width, doc.Height))
	}
	return data, nil
}

func (s *Stage) paintGG(doc pipeline.Document) ([]byte, error) {
	fonts, err := typeface.Parse(doc.Fonts)
	if err != nil {
		return nil, pipeline.NewError(pipeline.KindRender, "load fonts", err)
	}
	defer fonts.Close()

	p := &painter{
		renderer: s.renderer,
		canvas:   s.renderer.CreateCanvas(doc.Width, doc.Height, color.White),
		fonts:    fonts,
	}
	if err := p.paint(doc.Nodes); err != nil {
		return nil, pipeline.NewError(pipeline.KindRender, "paint document", err)
	}

	data, err := s.renderer.EncodePNG(p.canvas.ToImage())
	if err != nil {
		return nil, pipeline.NewError(pipeline.KindEncode, "encode png", err)
	}
	return data, nil
}

// painter draws document nodes onto a canvas.
type painter struct {
	renderer ports.Renderer
	canvas   ports.Canvas
	fonts    *typeface.Set
	clipped  bool
}

func (p *painter) paint(nodes []pipeline.Node) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case pipeline.RectNode:
			p.rect(n)
		case pipeline.ClipNode:
			if p.clipped {
				return fmt.Errorf("nested clip regions are not supported")
			}
			p.canvas.ClipRoundedRect(n.X, n.Y, n.Width, n.Height, n.Radius)
			p.clipped = true
			err := p.paint(n.Children)
			p.canvas.ResetClip()
			p.clipped = false
			if err != nil {
				return err
			}
		case pipeline.ImageNode:
			if err := p.image(n); err != nil {
				return err
			}
		case pipeline.TextNode:
			face, err := p.fonts.Face(n.Weight, n.Size)
			if err != nil {
				return err
			}
			p.canvas.DrawText(n.Text, n.X, n.Baseline, ports.TextStyle{
				Face:  face,
				Color: n.Color,
			})
		default:
			return fmt.Errorf("unsupported node %T", n)
		}
	}
	return nil
}

func (p *painter) rect(n pipeline.RectNode) {
	if n.Shadow != nil && n.Shadow.Color.A > 0 {
		p.shadow(n)
	}
	switch {
	case n.Fill.Gradient != nil:
		g := n.Fill.Gradient
		grad := ports.Gradient{X0: g.X0, Y0: g.Y0, X1: g.X1, Y1: g.Y1}
		for _, stop := range g.Stops {
			grad.Stops = append(grad.Stops, ports.GradientStop{Offset: stop.Offset, Color: stop.Color})
		}
		p.canvas.FillRoundedRectGradient(n.X, n.Y, n.Width, n.Height, n.Radius, grad)
	case n.Fill.Color.A > 0:
		p.canvas.FillRoundedRect(n.X, n.Y, n.Width, n.Height, n.Radius, n.Fill.Color)
	}
	if n.StrokeWidth > 0 && n.Stroke.A > 0 {
		p.canvas.StrokeRoundedRect(n.X, n.Y, n.Width, n.Height, n.Radius, n.Stroke, n.StrokeWidth)
	}
}

// shadow paints a blurred copy of the rect's shape outside the rect itself,
// so a card without a fill never shows its own shadow through transparent
// content. The blur runs on a downsampled layer that covers the shape plus
// three standard deviations.
func (p *painter) shadow(n pipeline.RectNode) {
	s := n.Shadow
	sigma := s.Blur / 2
	margin := math.Ceil(3 * sigma)

	x := n.X + s.OffsetX - s.Spread
	y := n.Y + s.OffsetY - s.Spread
	w := n.Width + 2*s.Spread
	h := n.Height + 2*s.Spread
	if w <= 0 || h <= 0 {
		return
	}
	r := math.Max(0, n.Radius+s.Spread)

	lw := int(math.Ceil((w + 2*margin) / shadowScale))
	lh := int(math.Ceil((h + 2*margin) / shadowScale))
	layer := p.renderer.CreateCanvas(lw, lh, color.Transparent)
	layer.FillRoundedRect(margin/shadowScale, margin/shadowScale, w/shadowScale, h/shadowScale, r/shadowScale, s.Color)
	blurred := p.renderer.BlurImage(layer.ToImage(), sigma/shadowScale)

	// Inside a clip region the knockout would replace the active clip.
	if !p.clipped {
		p.canvas.ClipOutsideRoundedRect(n.X, n.Y, n.Width, n.Height, n.Radius)
		defer p.canvas.ResetClip()
	}
	p.canvas.DrawImageScaled(blurred,
		int(math.Round(x-margin)), int(math.Round(y-margin)),
		lw*shadowScale, lh*shadowScale)
}

func (p *painter) image(n pipeline.ImageNode) error {
	img := n.Image
	if img == nil {
		if len(n.Data) == 0 {
			return fmt.Errorf("image node has no data")
		}
		decoded, _, err := p.renderer.DecodeImage(n.Data)
		if err != nil {
			return fmt.Errorf("decode image: %w", err)
		}
		img = decoded
	}
	x := int(math.Round(n.X))
	y := int(math.Round(n.Y))
	w := int(math.Round(n.X+n.Width)) - x
	h := int(math.Round(n.Y+n.Height)) - y
	p.canvas.DrawImageScaled(img, x, y, w, h)
	return nil
}
