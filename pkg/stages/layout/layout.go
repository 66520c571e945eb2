// Package layout implements the layout stage: it places the story card,
// image and text on the canvas and emits a pipeline.Document.
package layout

import (
	"context"
	"image/color"
	"math"

	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/typeface"
)

// Card geometry in canvas pixels.
const (
	CardWidth        = pipeline.CanvasWidth * 4 / 5
	CardRadius       = 40
	CardBorderWidth  = 1
	PanelPaddingX    = 40
	PanelPaddingTop  = 28
	PanelPaddingBot  = 36
	TitleSize        = 36
	TitleLineHeight  = 1.375
	TitleGap         = 4
	DescSize         = 30
	DescLineHeight   = 1.25
	DescGap          = 24
	HostSize         = 24
	HostLineHeight   = 1.0
	shadowOffsetY    = 25
	shadowBlur       = 50
	shadowSpread     = -12
	textContentWidth = CardWidth - PanelPaddingX*2
)

// Stage lays out the story template.
// This is a pure function with no external dependencies.
type Stage struct{}

// NewStage creates a new layout stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute lays out input. Font parse failures and missing weights are
// reported as render errors.
func (s *Stage) Execute(ctx context.Context, input pipeline.LayoutInput) (pipeline.Document, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.Document{}, err
	}
	doc, err := ComputeLayout(input)
	if err != nil {
		return pipeline.Document{}, pipeline.NewError(pipeline.KindRender, "layout", err)
	}
	return doc, nil
}

// Geometry is the resolved position of every card region.
type Geometry struct {
	CardX, CardY, CardHeight float64
	// ImageBox is the full-width image region; ImageRect is where the image
	// itself lands inside it after contain fitting.
	ImageBox  Rect
	ImageRect Rect
	Panel     Rect
	Title     []Line
	Desc      *Line
	Host      *Line
}

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, Width, Height float64
}

// Line is one laid-out line of text.
type Line struct {
	Text     string
	X        float64
	Baseline float64
}

// ComputeLayout performs the layout calculation.
// This is exposed as a standalone function for testing and reuse.
func ComputeLayout(input pipeline.LayoutInput) (pipeline.Document, error) {
	fonts, err := typeface.Parse(input.Fonts)
	if err != nil {
		return pipeline.Document{}, err
	}
	defer fonts.Close()
	if err := fonts.Require(pipeline.WeightNormal, pipeline.WeightMedium); err != nil {
		return pipeline.Document{}, err
	}

	geo, err := computeGeometry(input, fonts)
	if err != nil {
		return pipeline.Document{}, err
	}

	theme := input.Theme
	if theme == (pipeline.StoryTheme{}) {
		theme = pipeline.DefaultStoryTheme()
	}

	return buildDocument(input, geo, theme, fonts), nil
}

func computeGeometry(input pipeline.LayoutInput, fonts *typeface.Set) (Geometry, error) {
	titleFace, err := fonts.Face(pipeline.WeightMedium, TitleSize)
	if err != nil {
		return Geometry{}, err
	}
	descFace, err := fonts.Face(pipeline.WeightNormal, DescSize)
	if err != nil {
		return Geometry{}, err
	}
	hostFace, err := fonts.Face(pipeline.WeightNormal, HostSize)
	if err != nil {
		return Geometry{}, err
	}

	titleLines := typeface.Wrap(titleFace, input.Metadata.Title, textContentWidth)
	desc := typeface.Truncate(descFace, input.Metadata.Description, textContentWidth)
	host := typeface.Truncate(hostFace, input.Metadata.Host, textContentWidth)

	titleLH := TitleSize * TitleLineHeight
	descLH := DescSize * DescLineHeight
	hostLH := HostSize * HostLineHeight

	// Empty text collapses to zero height; gaps still apply.
	titleH := float64(len(titleLines)) * titleLH
	descH := 0.0
	if desc != "" {
		descH = descLH
	}
	hostH := 0.0
	if host != "" {
		hostH = hostLH
	}
	panelH := PanelPaddingTop + titleH + TitleGap + descH + DescGap + hostH + PanelPaddingBot

	imageH := 0.0
	if input.Image != nil {
		b := input.Image.Bounds()
		if b.Dx() > 0 && b.Dy() > 0 {
			imageH = CardWidth * float64(b.Dy()) / float64(b.Dx())
		}
		imageH = math.Max(0, math.Min(imageH, pipeline.CanvasHeight-panelH))
	}

	cardH := imageH + panelH
	cardX := float64(pipeline.CanvasWidth-CardWidth) / 2
	cardY := (pipeline.CanvasHeight - cardH) / 2

	geo := Geometry{
		CardX:      cardX,
		CardY:      cardY,
		CardHeight: cardH,
		Panel:      Rect{X: cardX, Y: cardY + imageH, Width: CardWidth, Height: panelH},
	}

	if imageH > 0 {
		geo.ImageBox = Rect{X: cardX, Y: cardY, Width: CardWidth, Height: imageH}
		geo.ImageRect = containRect(geo.ImageBox, input.Image.Bounds().Dx(), input.Image.Bounds().Dy())
	}

	textX := cardX + PanelPaddingX
	y := geo.Panel.Y + PanelPaddingTop
	for _, text := range titleLines {
		geo.Title = append(geo.Title, Line{Text: text, X: textX, Baseline: typeface.Baseline(titleFace, y, titleLH)})
		y += titleLH
	}
	y += TitleGap
	if desc != "" {
		geo.Desc = &Line{Text: desc, X: textX, Baseline: typeface.Baseline(descFace, y, descLH)}
		y += descLH
	}
	y += DescGap
	if host != "" {
		geo.Host = &Line{Text: host, X: textX, Baseline: typeface.Baseline(hostFace, y, hostLH)}
	}

	return geo, nil
}

// containRect fits a w x h image inside box preserving aspect ratio,
// centered on the free axis.
func containRect(box Rect, w, h int) Rect {
	scale := math.Min(box.Width/float64(w), box.Height/float64(h))
	dw := float64(w) * scale
	dh := float64(h) * scale
	return Rect{
		X:      box.X + (box.Width-dw)/2,
		Y:      box.Y + (box.Height-dh)/2,
		Width:  dw,
		Height: dh,
	}
}

func buildDocument(input pipeline.LayoutInput, geo Geometry, theme pipeline.StoryTheme, fonts *typeface.Set) pipeline.Document {
	doc := pipeline.Document{
		Width:  pipeline.CanvasWidth,
		Height: pipeline.CanvasHeight,
		Fonts:  input.Fonts.Sorted(),
	}

	// Background
	doc.Nodes = append(doc.Nodes, pipeline.RectNode{
		Width:  pipeline.CanvasWidth,
		Height: pipeline.CanvasHeight,
		Fill: pipeline.Paint{Gradient: &pipeline.LinearGradient{
			X0: 0, Y0: 0, X1: 0, Y1: pipeline.CanvasHeight,
			Stops: []pipeline.GradientStop{
				{Offset: 0, Color: opaque(input.Gradient.Start.RGBA())},
				{Offset: 1, Color: opaque(input.Gradient.End.RGBA())},
			},
		}},
	})

	// Shadow only; the card contents are painted inside the clip below.
	doc.Nodes = append(doc.Nodes, pipeline.RectNode{
		X: geo.CardX, Y: geo.CardY, Width: CardWidth, Height: geo.CardHeight,
		Radius: CardRadius,
		Shadow: &pipeline.Shadow{
			OffsetY: shadowOffsetY,
			Blur:    shadowBlur,
			Spread:  shadowSpread,
			Color:   theme.ShadowColor,
		},
	})

	var children []pipeline.Node
	if geo.ImageRect.Width > 0 && geo.ImageRect.Height > 0 {
		children = append(children, pipeline.ImageNode{
			X: geo.ImageRect.X, Y: geo.ImageRect.Y,
			Width: geo.ImageRect.Width, Height: geo.ImageRect.Height,
			Image:     input.Image,
			Data:      input.ImageData,
			MediaType: input.ImageMediaType,
		})
	}
	children = append(children, pipeline.RectNode{
		X: geo.Panel.X, Y: geo.Panel.Y, Width: geo.Panel.Width, Height: geo.Panel.Height,
		Fill: pipeline.Paint{Color: theme.PanelColor},
	})
	for _, line := range geo.Title {
		children = append(children, textNode(line, fonts, pipeline.WeightMedium, TitleSize, theme.TitleColor))
	}
	if geo.Desc != nil {
		children = append(children, textNode(*geo.Desc, fonts, pipeline.WeightNormal, DescSize, theme.DescriptionColor))
	}
	if geo.Host != nil {
		children = append(children, textNode(*geo.Host, fonts, pipeline.WeightNormal, HostSize, theme.HostColor))
	}

	doc.Nodes = append(doc.Nodes, pipeline.ClipNode{
		X: geo.CardX, Y: geo.CardY, Width: CardWidth, Height: geo.CardHeight,
		Radius:   CardRadius,
		Children: children,
	})

	// Border is stroked on the pixel grid inside the card edge.
	half := float64(CardBorderWidth) / 2
	doc.Nodes = append(doc.Nodes, pipeline.RectNode{
		X: geo.CardX + half, Y: geo.CardY + half,
		Width: CardWidth - CardBorderWidth, Height: geo.CardHeight - CardBorderWidth,
		Radius:      CardRadius - half,
		Stroke:      theme.BorderColor,
		StrokeWidth: CardBorderWidth,
	})

	return doc
}

func textNode(line Line, fonts *typeface.Set, weight int, size float64, c color.NRGBA) pipeline.TextNode {
	return pipeline.TextNode{
		X:        line.X,
		Baseline: line.Baseline,
		Text:     line.Text,
		Family:   fonts.Family(weight),
		Weight:   weight,
		Size:     size,
		Color:    c,
	}
}

func opaque(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
