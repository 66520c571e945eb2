// Package svgdoc serializes a pipeline.Document to SVG, with fonts and
// images embedded as data URIs, and wraps it in an HTML page for browser
// rasterization.
package svgdoc

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"github.com/user/ogstory/pkg/pipeline"
)

type svgVars struct {
	Width     int
	Height    int
	FontCSS   template.CSS
	Gradients []gradientView
	Filters   []filterView
	Clips     []clipView
	Masks     []maskView
	Nodes     []nodeView
}

type gradientView struct {
	ID             string
	X1, Y1, X2, Y2 string
	Stops          []stopView
}

type stopView struct {
	Offset  string
	Color   string
	Opacity string
}

type filterView struct {
	ID     string
	StdDev string
}

type clipView struct {
	ID                  string
	X, Y, Width, Height string
	Radius              string
}

// maskView hides a rounded rect from an element painted over the whole
// canvas.
type maskView struct {
	ID            string
	Width, Height int
	X, Y, W, H    string
	Radius        string
}

// nodeView is one element in paint order. Exactly one of the pointer
// fields is set.
type nodeView struct {
	Rect  *rectView
	Image *imageView
	Text  *textView
	Group *groupView
}

type rectView struct {
	X, Y, Width, Height string
	Radius              string
	Fill                string
	FillOpacity         string
	Stroke              string
	StrokeOpacity       string
	StrokeWidth         string
	Filter              string
	Mask                string
}

type imageView struct {
	X, Y, Width, Height string
	Href                template.URL
}

type textView struct {
	X, Y        string
	Family      string
	Weight      int
	Size        string
	Fill        string
	FillOpacity string
	Text        string
}

type groupView struct {
	ClipID string
	Nodes  []nodeView
}

// Render serializes doc as a standalone SVG document.
func Render(doc pipeline.Document) (string, error) {
	b := &builder{width: doc.Width, height: doc.Height}
	vars := svgVars{
		Width:  doc.Width,
		Height: doc.Height,
	}

	css, err := fontFaceCSS(doc.Fonts)
	if err != nil {
		return "", err
	}
	vars.FontCSS = css

	nodes, err := b.nodes(doc.Nodes)
	if err != nil {
		return "", err
	}
	vars.Nodes = nodes
	vars.Gradients = b.gradients
	vars.Filters = b.filters
	vars.Clips = b.clips
	vars.Masks = b.masks

	var buf bytes.Buffer
	if err := svgTemplate.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("execute svg template: %w", err)
	}
	return buf.String(), nil
}

// RenderHTML returns an HTML page that shows the SVG form of doc at its
// native size with no margins.
func RenderHTML(doc pipeline.Document) (string, error) {
	svg, err := Render(doc)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, struct {
		Width, Height int
		SVG           template.HTML
	}{doc.Width, doc.Height, template.HTML(svg)}); err != nil {
		return "", fmt.Errorf("execute html template: %w", err)
	}
	return buf.String(), nil
}

// builder collects the <defs> entries referenced by nodes.
type builder struct {
	width     int
	height    int
	gradients []gradientView
	filters   []filterView
	clips     []clipView
	masks     []maskView
}

func (b *builder) nodes(nodes []pipeline.Node) ([]nodeView, error) {
	var out []nodeView
	for _, n := range nodes {
		switch n := n.(type) {
		case pipeline.RectNode:
			out = append(out, b.rect(n)...)
		case pipeline.ClipNode:
			id := fmt.Sprintf("clip%d", len(b.clips))
			b.clips = append(b.clips, clipView{
				ID: id,
				X:  num(n.X), Y: num(n.Y), Width: num(n.Width), Height: num(n.Height),
				Radius: num(n.Radius),
			})
			children, err := b.nodes(n.Children)
			if err != nil {
				return nil, err
			}
			out = append(out, nodeView{Group: &groupView{ClipID: id, Nodes: children}})
		case pipeline.ImageNode:
			href, err := imageHref(n)
			if err != nil {
				return nil, err
			}
			out = append(out, nodeView{Image: &imageView{
				X: num(n.X), Y: num(n.Y), Width: num(n.Width), Height: num(n.Height),
				Href: href,
			}})
		case pipeline.TextNode:
			out = append(out, nodeView{Text: &textView{
				X:           num(n.X),
				Y:           num(n.Baseline),
				Family:      n.Family,
				Weight:      n.Weight,
				Size:        num(n.Size),
				Fill:        rgb(n.Color),
				FillOpacity: opacity(n.Color),
				Text:        n.Text,
			}})
		default:
			return nil, fmt.Errorf("unsupported node %T", n)
		}
	}
	return out, nil
}

func (b *builder) rect(n pipeline.RectNode) []nodeView {
	var out []nodeView

	if s := n.Shadow; s != nil && s.Color.A > 0 {
		id := fmt.Sprintf("shadow%d", len(b.filters))
		b.filters = append(b.filters, filterView{ID: id, StdDev: num(s.Blur / 2)})
		// The shadow never shows through the rect it belongs to.
		maskID := fmt.Sprintf("knockout%d", len(b.masks))
		b.masks = append(b.masks, maskView{
			ID: maskID, Width: b.width, Height: b.height,
			X: num(n.X), Y: num(n.Y), W: num(n.Width), H: num(n.Height),
			Radius: num(n.Radius),
		})
		out = append(out, nodeView{Rect: &rectView{
			X:           num(n.X + s.OffsetX - s.Spread),
			Y:           num(n.Y + s.OffsetY - s.Spread),
			Width:       num(n.Width + 2*s.Spread),
			Height:      num(n.Height + 2*s.Spread),
			Radius:      num(max(0, n.Radius+s.Spread)),
			Fill:        rgb(s.Color),
			FillOpacity: opacity(s.Color),
			Filter:      "url(#" + id + ")",
			Mask:        "url(#" + maskID + ")",
		}})
	}

	v := &rectView{
		X: num(n.X), Y: num(n.Y), Width: num(n.Width), Height: num(n.Height),
		Radius: num(n.Radius),
		Fill:   "none",
	}
	switch {
	case n.Fill.Gradient != nil:
		id := fmt.Sprintf("grad%d", len(b.gradients))
		g := n.Fill.Gradient
		gv := gradientView{ID: id, X1: num(g.X0), Y1: num(g.Y0), X2: num(g.X1), Y2: num(g.Y1)}
		for _, stop := range g.Stops {
			gv.Stops = append(gv.Stops, stopView{Offset: num(stop.Offset), Color: rgb(stop.Color), Opacity: opacity(stop.Color)})
		}
		b.gradients = append(b.gradients, gv)
		v.Fill = "url(#" + id + ")"
	case n.Fill.Color.A > 0:
		v.Fill = rgb(n.Fill.Color)
		v.FillOpacity = opacity(n.Fill.Color)
	}
	if n.StrokeWidth > 0 && n.Stroke.A > 0 {
		v.Stroke = rgb(n.Stroke)
		v.StrokeOpacity = opacity(n.Stroke)
		v.StrokeWidth = num(n.StrokeWidth)
	}
	if v.Fill == "none" && v.Stroke == "" {
		return out
	}
	return append(out, nodeView{Rect: v})
}

func imageHref(n pipeline.ImageNode) (template.URL, error) {
	data, mediaType := n.Data, n.MediaType
	if len(data) == 0 || !strings.HasPrefix(mediaType, "image/") {
		if n.Image == nil {
			return "", fmt.Errorf("image node has no data")
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, n.Image); err != nil {
			return "", fmt.Errorf("encode embedded image: %w", err)
		}
		data, mediaType = buf.Bytes(), "image/png"
	}
	return template.URL("data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)), nil
}

// fontFaceCSS declares every font as an @font-face rule with inline data.
func fontFaceCSS(fonts pipeline.FontSet) (template.CSS, error) {
	var sb strings.Builder
	for _, f := range fonts.Sorted() {
		if strings.ContainsAny(f.Family, `"\<>`) {
			return "", fmt.Errorf("invalid font family %q", f.Family)
		}
		style := f.Style
		if style == "" {
			style = "normal"
		}
		mime, format := "font/ttf", "truetype"
		if bytes.HasPrefix(f.Data, []byte("OTTO")) {
			mime, format = "font/otf", "opentype"
		}
		fmt.Fprintf(&sb, "@font-face{font-family:\"%s\";font-style:%s;font-weight:%d;src:url(data:%s;base64,%s) format(\"%s\");}",
			f.Family, style, f.Weight, mime, base64.StdEncoding.EncodeToString(f.Data), format)
	}
	return template.CSS(sb.String()), nil
}

// num formats a coordinate with at most three decimals.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func rgb(c color.NRGBA) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// opacity returns "" for opaque colors so the attribute is omitted.
func opacity(c color.NRGBA) string {
	if c.A == 255 {
		return ""
	}
	return num(float64(c.A) / 255)
}

var svgTemplate = template.Must(template.New("svg").Parse(svgSource))

var htmlTemplate = template.Must(template.New("html").Parse(htmlSource))

const svgSource = `{{define "nodes"}}{{range .}}{{with .Rect}}<rect x="{{.X}}" y="{{.Y}}" width="{{.Width}}" height="{{.Height}}"{{if ne .Radius "0"}} rx="{{.Radius}}"{{end}} fill="{{.Fill}}"{{if .FillOpacity}} fill-opacity="{{.FillOpacity}}"{{end}}{{if .Stroke}} stroke="{{.Stroke}}" stroke-width="{{.StrokeWidth}}"{{if .StrokeOpacity}} stroke-opacity="{{.StrokeOpacity}}"{{end}}{{end}}{{if .Filter}} filter="{{.Filter}}"{{end}}{{if .Mask}} mask="{{.Mask}}"{{end}}/>
{{end}}{{with .Image}}<image x="{{.X}}" y="{{.Y}}" width="{{.Width}}" height="{{.Height}}" preserveAspectRatio="none" href="{{.Href}}"/>
{{end}}{{with .Text}}<text x="{{.X}}" y="{{.Y}}" font-family="{{.Family}}" font-weight="{{.Weight}}" font-size="{{.Size}}" fill="{{.Fill}}"{{if .FillOpacity}} fill-opacity="{{.FillOpacity}}"{{end}} xml:space="preserve">{{.Text}}</text>
{{end}}{{with .Group}}<g clip-path="url(#{{.ClipID}})">
{{template "nodes" .Nodes}}</g>
{{end}}{{end}}{{end}}<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<defs>
{{if .FontCSS}}<style>{{.FontCSS}}</style>
{{end}}{{range .Gradients}}<linearGradient id="{{.ID}}" gradientUnits="userSpaceOnUse" x1="{{.X1}}" y1="{{.Y1}}" x2="{{.X2}}" y2="{{.Y2}}">{{range .Stops}}<stop offset="{{.Offset}}" stop-color="{{.Color}}"{{if .Opacity}} stop-opacity="{{.Opacity}}"{{end}}/>{{end}}</linearGradient>
{{end}}{{range .Filters}}<filter id="{{.ID}}" x="-50%" y="-50%" width="200%" height="200%"><feGaussianBlur stdDeviation="{{.StdDev}}"/></filter>
{{end}}{{range .Masks}}<mask id="{{.ID}}" maskUnits="userSpaceOnUse" x="0" y="0" width="{{.Width}}" height="{{.Height}}"><rect width="{{.Width}}" height="{{.Height}}" fill="white"/><rect x="{{.X}}" y="{{.Y}}" width="{{.W}}" height="{{.H}}" rx="{{.Radius}}" fill="black"/></mask>
{{end}}{{range .Clips}}<clipPath id="{{.ID}}"><rect x="{{.X}}" y="{{.Y}}" width="{{.Width}}" height="{{.Height}}" rx="{{.Radius}}"/></clipPath>
{{end}}</defs>
{{template "nodes" .Nodes}}</svg>
`

const htmlSource = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <style>
      html, body {
        margin: 0;
        padding: 0;
        overflow: hidden;
        width: {{.Width}}px;
        height: {{.Height}}px;
      }
      svg {
        display: block;
      }
    </style>
  </head>
  <body>{{.SVG}}</body>
</html>`
