package sample

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/user/ogstory/pkg/adapters/ggrenderer"
	"github.com/user/ogstory/pkg/adapters/logger"
	"github.com/user/ogstory/pkg/mocks"
	"github.com/user/ogstory/pkg/pipeline"
)

func fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// pngHeader returns a PNG that declares w x h RGBA pixels but carries no
// image data.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(typ string, data []byte) {
		binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(typ), data...)
		buf.Write(body)
		binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8], ihdr[9] = 8, 6
	chunk("IHDR", ihdr)
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"", MethodHistogram, false},
		{"histogram", MethodHistogram, false},
		{"kmeans", MethodKMeans, false},
		{"median", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMethod(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestHistogram(t *testing.T) {
	tests := []struct {
		name  string
		setup func(img *image.NRGBA)
		want  color.RGBA
	}{
		{
			name:  "solid red",
			setup: func(img *image.NRGBA) { fill(img, img.Bounds(), color.NRGBA{R: 255, A: 255}) },
			want:  color.RGBA{R: 248, G: 8, B: 8, A: 255},
		},
		{
			name: "majority wins",
			setup: func(img *image.NRGBA) {
				fill(img, img.Bounds(), color.NRGBA{B: 200, A: 255})
				fill(img, image.Rect(0, 0, 10, 3), color.NRGBA{G: 100, A: 255})
			},
			want: color.RGBA{R: 8, G: 8, B: 200, A: 255},
		},
		{
			name: "transparent pixels skipped",
			setup: func(img *image.NRGBA) {
				fill(img, img.Bounds(), color.NRGBA{R: 255, G: 255, B: 255, A: 10})
				fill(img, image.Rect(0, 0, 2, 2), color.NRGBA{G: 255, A: 255})
			},
			want: color.RGBA{R: 8, G: 248, B: 8, A: 255},
		},
		{
			name:  "fully transparent",
			setup: func(img *image.NRGBA) {},
			want:  color.RGBA{R: 8, G: 8, B: 8, A: 255},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
			tt.setup(img)
			if got := Histogram(img); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHistogram_LargeImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3000, 200))
	fill(img, img.Bounds(), color.NRGBA{R: 30, G: 60, B: 90, A: 255})

	got := Histogram(img)
	want := color.RGBA{R: 24, G: 56, B: 88, A: 255}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestStage_Execute(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	fill(img, img.Bounds(), color.NRGBA{R: 255, A: 255})
	data := encodePNG(t, img)

	fetcher := mocks.NewFetcher()
	fetcher.Serve("https://example.com/og.png", "image/png", data)

	for _, method := range []Method{MethodHistogram, MethodKMeans} {
		t.Run(string(method), func(t *testing.T) {
			stage := NewStage(method, fetcher, ggrenderer.New(), logger.NewNoop())
			res, err := stage.Execute(context.Background(), "https://example.com/og.png")
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}

			if res.Base.H > 1 && res.Base.H < 359 {
				t.Errorf("expected red hue, got %v", res.Base.H)
			}
			if res.Base.S < 80 || math.Abs(res.Base.L-50) > 5 {
				t.Errorf("expected saturated mid-light red, got %+v", res.Base)
			}
			if res.Image.Bounds().Dx() != 40 {
				t.Errorf("expected decoded image, got %v", res.Image.Bounds())
			}
			if !bytes.Equal(res.Data, data) || res.MediaType != "image/png" {
				t.Errorf("expected original bytes and media type, got %s", res.MediaType)
			}
		})
	}
}

func TestStage_Errors(t *testing.T) {
	fetcher := mocks.NewFetcher()
	fetcher.Serve("https://example.com/not-an-image", "text/html", []byte("<html></html>"))
	fetcher.Serve("https://example.com/huge.png", "image/png", pngHeader(40000, 40000))
	fetcher.Serve("https://example.com/og.avif", "image/avif",
		[]byte("\x00\x00\x00\x1cftypavif\x00\x00\x00\x00avifmif1miaf"))
	fetcher.Serve("https://example.com/og.svg", "image/svg+xml",
		[]byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"/>`))

	small := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	fetcher.Serve("https://example.com/small.png", "image/png", encodePNG(t, small))

	tests := []struct {
		name     string
		url      string
		renderer *ggrenderer.Renderer
		want     pipeline.Kind
		tooLarge bool
	}{
		{"fetch failure", "https://example.com/missing.png", ggrenderer.New(), pipeline.KindFetch, false},
		{"undecodable", "https://example.com/not-an-image", ggrenderer.New(), pipeline.KindParse, false},
		{"oversized header", "https://example.com/huge.png", ggrenderer.New(), pipeline.KindParse, true},
		{"over configured budget", "https://example.com/small.png", ggrenderer.New(ggrenderer.WithMaxPixels(100)), pipeline.KindParse, true},
		{"avif", "https://example.com/og.avif", ggrenderer.New(), pipeline.KindParse, false},
		{"svg", "https://example.com/og.svg", ggrenderer.New(), pipeline.KindParse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := NewStage(MethodHistogram, fetcher, tt.renderer, logger.NewNoop())
			_, err := stage.Execute(context.Background(), tt.url)
			if kind := pipeline.KindOf(err); kind != tt.want {
				t.Errorf("expected %s, got %s (%v)", tt.want, kind, err)
			}
			if got := errors.Is(err, ggrenderer.ErrImageTooLarge); got != tt.tooLarge {
				t.Errorf("errors.Is(err, ErrImageTooLarge) = %v, want %v (%v)", got, tt.tooLarge, err)
			}
		})
	}
}
