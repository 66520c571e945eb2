package ggrenderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/user/ogstory/pkg/ports"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func testFace(t *testing.T, size float64) font.Face {
	t.Helper()
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("parse font: %v", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		t.Fatalf("new face: %v", err)
	}
	return face
}

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 100, color.White)
	if canvas == nil {
		t.Fatal("expected canvas to be created")
	}

	img := canvas.ToImage()
	bounds := img.Bounds()

	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("expected 100x100, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeDecodePNG(t *testing.T) {
	r := New()

	img := solidImage(30, 30, color.RGBA{R: 255, A: 255})

	data, err := r.EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	decoded, format, err := r.DecodeImage(data)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if format != "png" {
		t.Errorf("expected png format, got %q", format)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 30 || bounds.Dy() != 30 {
		t.Errorf("expected 30x30, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodePNGIsDeterministic(t *testing.T) {
	r := New()
	img := solidImage(40, 40, color.RGBA{R: 12, G: 200, B: 99, A: 255})

	a, err := r.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("expected identical PNG bytes for identical input")
	}
}

func TestRenderer_DecodeInvalid(t *testing.T) {
	if _, _, err := New().DecodeImage([]byte("not an image")); err == nil {
		t.Error("expected error for invalid data")
	}
}

func TestRenderer_DecodePixelBudget(t *testing.T) {
	data, err := New().EncodePNG(solidImage(20, 20, color.Black))
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := New(WithMaxPixels(400)).DecodeImage(data); err != nil {
		t.Errorf("expected 20x20 to fit a 400 pixel budget, got %v", err)
	}

	_, format, err := New(WithMaxPixels(399)).DecodeImage(data)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
	if format != "png" {
		t.Errorf("expected format from the header, got %q", format)
	}

	if New(WithMaxPixels(0)).maxPixels != DefaultMaxPixels {
		t.Error("expected non-positive budget to keep the default")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()

	resized := r.ResizeImage(image.NewRGBA(image.Rect(0, 0, 100, 100)), 50, 20)

	bounds := resized.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 20 {
		t.Errorf("expected 50x20, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_BlurImage(t *testing.T) {
	r := New()

	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 15; y < 25; y++ {
		for x := 15; x < 25; x++ {
			img.Set(x, y, color.NRGBA{A: 255})
		}
	}

	if got := r.BlurImage(img, 0); got != image.Image(img) {
		t.Error("expected zero sigma to return the input")
	}

	blurred := r.BlurImage(img, 3)
	if blurred.Bounds() != img.Bounds() {
		t.Fatalf("expected bounds to be preserved, got %v", blurred.Bounds())
	}
	if _, _, _, a := blurred.At(12, 20).RGBA(); a == 0 {
		t.Error("expected blur to spread alpha outside the square")
	}
	if _, _, _, a := blurred.At(2, 2).RGBA(); a != 0 {
		t.Error("expected far corner to stay transparent")
	}
}

func TestCanvas_FillRoundedRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.FillRoundedRect(10, 10, 60, 60, 20, color.RGBA{R: 255, A: 255})

	img := canvas.ToImage()

	red, g, _, _ := img.At(40, 40).RGBA()
	if red>>8 != 255 || g>>8 != 0 {
		t.Error("expected red pixel inside rectangle")
	}
	// The corner lies outside the rounded shape.
	_, g, _, _ = img.At(11, 11).RGBA()
	if g>>8 != 255 {
		t.Error("expected white pixel in the rounded-off corner")
	}
}

func TestCanvas_FillRoundedRectGradient(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(10, 100, color.White)

	canvas.FillRoundedRectGradient(0, 0, 10, 100, 0, ports.Gradient{
		X0: 0, Y0: 0, X1: 0, Y1: 100,
		Stops: []ports.GradientStop{
			{Offset: 0, Color: color.RGBA{R: 255, A: 255}},
			{Offset: 1, Color: color.RGBA{B: 255, A: 255}},
		},
	})

	img := canvas.ToImage()
	topR, _, topB, _ := img.At(5, 1).RGBA()
	botR, _, botB, _ := img.At(5, 98).RGBA()
	if topR <= topB {
		t.Error("expected top of gradient to be red")
	}
	if botB <= botR {
		t.Error("expected bottom of gradient to be blue")
	}
}

func TestCanvas_ClipRoundedRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.ClipRoundedRect(20, 20, 40, 40, 0)
	canvas.FillRoundedRect(0, 0, 100, 100, 0, color.Black)
	canvas.ResetClip()

	img := canvas.ToImage()
	if red, _, _, _ := img.At(30, 30).RGBA(); red != 0 {
		t.Error("expected black pixel inside clip")
	}
	if red, _, _, _ := img.At(80, 80).RGBA(); red>>8 != 255 {
		t.Error("expected white pixel outside clip")
	}
}

func TestCanvas_ClipOutsideRoundedRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.ClipOutsideRoundedRect(20, 20, 40, 40, 8)
	canvas.DrawImageScaled(solidImage(10, 10, color.Black), 0, 0, 100, 100)
	canvas.ResetClip()

	img := canvas.ToImage()
	if red, _, _, _ := img.At(40, 40).RGBA(); red>>8 != 255 {
		t.Error("expected white pixel inside the excluded rect")
	}
	if red, _, _, _ := img.At(80, 80).RGBA(); red != 0 {
		t.Error("expected black pixel outside the excluded rect")
	}

	canvas.FillRoundedRect(0, 0, 100, 100, 0, color.Black)
	if red, _, _, _ := canvas.ToImage().At(40, 40).RGBA(); red != 0 {
		t.Error("expected ResetClip to lift the exclusion")
	}
}

func TestCanvas_StrokeRoundedRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.StrokeRoundedRect(10, 10, 30, 30, 0, color.Black, 2)

	if red, _, _, _ := canvas.ToImage().At(10, 20).RGBA(); red>>8 == 255 {
		t.Error("expected non-white pixel on border")
	}
}

func TestCanvas_DrawImageScaled(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.DrawImageScaled(solidImage(10, 10, color.RGBA{R: 255, A: 255}), 10, 10, 40, 40)

	img := canvas.ToImage()
	if _, g, _, _ := img.At(30, 30).RGBA(); g != 0 {
		t.Error("expected red pixel from scaled image")
	}
	if _, g, _, _ := img.At(60, 60).RGBA(); g>>8 != 255 {
		t.Error("expected white pixel outside scaled image")
	}
}

func TestCanvas_DrawText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 50, color.White)

	style := ports.TextStyle{
		Face:  testFace(t, 24),
		Color: color.Black,
	}

	canvas.DrawText("Hello World", 10, 35, style)

	img := canvas.ToImage().(*image.RGBA)
	dark := false
	for y := 10; y < 40 && !dark; y++ {
		for x := 10; x < 190; x++ {
			if img.RGBAAt(x, y).R < 128 {
				dark = true
				break
			}
		}
	}
	if !dark {
		t.Error("expected text pixels to be drawn")
	}
}
