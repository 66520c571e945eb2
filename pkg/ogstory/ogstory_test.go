package ogstory

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/user/ogstory/pkg/config"
	"github.com/user/ogstory/pkg/mocks"
	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/stages/fonts"
	"github.com/user/ogstory/pkg/stages/rasterize"
	"github.com/user/ogstory/pkg/stages/sample"
)

func TestConfigBuilder_Defaults(t *testing.T) {
	cfg := NewConfigBuilder().Build()

	if cfg.Timeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %v", cfg.Timeout)
	}
	if cfg.Engine != rasterize.EngineGG || cfg.Sampler != sample.MethodHistogram {
		t.Errorf("unexpected engine/sampler %s %s", cfg.Engine, cfg.Sampler)
	}
	if cfg.FontFallback != fonts.FallbackNone || cfg.FontBaseURL != fonts.DefaultBaseURL {
		t.Errorf("unexpected font settings %s %s", cfg.FontFallback, cfg.FontBaseURL)
	}
	if cfg.Theme != pipeline.DefaultStoryTheme() {
		t.Error("expected default theme")
	}
}

func TestConfigBuilder_Constraints(t *testing.T) {
	cfg := NewConfigBuilder().
		WithTimeout(-1).
		WithMaxBytes(0).
		WithMaxPixels(-5).
		WithTheme(pipeline.StoryTheme{}).
		Build()

	if cfg.Timeout != 15*time.Second || cfg.MaxBytes != 20<<20 {
		t.Errorf("expected defaults restored, got %v %d", cfg.Timeout, cfg.MaxBytes)
	}
	if cfg.MaxPixels != 50_000_000 {
		t.Errorf("expected default pixel budget, got %d", cfg.MaxPixels)
	}
	if cfg.Theme != pipeline.DefaultStoryTheme() {
		t.Error("expected zero theme to be replaced")
	}
}

func TestConfigBuilder_With(t *testing.T) {
	cfg := NewConfigBuilder().
		WithEngine(rasterize.EngineBrowser).
		WithSampler(sample.MethodKMeans).
		WithFontFallback(fonts.FallbackLocal).
		WithFontDir("/fonts").
		WithPanelColor(color.RGBA{R: 1, G: 2, B: 3, A: 255}).
		WithDebugDir("/tmp/debug").
		WithDebugPerRun(true).
		WithMaxPixels(1000).
		Build()

	if cfg.Engine != rasterize.EngineBrowser || cfg.Sampler != sample.MethodKMeans {
		t.Errorf("unexpected engine/sampler %s %s", cfg.Engine, cfg.Sampler)
	}
	if cfg.FontFallback != fonts.FallbackLocal || cfg.FontDir != "/fonts" {
		t.Errorf("unexpected fonts %s %s", cfg.FontFallback, cfg.FontDir)
	}
	if cfg.Theme.PanelColor != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Errorf("unexpected panel color %+v", cfg.Theme.PanelColor)
	}
	if cfg.Theme.TitleColor != pipeline.DefaultStoryTheme().TitleColor {
		t.Error("expected other colors untouched")
	}
	if cfg.DebugDir != "/tmp/debug" || !cfg.DebugPerRun {
		t.Errorf("unexpected debug settings %q %v", cfg.DebugDir, cfg.DebugPerRun)
	}
	if cfg.MaxPixels != 1000 {
		t.Errorf("unexpected pixel budget %d", cfg.MaxPixels)
	}
}

func TestFromFileConfig(t *testing.T) {
	fc := config.Defaults()
	fc.HTTP.TimeoutMs = 2500
	fc.Sampler.Method = "kmeans"
	fc.Theme.HostColor = "#112233"
	fc.HTTP.MaxPixels = 4096
	fc.DebugDir = "/var/debug"

	cfg := FromFileConfig(fc)
	if cfg.Timeout != 2500*time.Millisecond || cfg.Sampler != sample.MethodKMeans {
		t.Errorf("unexpected %v %s", cfg.Timeout, cfg.Sampler)
	}
	if cfg.MaxPixels != 4096 {
		t.Errorf("expected pixel budget from file, got %d", cfg.MaxPixels)
	}
	if cfg.Theme.HostColor != (color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 255}) {
		t.Errorf("unexpected host color %+v", cfg.Theme.HostColor)
	}
	if cfg.DebugDir != "" {
		t.Error("expected debug dir to be ignored while debug is off")
	}

	fc.Debug = true
	if FromFileConfig(fc).DebugDir != "/var/debug" {
		t.Error("expected debug dir when debug is on")
	}
}

func TestGenerator_Generate(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 30))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+2], img.Pix[i+3] = 255, 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	fetcher := mocks.NewFetcher()
	fetcher.Serve("https://example.com/page", "text/html",
		[]byte(`<meta property="og:title" content="Blue"><meta property="og:image" content="https://cdn.example.com/blue.png">`))
	fetcher.Serve("https://cdn.example.com/blue.png", "image/png", buf.Bytes())

	fs := mocks.NewFileSystem()
	gen := New(NewConfigBuilder().WithFonts(fonts.BundledSet()).Build(),
		WithFetcher(fetcher), WithFileSystem(fs))

	out, err := gen.Generate(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasPrefix(out.DataURI, pipeline.DataURIPrefix) {
		t.Error("expected data URI")
	}
	if fetcher.CallCount() != 2 {
		t.Errorf("expected page and image fetches only, got %v", fetcher.Calls)
	}

	result, err := gen.Run(context.Background(), "https://example.com/page", "/out/story.png")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Metadata.Title != "Blue" || result.Gradient.Start.RGBA().B < 240 {
		t.Errorf("unexpected result %+v", result.Gradient.Start)
	}
	if _, ok := fs.GetFile("/out/story.png"); !ok {
		t.Error("expected output file")
	}
}

func TestGenerator_DebugDir(t *testing.T) {
	fetcher := mocks.NewFetcher()
	fetcher.Serve("https://example.com/", "text/html", []byte(`<meta property="og:image" content="/i.png">`))

	fs := mocks.NewFileSystem()
	gen := New(NewConfigBuilder().WithFonts(fonts.BundledSet()).WithDebugDir("/debug").Build(),
		WithFetcher(fetcher), WithFileSystem(fs))

	_, err := gen.Generate(context.Background(), "https://example.com/")
	if pipeline.KindOf(err) != pipeline.KindFetch {
		t.Fatalf("expected image fetch failure, got %v", err)
	}
	if _, ok := fs.GetFile("/debug/metadata.json"); !ok {
		t.Error("expected metadata to be saved before the failure")
	}
}

func TestGenerator_PixelBudget(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 100, 100))); err != nil {
		t.Fatal(err)
	}
	fetcher := mocks.NewFetcher()
	fetcher.Serve("https://example.com/", "text/html", []byte(`<meta property="og:image" content="/i.png">`))
	fetcher.Serve("https://example.com/i.png", "image/png", buf.Bytes())

	gen := New(NewConfigBuilder().WithFonts(fonts.BundledSet()).WithMaxPixels(9999).Build(),
		WithFetcher(fetcher), WithFileSystem(mocks.NewFileSystem()))

	_, err := gen.Generate(context.Background(), "https://example.com/")
	if pipeline.KindOf(err) != pipeline.KindParse {
		t.Fatalf("expected parse error for an image over the budget, got %v", err)
	}
}

func TestGenerator_DebugPerRun(t *testing.T) {
	fetcher := mocks.NewFetcher()
	fetcher.Serve("https://example.com/", "text/html", []byte(`<meta property="og:image" content="/i.png">`))

	fs := mocks.NewFileSystem()
	gen := New(NewConfigBuilder().
		WithFonts(fonts.BundledSet()).
		WithDebugDir("/debug").
		WithDebugPerRun(true).
		Build(),
		WithFetcher(fetcher), WithFileSystem(fs))

	for i := 0; i < 2; i++ {
		if _, err := gen.Generate(context.Background(), "https://example.com/"); err == nil {
			t.Fatal("expected image fetch failure")
		}
	}

	dirs := map[string]bool{}
	for path := range fs.GetAllFiles() {
		if strings.HasPrefix(path, "/debug/") && strings.HasSuffix(path, "/metadata.json") {
			dirs[strings.TrimSuffix(path, "/metadata.json")] = true
		}
	}
	if len(dirs) != 2 {
		t.Errorf("expected one debug directory per run, got %v", dirs)
	}
	if _, ok := fs.GetFile("/debug/metadata.json"); ok {
		t.Error("expected no shared metadata file")
	}
}
