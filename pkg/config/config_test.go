package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/stages/fonts"
	"github.com/user/ogstory/pkg/stages/rasterize"
	"github.com/user/ogstory/pkg/stages/sample"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}

	if got := cfg.HTTPOptions().Timeout; got != 15*time.Second {
		t.Errorf("expected 15s timeout, got %v", got)
	}
	if cfg.SamplerMethod() != sample.MethodHistogram {
		t.Errorf("expected histogram sampler, got %s", cfg.SamplerMethod())
	}
	if cfg.Engine() != rasterize.EngineGG {
		t.Errorf("expected gg engine, got %s", cfg.Engine())
	}
	if opts := cfg.FontsOptions(); opts.Fallback != fonts.FallbackNone || opts.BaseURL != fonts.DefaultBaseURL {
		t.Errorf("unexpected font options %+v", opts)
	}
	theme, err := cfg.StoryTheme()
	if err != nil || theme != pipeline.DefaultStoryTheme() {
		t.Errorf("expected default theme, got %+v %v", theme, err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ogstory.yaml")
	data := `
http:
  timeout_ms: 5000
  max_pixels: 1000000
fonts:
  fallback: bundled
sampler:
  method: kmeans
rasterizer:
  engine: browser
theme:
  panel_color: "#101010"
  border_color: "#00000033"
server:
  addr: ":9090"
log_level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.HTTP.TimeoutMs != 5000 {
		t.Errorf("expected timeout override, got %d", cfg.HTTP.TimeoutMs)
	}
	if cfg.HTTP.MaxBytes != Defaults().HTTP.MaxBytes {
		t.Error("expected unset values to keep defaults")
	}
	if cfg.HTTP.MaxPixels != 1000000 {
		t.Errorf("expected max_pixels override, got %d", cfg.HTTP.MaxPixels)
	}
	if cfg.SamplerMethod() != sample.MethodKMeans || cfg.Engine() != rasterize.EngineBrowser {
		t.Errorf("unexpected sampler/engine %s %s", cfg.SamplerMethod(), cfg.Engine())
	}
	if cfg.FontsOptions().Fallback != fonts.FallbackBundled {
		t.Error("expected bundled fallback")
	}
	if cfg.Server.Addr != ":9090" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected server/log settings %+v %s", cfg.Server, cfg.LogLevel)
	}

	theme, err := cfg.StoryTheme()
	if err != nil {
		t.Fatalf("StoryTheme failed: %v", err)
	}
	if theme.PanelColor != (color.NRGBA{R: 0x10, G: 0x10, B: 0x10, A: 255}) {
		t.Errorf("unexpected panel color %+v", theme.PanelColor)
	}
	if theme.BorderColor != (color.NRGBA{A: 0x33}) {
		t.Errorf("unexpected border color %+v", theme.BorderColor)
	}
	if theme.TitleColor != pipeline.DefaultStoryTheme().TitleColor {
		t.Error("expected unset theme colors to keep defaults")
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("http: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{"zero timeout", func(c *Config) { c.HTTP.TimeoutMs = 0 }, ErrInvalidTimeout},
		{"zero max bytes", func(c *Config) { c.HTTP.MaxBytes = 0 }, ErrInvalidMaxBytes},
		{"zero max pixels", func(c *Config) { c.HTTP.MaxPixels = 0 }, ErrInvalidMaxPixels},
		{"sampler", func(c *Config) { c.Sampler.Method = "median" }, ErrInvalidSampler},
		{"engine", func(c *Config) { c.Rasterizer.Engine = "cairo" }, ErrInvalidEngine},
		{"fallback", func(c *Config) { c.Fonts.Fallback = "system" }, ErrInvalidFallback},
		{"local without dir", func(c *Config) { c.Fonts.Fallback = "local" }, ErrMissingFontDir},
		{"color", func(c *Config) { c.Theme.HostColor = "blue" }, ErrInvalidColor},
		{"rate limit", func(c *Config) { c.Server.RateLimit = -1 }, ErrInvalidRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#08090A", color.NRGBA{R: 8, G: 9, B: 10, A: 255}, false},
		{"97a1a9", color.NRGBA{R: 0x97, G: 0xA1, B: 0xA9, A: 255}, false},
		{"#0000001a", color.NRGBA{A: 26}, false},
		{"", color.NRGBA{}, true},
		{"#fff", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
