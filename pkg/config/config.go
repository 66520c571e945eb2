// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/ogstory/pkg/adapters/ggrenderer"
	"github.com/user/ogstory/pkg/adapters/httpfetch"
	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/stages/fonts"
	"github.com/user/ogstory/pkg/stages/rasterize"
	"github.com/user/ogstory/pkg/stages/sample"
)

// Validation errors.
var (
	ErrInvalidTimeout   = errors.New("timeout must be positive")
	ErrInvalidMaxBytes  = errors.New("max_bytes must be positive")
	ErrInvalidMaxPixels = errors.New("max_pixels must be positive")
	ErrInvalidSampler   = errors.New("invalid sampler method")
	ErrInvalidEngine    = errors.New("invalid rasterizer engine")
	ErrInvalidFallback  = errors.New("invalid font fallback")
	ErrMissingFontDir   = errors.New("fonts.local_dir is required with the local fallback")
	ErrInvalidColor     = errors.New("invalid color")
	ErrInvalidRateLimit = errors.New("rate limit must not be negative")
)

// Config represents the full configuration for ogstory.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Fonts      FontsConfig      `yaml:"fonts"`
	Sampler    SamplerConfig    `yaml:"sampler"`
	Rasterizer RasterizerConfig `yaml:"rasterizer"`
	Theme      ThemeConfig      `yaml:"theme"`
	Server     ServerConfig     `yaml:"server"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`

	LogLevel string `yaml:"log_level"`
}

// HTTPConfig controls outbound fetches.
type HTTPConfig struct {
	TimeoutMs int    `yaml:"timeout_ms"`
	UserAgent string `yaml:"user_agent"`
	MaxBytes  int64  `yaml:"max_bytes"`
	MaxPixels int64  `yaml:"max_pixels"` // largest decoded og:image, width x height
}

// FontsConfig controls font loading.
type FontsConfig struct {
	CDNBaseURL string `yaml:"cdn_base_url"`
	Fallback   string `yaml:"fallback"`
	LocalDir   string `yaml:"local_dir"`
}

// SamplerConfig selects the dominant color estimator.
type SamplerConfig struct {
	Method string `yaml:"method"`
}

// RasterizerConfig selects the rasterizer engine.
type RasterizerConfig struct {
	Engine     string `yaml:"engine"`
	ChromePath string `yaml:"chrome_path"`
}

// ThemeConfig overrides the story card colors. Empty values keep the default.
type ThemeConfig struct {
	PanelColor       string `yaml:"panel_color"`
	TitleColor       string `yaml:"title_color"`
	DescriptionColor string `yaml:"description_color"`
	HostColor        string `yaml:"host_color"`
	BorderColor      string `yaml:"border_color"`
	ShadowColor      string `yaml:"shadow_color"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second per client, 0 disables
	Burst     int     `yaml:"burst"`
	BodyLimit string  `yaml:"body_limit"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			TimeoutMs: 15000,
			UserAgent: httpfetch.DefaultUserAgent,
			MaxBytes:  20 << 20,
			MaxPixels: ggrenderer.DefaultMaxPixels,
		},
		Fonts: FontsConfig{
			CDNBaseURL: fonts.DefaultBaseURL,
			Fallback:   string(fonts.FallbackNone),
		},
		Sampler: SamplerConfig{
			Method: string(sample.MethodHistogram),
		},
		Rasterizer: RasterizerConfig{
			Engine: string(rasterize.EngineGG),
		},
		Server: ServerConfig{
			Addr:      ":8080",
			RateLimit: 0,
			Burst:     5,
			BodyLimit: "16K",
		},

		// Debug
		DebugDir: "./debug",

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.HTTP.TimeoutMs <= 0 {
		return fmt.Errorf("http.timeout_ms=%d: %w", c.HTTP.TimeoutMs, ErrInvalidTimeout)
	}
	if c.HTTP.MaxBytes <= 0 {
		return fmt.Errorf("http.max_bytes=%d: %w", c.HTTP.MaxBytes, ErrInvalidMaxBytes)
	}
	if c.HTTP.MaxPixels <= 0 {
		return fmt.Errorf("http.max_pixels=%d: %w", c.HTTP.MaxPixels, ErrInvalidMaxPixels)
	}
	if _, err := sample.ParseMethod(c.Sampler.Method); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSampler, err)
	}
	if _, err := rasterize.ParseEngine(c.Rasterizer.Engine); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEngine, err)
	}
	fallback, err := fonts.ParseFallback(c.Fonts.Fallback)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFallback, err)
	}
	if fallback == fonts.FallbackLocal && c.Fonts.LocalDir == "" {
		return ErrMissingFontDir
	}
	if _, err := c.StoryTheme(); err != nil {
		return err
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// HTTPOptions returns the fetcher options.
func (c Config) HTTPOptions() httpfetch.Options {
	return httpfetch.Options{
		Timeout:   time.Duration(c.HTTP.TimeoutMs) * time.Millisecond,
		UserAgent: c.HTTP.UserAgent,
		MaxBytes:  c.HTTP.MaxBytes,
	}
}

// FontsOptions returns the fonts stage options. Call Validate first.
func (c Config) FontsOptions() fonts.Options {
	fallback, _ := fonts.ParseFallback(c.Fonts.Fallback)
	return fonts.Options{
		BaseURL:  c.Fonts.CDNBaseURL,
		Fallback: fallback,
		LocalDir: c.Fonts.LocalDir,
	}
}

// SamplerMethod returns the sampler method. Call Validate first.
func (c Config) SamplerMethod() sample.Method {
	m, _ := sample.ParseMethod(c.Sampler.Method)
	return m
}

// Engine returns the rasterizer engine. Call Validate first.
func (c Config) Engine() rasterize.Engine {
	e, _ := rasterize.ParseEngine(c.Rasterizer.Engine)
	return e
}

// StoryTheme returns the default theme with the configured overrides.
func (c Config) StoryTheme() (pipeline.StoryTheme, error) {
	theme := pipeline.DefaultStoryTheme()
	overrides := []struct {
		name  string
		value string
		dst   *color.NRGBA
	}{
		{"theme.panel_color", c.Theme.PanelColor, &theme.PanelColor},
		{"theme.title_color", c.Theme.TitleColor, &theme.TitleColor},
		{"theme.description_color", c.Theme.DescriptionColor, &theme.DescriptionColor},
		{"theme.host_color", c.Theme.HostColor, &theme.HostColor},
		{"theme.border_color", c.Theme.BorderColor, &theme.BorderColor},
		{"theme.shadow_color", c.Theme.ShadowColor, &theme.ShadowColor},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		col, err := ParseColor(o.value)
		if err != nil {
			return theme, fmt.Errorf("%s: %w", o.name, err)
		}
		*o.dst = col
	}
	return theme, nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa" (the "#" is optional).
func ParseColor(hex string) (color.NRGBA, error) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w %q", ErrInvalidColor, hex)
	}

	var ch [4]uint8
	ch[3] = 255
	for i := 0; i < len(hex); i += 2 {
		hi, ok1 := hexValue(hex[i])
		lo, ok2 := hexValue(hex[i+1])
		if !ok1 || !ok2 {
			return color.NRGBA{}, fmt.Errorf("%w %q", ErrInvalidColor, hex)
		}
		ch[i/2] = hi<<4 | lo
	}

	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
