package ogstory

import (
	"image/color"
	"time"

	"github.com/user/ogstory/pkg/adapters/ggrenderer"
	"github.com/user/ogstory/pkg/config"
	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/stages/fonts"
	"github.com/user/ogstory/pkg/stages/rasterize"
	"github.com/user/ogstory/pkg/stages/sample"
)

// Config represents the configuration for story generation.
type Config struct {
	// Fetching
	Timeout   time.Duration // per fetch (default: 15s)
	UserAgent string
	MaxBytes  int64 // largest accepted response body
	MaxPixels int64 // largest decoded og:image, width x height

	// Fonts
	FontBaseURL  string
	FontFallback fonts.Fallback
	FontDir      string           // used with fonts.FallbackLocal
	Fonts        pipeline.FontSet // when set, no fonts are fetched

	// Color sampling
	Sampler sample.Method

	// Rasterization
	Engine     rasterize.Engine
	ChromePath string // browser engine only
	NoSandbox  bool   // browser engine only

	// Style
	Theme pipeline.StoryTheme

	// DebugDir, when set, receives intermediate results.
	DebugDir string
	// DebugPerRun writes each run into its own subdirectory of DebugDir so
	// that concurrent runs do not overwrite each other.
	DebugPerRun bool
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: defaults(),
	}
}

// defaults returns the default configuration.
func defaults() Config {
	return Config{
		Timeout:   15 * time.Second,
		MaxBytes:  20 << 20,
		MaxPixels: ggrenderer.DefaultMaxPixels,

		FontBaseURL:  fonts.DefaultBaseURL,
		FontFallback: fonts.FallbackNone,

		Sampler: sample.MethodHistogram,
		Engine:  rasterize.EngineGG,

		Theme: pipeline.DefaultStoryTheme(),
	}
}

// FromFileConfig converts a validated file configuration.
func FromFileConfig(c config.Config) Config {
	theme, _ := c.StoryTheme()
	cfg := Config{
		Timeout:   c.HTTPOptions().Timeout,
		UserAgent: c.HTTP.UserAgent,
		MaxBytes:  c.HTTP.MaxBytes,
		MaxPixels: c.HTTP.MaxPixels,

		FontBaseURL:  c.Fonts.CDNBaseURL,
		FontFallback: c.FontsOptions().Fallback,
		FontDir:      c.Fonts.LocalDir,

		Sampler:    c.SamplerMethod(),
		Engine:     c.Engine(),
		ChromePath: c.Rasterizer.ChromePath,

		Theme: theme,
	}
	if c.Debug {
		cfg.DebugDir = c.DebugDir
	}
	return cfg
}

// Build returns the final Config, applying constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults().Timeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaults().MaxBytes
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = defaults().MaxPixels
	}
	if cfg.Theme == (pipeline.StoryTheme{}) {
		cfg.Theme = pipeline.DefaultStoryTheme()
	}

	return cfg
}

// WithTimeout sets the per-fetch timeout.
// Non-positive values restore the default.
func (b *ConfigBuilder) WithTimeout(d time.Duration) *ConfigBuilder {
	b.config.Timeout = d
	return b
}

// WithUserAgent sets the User-Agent header for outbound fetches.
func (b *ConfigBuilder) WithUserAgent(ua string) *ConfigBuilder {
	b.config.UserAgent = ua
	return b
}

// WithMaxBytes sets the largest accepted response body.
func (b *ConfigBuilder) WithMaxBytes(n int64) *ConfigBuilder {
	b.config.MaxBytes = n
	return b
}

// WithMaxPixels sets the largest og:image, in pixels, that is decoded.
func (b *ConfigBuilder) WithMaxPixels(n int64) *ConfigBuilder {
	b.config.MaxPixels = n
	return b
}

// WithFontBaseURL sets the directory URL the fonts are fetched from.
func (b *ConfigBuilder) WithFontBaseURL(url string) *ConfigBuilder {
	b.config.FontBaseURL = url
	return b
}

// WithFontFallback sets what happens when the font CDN fails.
func (b *ConfigBuilder) WithFontFallback(f fonts.Fallback) *ConfigBuilder {
	b.config.FontFallback = f
	return b
}

// WithFontDir sets the directory used by the local font fallback.
func (b *ConfigBuilder) WithFontDir(dir string) *ConfigBuilder {
	b.config.FontDir = dir
	return b
}

// WithFonts injects fonts so that none are fetched.
func (b *ConfigBuilder) WithFonts(set pipeline.FontSet) *ConfigBuilder {
	b.config.Fonts = set
	return b
}

// WithSampler sets the dominant color estimator.
func (b *ConfigBuilder) WithSampler(m sample.Method) *ConfigBuilder {
	b.config.Sampler = m
	return b
}

// WithEngine sets the rasterizer engine.
func (b *ConfigBuilder) WithEngine(e rasterize.Engine) *ConfigBuilder {
	b.config.Engine = e
	return b
}

// WithChromePath sets the Chrome executable for the browser engine.
func (b *ConfigBuilder) WithChromePath(path string) *ConfigBuilder {
	b.config.ChromePath = path
	return b
}

// WithNoSandbox disables the Chrome sandbox for the browser engine.
func (b *ConfigBuilder) WithNoSandbox(noSandbox bool) *ConfigBuilder {
	b.config.NoSandbox = noSandbox
	return b
}

// WithTheme replaces the card colors.
func (b *ConfigBuilder) WithTheme(theme pipeline.StoryTheme) *ConfigBuilder {
	b.config.Theme = theme
	return b
}

// WithPanelColor sets the card panel color.
func (b *ConfigBuilder) WithPanelColor(c color.Color) *ConfigBuilder {
	b.config.Theme.PanelColor = color.NRGBAModel.Convert(c).(color.NRGBA)
	return b
}

// WithDebugDir enables debug output into dir.
func (b *ConfigBuilder) WithDebugDir(dir string) *ConfigBuilder {
	b.config.DebugDir = dir
	return b
}

// WithDebugPerRun gives every run its own subdirectory of the debug dir.
func (b *ConfigBuilder) WithDebugPerRun(perRun bool) *ConfigBuilder {
	b.config.DebugPerRun = perRun
	return b
}
