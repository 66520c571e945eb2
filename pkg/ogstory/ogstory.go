// Package ogstory provides a high-level API for turning a web page's Open
// Graph data into a 1080x1920 story image.
package ogstory

import (
	"context"
	"path/filepath"

	"github.com/rs/xid"

	"github.com/user/ogstory/pkg/adapters/capturehtml"
	"github.com/user/ogstory/pkg/adapters/filesink"
	"github.com/user/ogstory/pkg/adapters/ggrenderer"
	"github.com/user/ogstory/pkg/adapters/httpfetch"
	"github.com/user/ogstory/pkg/adapters/logger"
	"github.com/user/ogstory/pkg/adapters/nullsink"
	"github.com/user/ogstory/pkg/adapters/osfilesystem"
	"github.com/user/ogstory/pkg/orchestrator"
	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/ports"
	"github.com/user/ogstory/pkg/stages/extract"
	"github.com/user/ogstory/pkg/stages/fonts"
	"github.com/user/ogstory/pkg/stages/gradient"
	"github.com/user/ogstory/pkg/stages/layout"
	"github.com/user/ogstory/pkg/stages/rasterize"
	"github.com/user/ogstory/pkg/stages/sample"
)

// Generator produces story images. It is safe for concurrent use.
type Generator struct {
	config   Config
	opts     options
	renderer *ggrenderer.Renderer
	orch     *orchestrator.Orchestrator // nil when each run gets its own debug dir
}

// Option customizes the adapters a Generator is built with.
type Option func(*options)

type options struct {
	logger   ports.Logger
	fetcher  ports.Fetcher
	fs       ports.FileSystem
	capturer ports.HTMLCapturer
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(l ports.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f ports.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithFileSystem replaces the file system used for output and fonts.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(o *options) { o.fs = fs }
}

// WithCapturer replaces the browser used by the browser engine.
func WithCapturer(c ports.HTMLCapturer) Option {
	return func(o *options) { o.capturer = c }
}

// New creates a Generator from cfg.
func New(cfg Config, opts ...Option) *Generator {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewNoop()
	}
	if o.fetcher == nil {
		o.fetcher = httpfetch.New(httpfetch.Options{
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
			MaxBytes:  cfg.MaxBytes,
		})
	}
	if o.fs == nil {
		o.fs = osfilesystem.New()
	}
	if o.capturer == nil && cfg.Engine == rasterize.EngineBrowser {
		o.capturer = capturehtml.New(capturehtml.Options{
			ChromePath: cfg.ChromePath,
			NoSandbox:  cfg.NoSandbox,
		})
	}

	g := &Generator{
		config:   cfg,
		opts:     o,
		renderer: ggrenderer.New(ggrenderer.WithMaxPixels(cfg.MaxPixels)),
	}
	if !cfg.DebugPerRun || cfg.DebugDir == "" {
		g.orch = g.newOrchestrator(cfg.DebugDir)
	}
	return g
}

// newOrchestrator wires the stages. An empty debugDir disables debug output.
func (g *Generator) newOrchestrator(debugDir string) *orchestrator.Orchestrator {
	cfg, o := g.config, g.opts

	var sink ports.DebugSink = nullsink.New()
	if debugDir != "" {
		sink = filesink.New(debugDir, o.fs)
	}

	stages := orchestrator.Stages{
		Extract: extract.NewStage(o.fetcher, sink, o.logger),
		Gradient: gradient.NewStage(
			sample.NewStage(cfg.Sampler, o.fetcher, g.renderer, o.logger),
			sink, o.logger),
		Fonts: fonts.NewStage(fonts.Options{
			BaseURL:  cfg.FontBaseURL,
			Fallback: cfg.FontFallback,
			LocalDir: cfg.FontDir,
		}, o.fetcher, o.fs, o.logger),
		Layout:    layout.NewStage(),
		Rasterize: rasterize.NewStage(cfg.Engine, g.renderer, o.capturer, sink, o.logger),
	}
	return orchestrator.New(stages, o.fs, o.logger)
}

// Generate renders the story image for pageURL.
func (g *Generator) Generate(ctx context.Context, pageURL string) (pipeline.EncodedImage, error) {
	result, err := g.Run(ctx, pageURL, "")
	if err != nil {
		return pipeline.EncodedImage{}, err
	}
	return result.Image, nil
}

// Run renders the story image for pageURL, writes it to outputPath when
// non-empty and returns the full run result.
func (g *Generator) Run(ctx context.Context, pageURL, outputPath string) (orchestrator.RunResult, error) {
	orch := g.orch
	if orch == nil {
		dir := filepath.Join(g.config.DebugDir, xid.New().String())
		g.opts.logger.Debug("Writing debug output to %s", dir)
		orch = g.newOrchestrator(dir)
	}
	return orch.Run(ctx, orchestrator.Config{
		URL:        pageURL,
		OutputPath: outputPath,
		Fonts:      g.config.Fonts,
		Theme:      g.config.Theme,
	})
}

// GenerateOGImage renders the story image for pageURL with the default
// configuration and returns it as a "data:image/png;base64," URI.
func GenerateOGImage(ctx context.Context, pageURL string) (string, error) {
	img, err := New(NewConfigBuilder().Build()).Generate(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return img.DataURI, nil
}
