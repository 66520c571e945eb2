// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/ports"
)

// ErrNoImage is returned when the page declares no og:image.
var ErrNoImage = errors.New("page has no og:image")

// Config contains the per-run configuration.
type Config struct {
	// Input
	URL string

	// OutputPath, when set, receives the PNG bytes.
	OutputPath string

	// Fonts, when non-empty, are used as is and the fonts stage is skipped.
	Fonts pipeline.FontSet
	// FontRequests overrides the default font files.
	FontRequests []pipeline.FontRequest

	// Theme overrides the card colors. The zero value selects the default.
	Theme pipeline.StoryTheme
}

// Stages bundles the stages run by the orchestrator.
type Stages struct {
	Extract   pipeline.Stage[string, pipeline.OGMetadata]
	Gradient  pipeline.Stage[string, pipeline.GradientResult]
	Fonts     pipeline.Stage[pipeline.FontsInput, pipeline.FontSet]
	Layout    pipeline.Stage[pipeline.LayoutInput, pipeline.Document]
	Rasterize pipeline.Stage[pipeline.Document, pipeline.EncodedImage]
}

// Orchestrator runs the story pipeline. It holds no per-run state and is
// safe for concurrent use.
type Orchestrator struct {
	stages Stages
	fs     ports.FileSystem
	logger ports.Logger
}

// New creates a new Orchestrator. fs may be nil when no run sets OutputPath.
func New(stages Stages, fs ports.FileSystem, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		stages: stages,
		fs:     fs,
		logger: logger,
	}
}

// Run executes the complete pipeline. Fonts load concurrently with the
// extract and gradient stages; the first failure cancels the other branch.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	started := time.Now()
	o.logger.Info("Generating story for %s", config.URL)

	var (
		meta      pipeline.OGMetadata
		grad      pipeline.GradientResult
		fonts     = config.Fonts
		timing    Timing
		imageURL  string
		fontsTook time.Duration
	)

	g, gctx := errgroup.WithContext(ctx)

	if len(fonts) == 0 {
		g.Go(func() error {
			t := time.Now()
			set, err := o.stages.Fonts.Execute(gctx, pipeline.FontsInput{Requests: config.FontRequests})
			if err != nil {
				o.logger.Error("Failed to load fonts: %s", err)
				return fmt.Errorf("fonts stage: %w", err)
			}
			fonts = set
			fontsTook = time.Since(t)
			o.logger.Info("Loaded %d fonts", len(set))
			return nil
		})
	}

	g.Go(func() error {
		t := time.Now()
		m, err := o.stages.Extract.Execute(gctx, config.URL)
		if err != nil {
			o.logger.Error("Failed to extract metadata: %s", err)
			return fmt.Errorf("extract stage: %w", err)
		}
		meta = m
		timing.Extract = time.Since(t)
		o.logger.Info("Extracted metadata: %s", m.Title)

		imageURL = m.ResolveImage(config.URL)
		if imageURL == "" {
			o.logger.Error("Failed to build gradient: %s", ErrNoImage)
			return fmt.Errorf("gradient stage: %w", pipeline.NewError(pipeline.KindFetch, "resolve image", ErrNoImage))
		}

		t = time.Now()
		gr, err := o.stages.Gradient.Execute(gctx, imageURL)
		if err != nil {
			o.logger.Error("Failed to build gradient: %s", err)
			return fmt.Errorf("gradient stage: %w", err)
		}
		grad = gr
		timing.Gradient = time.Since(t)
		o.logger.Info("Built gradient %s", gr.Gradient.CSS())
		return nil
	})

	if err := g.Wait(); err != nil {
		return RunResult{}, err
	}
	timing.Fonts = fontsTook

	t := time.Now()
	doc, err := o.stages.Layout.Execute(ctx, pipeline.LayoutInput{
		Metadata:       meta,
		Gradient:       grad.Gradient,
		Image:          grad.Sample.Image,
		ImageData:      grad.Sample.Data,
		ImageMediaType: grad.Sample.MediaType,
		Fonts:          fonts,
		Theme:          config.Theme,
	})
	if err != nil {
		o.logger.Error("Failed to lay out story: %s", err)
		return RunResult{}, fmt.Errorf("layout stage: %w", err)
	}
	timing.Layout = time.Since(t)
	o.logger.Info("Laid out %d nodes", len(doc.Nodes))

	t = time.Now()
	encoded, err := o.stages.Rasterize.Execute(ctx, doc)
	if err != nil {
		o.logger.Error("Failed to rasterize story: %s", err)
		return RunResult{}, fmt.Errorf("rasterize stage: %w", err)
	}
	timing.Rasterize = time.Since(t)
	o.logger.Info("Rasterized story: %d bytes", len(encoded.PNG))

	if config.OutputPath != "" {
		if o.fs == nil {
			return RunResult{}, fmt.Errorf("write output: no filesystem configured")
		}
		if err := o.fs.WriteFile(config.OutputPath, encoded.PNG); err != nil {
			o.logger.Error("Failed to write output: %s", err)
			return RunResult{}, fmt.Errorf("write output: %w", err)
		}
	}

	timing.Total = time.Since(started)
	o.logger.Info("Story generated in %d ms", timing.Total.Milliseconds())

	return RunResult{
		PageURL:  config.URL,
		ImageURL: imageURL,
		Metadata: meta,
		Gradient: grad.Gradient,
		Fonts:    fontFamilies(fonts),
		Image:    encoded,
		Width:    doc.Width,
		Height:   doc.Height,
		Timing:   timing,
	}, nil
}

func fontFamilies(fonts pipeline.FontSet) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range fonts.Sorted() {
		if !seen[f.Family] {
			seen[f.Family] = true
			out = append(out, f.Family)
		}
	}
	return out
}

// Timing records how long each stage took. Fonts is zero when fonts were
// injected.
type Timing struct {
	Extract   time.Duration
	Gradient  time.Duration
	Fonts     time.Duration
	Layout    time.Duration
	Rasterize time.Duration
	Total     time.Duration
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	PageURL  string
	ImageURL string
	Metadata pipeline.OGMetadata
	Gradient pipeline.GradientSpec
	Fonts    []string

	Image  pipeline.EncodedImage
	Width  int
	Height int

	Timing Timing
}
