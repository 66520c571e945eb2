// Package fonts implements the font loading stage.
package fonts

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/errgroup"

	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/ports"
)

// DefaultBaseURL is the CDN directory holding the Wanted Sans OTF files.
const DefaultBaseURL = "https://cdn.jsdelivr.net/gh/wanteddev/wanted-sans@v1.0.3/packages/wanted-sans/fonts/otf"

// BundledFamily is the family name reported for the bundled fallback.
const BundledFamily = "Go"

// Fallback selects what happens when the CDN cannot serve a font.
type Fallback string

const (
	// FallbackNone makes a CDN failure fatal.
	FallbackNone Fallback = "none"
	// FallbackLocal reads the same file names from a local directory.
	FallbackLocal Fallback = "local"
	// FallbackBundled uses the Go fonts compiled into the binary.
	FallbackBundled Fallback = "bundled"
)

// ParseFallback parses a fallback name. The empty string selects FallbackNone.
func ParseFallback(s string) (Fallback, error) {
	switch Fallback(s) {
	case "", FallbackNone:
		return FallbackNone, nil
	case FallbackLocal:
		return FallbackLocal, nil
	case FallbackBundled:
		return FallbackBundled, nil
	default:
		return "", fmt.Errorf("unknown font fallback %q (want none, local or bundled)", s)
	}
}

// Options configures font loading.
type Options struct {
	BaseURL  string
	Fallback Fallback
	LocalDir string // used with FallbackLocal
}

// Stage loads the fonts used by the story template.
type Stage struct {
	opts    Options
	fetcher ports.Fetcher
	fs      ports.FileSystem
	logger  ports.Logger
}

// NewStage creates a new fonts stage. fs may be nil unless the fallback is
// FallbackLocal.
func NewStage(opts Options, fetcher ports.Fetcher, fs ports.FileSystem, logger ports.Logger) *Stage {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Fallback == "" {
		opts.Fallback = FallbackNone
	}
	return &Stage{
		opts:    opts,
		fetcher: fetcher,
		fs:      fs,
		logger:  logger.WithComponent("fonts"),
	}
}

// Execute loads every requested font concurrently. The first failure that
// the fallback cannot recover cancels the other requests.
func (s *Stage) Execute(ctx context.Context, input pipeline.FontsInput) (pipeline.FontSet, error) {
	if len(input.Requests) == 0 {
		input = pipeline.DefaultFontsInput()
	}

	set := make(pipeline.FontSet, len(input.Requests))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range input.Requests {
		g.Go(func() error {
			asset, err := s.load(ctx, req)
			if err != nil {
				return err
			}
			set[i] = asset
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return set.Sorted(), nil
}

func (s *Stage) load(ctx context.Context, req pipeline.FontRequest) (pipeline.FontAsset, error) {
	url := strings.TrimRight(s.opts.BaseURL, "/") + "/" + req.File
	res, err := s.fetcher.Fetch(ctx, url, "font/otf,font/ttf,*/*;q=0.5")
	if err == nil {
		s.logger.Debug("Loaded font %s (%d bytes)", req.File, len(res.Body))
		return pipeline.FontAsset{Family: req.Family, Style: req.Style, Weight: req.Weight, Data: res.Body}, nil
	}
	if ctx.Err() != nil || s.opts.Fallback == FallbackNone {
		return pipeline.FontAsset{}, pipeline.NewError(pipeline.KindFetch, "fetch font "+req.File, err)
	}

	s.logger.Warn("Font %s unavailable, using %s fallback: %s", req.File, s.opts.Fallback, err)

	switch s.opts.Fallback {
	case FallbackLocal:
		if s.fs == nil || s.opts.LocalDir == "" {
			return pipeline.FontAsset{}, pipeline.NewError(pipeline.KindFetch, "read font "+req.File,
				fmt.Errorf("no local font directory configured"))
		}
		data, err := s.fs.ReadFile(filepath.Join(s.opts.LocalDir, req.File))
		if err != nil {
			return pipeline.FontAsset{}, pipeline.NewError(pipeline.KindFetch, "read font "+req.File, err)
		}
		return pipeline.FontAsset{Family: req.Family, Style: req.Style, Weight: req.Weight, Data: data}, nil
	default:
		return Bundled(req.Weight), nil
	}
}

// Bundled returns the built-in Go font closest to weight.
func Bundled(weight int) pipeline.FontAsset {
	data := goregular.TTF
	if weight >= pipeline.WeightMedium {
		data = gomedium.TTF
	}
	return pipeline.FontAsset{Family: BundledFamily, Style: "normal", Weight: weight, Data: data}
}

// BundledSet returns the bundled fonts for the template weights.
func BundledSet() pipeline.FontSet {
	return pipeline.FontSet{Bundled(pipeline.WeightNormal), Bundled(pipeline.WeightMedium)}
}
