// Package sample implements the dominant color sampling stage.
package sample

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"net/http"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"

	"github.com/user/ogstory/pkg/palette"
	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/ports"
)

// Method selects the dominant color estimator.
type Method string

const (
	// MethodHistogram picks the most populated bin of a 16x16x16 RGB histogram.
	MethodHistogram Method = "histogram"
	// MethodKMeans clusters pixels with k-means.
	MethodKMeans Method = "kmeans"
)

// ParseMethod parses a method name. The empty string selects MethodHistogram.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodHistogram:
		return MethodHistogram, nil
	case MethodKMeans:
		return MethodKMeans, nil
	default:
		return "", fmt.Errorf("unknown sampler method %q (want histogram or kmeans)", s)
	}
}

// MaxSampleSide is the longest side counted by the histogram; larger
// images are downscaled first.
const MaxSampleSide = 1024

const acceptImage = "image/avif,image/webp,image/png,image/jpeg,image/*;q=0.8,*/*;q=0.5"

// Stage fetches an image and computes its dominant color.
type Stage struct {
	method   Method
	fetcher  ports.Fetcher
	renderer ports.Renderer
	logger   ports.Logger
}

// NewStage creates a new sample stage.
func NewStage(method Method, fetcher ports.Fetcher, renderer ports.Renderer, logger ports.Logger) *Stage {
	if method == "" {
		method = MethodHistogram
	}
	return &Stage{
		method:   method,
		fetcher:  fetcher,
		renderer: renderer,
		logger:   logger.WithComponent("sample"),
	}
}

// Execute fetches imageURL and returns its dominant color along with the
// decoded image and the original bytes.
func (s *Stage) Execute(ctx context.Context, imageURL string) (pipeline.SampleResult, error) {
	s.logger.Debug("Fetching image %s", imageURL)

	res, err := s.fetcher.Fetch(ctx, imageURL, acceptImage)
	if err != nil {
		return pipeline.SampleResult{}, pipeline.NewError(pipeline.KindFetch, "fetch image", err)
	}

	img, format, err := s.renderer.DecodeImage(res.Body)
	if err != nil {
		return pipeline.SampleResult{}, pipeline.NewError(pipeline.KindParse, "decode image", err)
	}
	if img.Bounds().Empty() {
		return pipeline.SampleResult{}, pipeline.NewError(pipeline.KindParse, "decode image",
			fmt.Errorf("image has no pixels"))
	}

	var c color.RGBA
	switch s.method {
	case MethodKMeans:
		c = dominantcolor.Find(img)
	default:
		c = Histogram(img)
	}
	base := palette.FromRGB(c.R, c.G, c.B)

	s.logger.Debug("Sampled %s %dx%d image: %s (%s)",
		format, img.Bounds().Dx(), img.Bounds().Dy(), base.Hex(), s.method)

	return pipeline.SampleResult{
		Base:      base,
		Image:     img,
		Data:      res.Body,
		MediaType: http.DetectContentType(res.Body),
	}, nil
}

// Histogram returns the center of the most populated cell of a 16-level
// per-channel RGB histogram. Pixels with alpha below 128 are ignored unless
// every pixel is that transparent. Ties resolve to the lowest cell index.
func Histogram(img image.Image) color.RGBA {
	b := img.Bounds()
	if b.Dx() > MaxSampleSide || b.Dy() > MaxSampleSide {
		img = imaging.Fit(img, MaxSampleSide, MaxSampleSide, imaging.Box)
		b = img.Bounds()
	}

	var opaque, all [4096]int
	opaqueTotal := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			bin := int(c.R>>4)<<8 | int(c.G>>4)<<4 | int(c.B>>4)
			all[bin]++
			if c.A >= 128 {
				opaque[bin]++
				opaqueTotal++
			}
		}
	}

	counts := &opaque
	if opaqueTotal == 0 {
		counts = &all
	}
	best := 0
	for i, n := range counts {
		if n > counts[best] {
			best = i
		}
	}

	return color.RGBA{
		R: uint8(best>>8)*16 + 8,
		G: uint8(best>>4&0xF)*16 + 8,
		B: uint8(best&0xF)*16 + 8,
		A: 255,
	}
}
