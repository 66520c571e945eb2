// Package gradient implements the gradient stage: the sampled dominant color
// of an image and its harmonized companion as a vertical gradient.
package gradient

import (
	"context"
	"encoding/json"

	"github.com/user/ogstory/pkg/palette"
	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/ports"
)

// Stage builds a gradient from an image URL.
type Stage struct {
	chain  pipeline.Stage[string, pipeline.GradientResult]
	sink   ports.DebugSink
	logger ports.Logger
}

// NewStage creates a new gradient stage on top of sampler.
func NewStage(sampler pipeline.Stage[string, pipeline.SampleResult], sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		chain:  pipeline.Chain(sampler, pipeline.StageFunc[pipeline.SampleResult, pipeline.GradientResult](Harmonize)),
		sink:   sink,
		logger: logger.WithComponent("gradient"),
	}
}

// Execute samples imageURL and derives the gradient. Sampler failures are
// returned unchanged.
func (s *Stage) Execute(ctx context.Context, imageURL string) (pipeline.GradientResult, error) {
	result, err := s.chain.Execute(ctx, imageURL)
	if err != nil {
		return pipeline.GradientResult{}, err
	}

	g := result.Gradient
	s.logger.Debug("Gradient %s -> %s", g.Start.Hex(), g.End.Hex())

	if s.sink.Enabled() {
		if data, err := json.MarshalIndent(debugGradient{
			Base:       g.Start,
			Harmonized: g.End,
			CSS:        g.CSS(),
		}, "", "  "); err == nil {
			if err := s.sink.SaveGradientJSON(data); err != nil {
				s.logger.Warn("Failed to save debug output: %s", err)
			}
		}
	}

	return result, nil
}

// Harmonize turns a sample into a top-to-bottom gradient from the sampled
// color to its harmonized companion.
func Harmonize(ctx context.Context, sample pipeline.SampleResult) (pipeline.GradientResult, error) {
	return pipeline.GradientResult{
		Gradient: pipeline.NewVerticalGradient(sample.Base, palette.Harmonize(sample.Base)),
		Sample:   sample,
	}, nil
}

type debugGradient struct {
	Base       palette.Color `json:"base"`
	Harmonized palette.Color `json:"harmonized"`
	CSS        string        `json:"css"`
}
