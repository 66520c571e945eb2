// Package extract implements the metadata extraction stage.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/ports"
)

// MaxDescriptionRunes is the longest description kept before truncation.
const MaxDescriptionRunes = 50

// DescriptionSuffix is appended to truncated descriptions.
const DescriptionSuffix = "..."

const acceptHTML = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"

// Stage fetches a page and extracts its Open Graph metadata.
type Stage struct {
	fetcher ports.Fetcher
	sink    ports.DebugSink
	logger  ports.Logger
}

// NewStage creates a new extract stage.
func NewStage(fetcher ports.Fetcher, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		fetcher: fetcher,
		sink:    sink,
		logger:  logger.WithComponent("extract"),
	}
}

// Execute fetches pageURL and returns its metadata. Missing tags yield
// empty fields, never an error.
func (s *Stage) Execute(ctx context.Context, pageURL string) (pipeline.OGMetadata, error) {
	s.logger.Debug("Fetching page %s", pageURL)

	res, err := s.fetcher.Fetch(ctx, pageURL, acceptHTML)
	if err != nil {
		return pipeline.OGMetadata{}, pipeline.NewError(pipeline.KindFetch, "fetch page", err)
	}

	meta, err := Parse(res.Body)
	if err != nil {
		return pipeline.OGMetadata{}, pipeline.NewError(pipeline.KindParse, "parse page", err)
	}
	meta.Host = Host(pageURL)

	s.logger.Debug("Parsed page: title=%q image=%q", meta.Title, meta.Image)

	if s.sink.Enabled() {
		if data, err := json.MarshalIndent(meta, "", "  "); err == nil {
			if err := s.sink.SaveMetadataJSON(data); err != nil {
				s.logger.Warn("Failed to save debug output: %s", err)
			}
		}
	}

	return meta, nil
}

// Parse reads og:title, og:description and og:image from an HTML document.
// Only the first matching tag of each property is used. The description is
// truncated; Host is left empty.
func Parse(body []byte) (pipeline.OGMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pipeline.OGMetadata{}, err
	}
	return pipeline.OGMetadata{
		Title:       property(doc, "og:title"),
		Description: TruncateDescription(property(doc, "og:description")),
		Image:       property(doc, "og:image"),
	}, nil
}

func property(doc *goquery.Document, name string) string {
	content, _ := doc.Find(`meta[property="` + name + `"]`).First().Attr("content")
	return content
}

// TruncateDescription shortens s to MaxDescriptionRunes runes followed by
// DescriptionSuffix. Shorter strings are returned unchanged.
func TruncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxDescriptionRunes {
		return s
	}
	return string(runes[:MaxDescriptionRunes]) + DescriptionSuffix
}

// Host returns the authority of rawURL. When rawURL does not parse as an
// absolute URL, the third "/"-separated token is used, or "" when there
// are fewer than three.
func Host(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Host
	}
	parts := strings.Split(rawURL, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}
