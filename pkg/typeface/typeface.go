// Package typeface turns font assets into sized faces and measures text.
package typeface

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/user/ogstory/pkg/pipeline"
)

// Ellipsis is appended to single-line text that does not fit.
const Ellipsis = "…"

// Set holds parsed fonts keyed by weight.
// Faces are cached per weight and size; a Set is not safe for concurrent use.
type Set struct {
	fonts   map[int]*opentype.Font
	family  map[int]string
	faces   map[faceKey]font.Face
	weights []int
}

type faceKey struct {
	weight int
	size   float64
}

// Parse parses every asset in fonts. TrueType and CFF-flavored OpenType
// files are both accepted.
func Parse(fonts pipeline.FontSet) (*Set, error) {
	s := &Set{
		fonts:  make(map[int]*opentype.Font),
		family: make(map[int]string),
		faces:  make(map[faceKey]font.Face),
	}
	for _, asset := range fonts.Sorted() {
		f, err := opentype.Parse(asset.Data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s %d: %w", asset.Family, asset.Weight, err)
		}
		if _, dup := s.fonts[asset.Weight]; !dup {
			s.weights = append(s.weights, asset.Weight)
		}
		s.fonts[asset.Weight] = f
		s.family[asset.Weight] = asset.Family
	}
	return s, nil
}

// Require returns an error unless every weight is present.
func (s *Set) Require(weights ...int) error {
	for _, w := range weights {
		if _, ok := s.fonts[w]; !ok {
			return fmt.Errorf("missing font weight %d", w)
		}
	}
	return nil
}

// Family returns the family name registered for weight.
func (s *Set) Family(weight int) string {
	return s.family[s.resolve(weight)]
}

// Face returns a face for weight at size pixels. A missing weight falls back
// to the closest available one.
func (s *Set) Face(weight int, size float64) (font.Face, error) {
	weight = s.resolve(weight)
	key := faceKey{weight: weight, size: size}
	if face, ok := s.faces[key]; ok {
		return face, nil
	}
	f, ok := s.fonts[weight]
	if !ok {
		return nil, fmt.Errorf("no fonts loaded")
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %d/%gpx: %w", weight, size, err)
	}
	s.faces[key] = face
	return face, nil
}

// Close releases every cached face.
func (s *Set) Close() {
	for key, face := range s.faces {
		_ = face.Close()
		delete(s.faces, key)
	}
}

func (s *Set) resolve(weight int) int {
	if _, ok := s.fonts[weight]; ok || len(s.weights) == 0 {
		return weight
	}
	best := s.weights[0]
	for _, w := range s.weights[1:] {
		if abs(w-weight) < abs(best-weight) {
			best = w
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Measure returns the advance width of text in pixels.
func Measure(face font.Face, text string) float64 {
	return toFloat(font.MeasureString(face, text))
}

// VerticalMetrics returns the ascent and descent of face in pixels.
func VerticalMetrics(face font.Face) (ascent, descent float64) {
	m := face.Metrics()
	return toFloat(m.Ascent), toFloat(m.Descent)
}

// Baseline returns the baseline y of a line box starting at top whose glyphs
// are centered vertically within lineHeight.
func Baseline(face font.Face, top, lineHeight float64) float64 {
	ascent, descent := VerticalMetrics(face)
	return top + (lineHeight-(ascent+descent))/2 + ascent
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Wrap breaks text into lines no wider than maxWidth. Lines break at spaces;
// a word wider than maxWidth on its own is broken between runes.
func Wrap(face font.Face, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if Measure(face, candidate) <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
			line = ""
		}
		if Measure(face, word) <= maxWidth {
			line = word
			continue
		}
		pieces := breakRunes(face, word, maxWidth)
		lines = append(lines, pieces[:len(pieces)-1]...)
		line = pieces[len(pieces)-1]
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// breakRunes splits word into pieces that each fit maxWidth. Every piece
// holds at least one rune.
func breakRunes(face font.Face, word string, maxWidth float64) []string {
	var pieces []string
	var b strings.Builder
	for _, r := range word {
		if b.Len() > 0 && Measure(face, b.String()+string(r)) > maxWidth {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	return append(pieces, b.String())
}

// Truncate returns text unchanged if it fits maxWidth on one line, otherwise
// the longest rune prefix that fits with Ellipsis appended.
func Truncate(face font.Face, text string, maxWidth float64) string {
	text = strings.Join(strings.Fields(text), " ")
	if Measure(face, text) <= maxWidth {
		return text
	}
	if Measure(face, Ellipsis) > maxWidth {
		return ""
	}
	for text != "" {
		_, size := utf8.DecodeLastRuneInString(text)
		text = text[:len(text)-size]
		candidate := strings.TrimRight(text, " ") + Ellipsis
		if Measure(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return Ellipsis
}
