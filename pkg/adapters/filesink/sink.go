// Package filesink provides a debug sink that writes intermediate results
// into a directory.
package filesink

import (
	"path/filepath"

	"github.com/user/ogstory/pkg/ports"
)

// Output file names inside the debug directory.
const (
	MetadataFile = "metadata.json"
	GradientFile = "gradient.json"
	DocumentFile = "document.svg"
	PNGFile      = "story.png"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveMetadataJSON saves the extracted metadata.
func (s *Sink) SaveMetadataJSON(data []byte) error {
	return s.save(MetadataFile, data)
}

// SaveGradientJSON saves the sampled and harmonized colors.
func (s *Sink) SaveGradientJSON(data []byte) error {
	return s.save(GradientFile, data)
}

// SaveDocumentSVG saves the laid-out document.
func (s *Sink) SaveDocumentSVG(data []byte) error {
	return s.save(DocumentFile, data)
}

// SavePNG saves the rasterized story.
func (s *Sink) SavePNG(data []byte) error {
	return s.save(PNGFile, data)
}

func (s *Sink) save(name string, data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, name), data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
