// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"github.com/user/ogstory/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveMetadataJSON does nothing.
func (s *Sink) SaveMetadataJSON(data []byte) error {
	return nil
}

// SaveGradientJSON does nothing.
func (s *Sink) SaveGradientJSON(data []byte) error {
	return nil
}

// SaveDocumentSVG does nothing.
func (s *Sink) SaveDocumentSVG(data []byte) error {
	return nil
}

// SavePNG does nothing.
func (s *Sink) SavePNG(data []byte) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
