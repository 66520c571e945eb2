package mocks

import (
	"sync"

	"github.com/user/ogstory/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	MetadataJSON []byte
	GradientJSON []byte
	DocumentSVG  []byte
	PNG          []byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{enabled: enabled}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveMetadataJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MetadataJSON = data
	return nil
}

func (m *DebugSink) SaveGradientJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GradientJSON = data
	return nil
}

func (m *DebugSink) SaveDocumentSVG(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DocumentSVG = data
	return nil
}

func (m *DebugSink) SavePNG(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PNG = data
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                      { return false }
func (m *NullSink) SaveMetadataJSON(data []byte) error { return nil }
func (m *NullSink) SaveGradientJSON(data []byte) error { return nil }
func (m *NullSink) SaveDocumentSVG(data []byte) error  { return nil }
func (m *NullSink) SavePNG(data []byte) error          { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
