package ports

// DebugSink receives intermediate results of a generation for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveMetadataJSON saves the extracted Open Graph metadata.
	SaveMetadataJSON(data []byte) error

	// SaveGradientJSON saves the sampled and harmonized colors.
	SaveGradientJSON(data []byte) error

	// SaveDocumentSVG saves the laid-out document in SVG form.
	SaveDocumentSVG(data []byte) error

	// SavePNG saves the rasterized story image.
	SavePNG(data []byte) error
}
