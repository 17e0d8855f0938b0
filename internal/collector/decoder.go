package collector

import (
	"bytes"
	"fmt"
	"image"

	// Register the formats websites actually serve. Decoding uses the
	// stdlib registry, so supporting another format means adding an import.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Info describes a successfully decoded image.
type Info struct {
	// Width and Height are the pixel dimensions.
	Width  int
	Height int

	// MIMEType is the detected format (e.g. "image/png").
	MIMEType string
}

// Decoder validates image bytes and extracts dimensions.
// It is a capability boundary: callers may plug in decoders supporting
// additional formats without touching the collector.
type Decoder interface {
	// Decode inspects the image header and returns its dimensions and
	// MIME type, or an error when the bytes are not a supported image.
	Decode(data []byte) (Info, error)
}

// StdDecoder decodes via the standard library image registry.
// Only the header is parsed; full pixel data is never decoded, so
// validation stays cheap even for large images.
type StdDecoder struct{}

// Decode implements Decoder.
func (StdDecoder) Decode(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode image: %w", err)
	}
	return Info{
		Width:    cfg.Width,
		Height:   cfg.Height,
		MIMEType: "image/" + format,
	}, nil
}
