package engine

import (
	"context"
	"io"
)

// Encoder renders a single result into a byte stream.
type Encoder interface {
	EncodeResult(ctx context.Context, result Result) (io.Reader, error)

	// FileExtension returns the extension without the dot (e.g. "csv").
	FileExtension() string
}
