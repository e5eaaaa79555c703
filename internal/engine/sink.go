package engine

import (
	"context"
	"io"
)

// Sink is a write-only destination for encoded results.
type Sink interface {
	Named
	Closer
	Write(ctx context.Context, path string, data io.Reader) error
}
