package engine

import (
	"context"
	"io"
)

// Archiver bundles several encoded results into one file.
type Archiver interface {
	AddFile(ctx context.Context, filename string, data io.Reader) error

	// Close finalizes the archive and returns its complete contents.
	Close() (io.Reader, error)

	// Extension returns the archive's file extension, dot included (".tar.gz").
	Extension() string
}
