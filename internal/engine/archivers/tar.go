package archivers

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/mtgmine/mtgmine/internal/engine"
)

type CompressionType string

const (
	CompressionGzip CompressionType = "gzip"
	CompressionZstd CompressionType = "zstd"
	CompressionNone CompressionType = "none"
)

var extensions = map[CompressionType]string{
	CompressionGzip: ".tar.gz",
	CompressionZstd: ".tar.zst",
	CompressionNone: ".tar",
}

// TarArchiver builds a tar archive in memory, optionally compressed. Every
// entry carries the same modification time so that two runs over the same
// data produce identical archives.
type TarArchiver struct {
	buf         *bytes.Buffer
	compressor  io.WriteCloser
	tarWriter   *tar.Writer
	compression CompressionType
	modTime     time.Time
	closed      bool
}

// NewTarArchiver returns an archiver for compression ("gzip", "zstd" or
// "none"; empty means gzip) stamping entries with modTime.
func NewTarArchiver(compression string, modTime time.Time) (*TarArchiver, error) {
	ct := CompressionType(compression)
	if ct == "" {
		ct = CompressionGzip
	}

	buf := new(bytes.Buffer)
	var compressor io.WriteCloser

	switch ct {
	case CompressionGzip:
		compressor = gzip.NewWriter(buf)
	case CompressionZstd:
		zw, err := zstd.NewWriter(buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		compressor = zw
	case CompressionNone:
		compressor = nopWriteCloser{buf}
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", compression)
	}

	return &TarArchiver{
		buf:         buf,
		compressor:  compressor,
		tarWriter:   tar.NewWriter(compressor),
		compression: ct,
		modTime:     modTime.UTC(),
	}, nil
}

func (a *TarArchiver) AddFile(ctx context.Context, filename string, data io.Reader) error {
	if a.closed {
		return fmt.Errorf("archiver is closed")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	// tar headers need the size up front.
	content, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read file data: %w", err)
	}

	header := &tar.Header{
		Name:    filename,
		Mode:    0644,
		Size:    int64(len(content)),
		ModTime: a.modTime,
	}

	if err := a.tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", filename, err)
	}

	if _, err := a.tarWriter.Write(content); err != nil {
		return fmt.Errorf("failed to write tar content for %s: %w", filename, err)
	}

	return nil
}

// Close flushes the tar stream and compressor and returns the archive bytes.
func (a *TarArchiver) Close() (io.Reader, error) {
	if a.closed {
		return nil, fmt.Errorf("archiver already closed")
	}
	a.closed = true

	if err := a.tarWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close tar writer: %w", err)
	}

	if err := a.compressor.Close(); err != nil {
		return nil, fmt.Errorf("failed to close compressor: %w", err)
	}

	return bytes.NewReader(a.buf.Bytes()), nil
}

func (a *TarArchiver) Extension() string {
	return extensions[a.compression]
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

var _ engine.Archiver = (*TarArchiver)(nil)
