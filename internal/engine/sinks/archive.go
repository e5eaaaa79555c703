package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mtgmine/mtgmine/internal/engine"
)

// ManifestName is the archive entry listing every other entry.
const ManifestName = "manifest.json"

type ManifestEntry struct {
	Path string `json:"path"`
	Size int    `json:"size"`
}

// ArchiveSink collects every write into an archive and, on Close, hands the
// finished archive to the inner sink as a single file. A manifest of the
// archived files is added last.
type ArchiveSink struct {
	inner       engine.Sink
	archiver    engine.Archiver
	archiveName string
	entries     []ManifestEntry
}

// NewArchiveSink wraps inner. The archiver's extension is appended to
// archiveName unless it already ends with it.
func NewArchiveSink(inner engine.Sink, archiver engine.Archiver, archiveName string) *ArchiveSink {
	if ext := archiver.Extension(); !strings.HasSuffix(archiveName, ext) {
		archiveName += ext
	}

	return &ArchiveSink{
		inner:       inner,
		archiver:    archiver,
		archiveName: archiveName,
	}
}

func (s *ArchiveSink) Name() string {
	return fmt.Sprintf("archive(%s)->%s", s.archiveName, s.inner.Name())
}

func (s *ArchiveSink) Kind() string {
	return "archive"
}

func (s *ArchiveSink) Write(ctx context.Context, path string, data io.Reader) error {
	if path == ManifestName {
		return fmt.Errorf("%s is reserved for the archive manifest", ManifestName)
	}

	content, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := s.archiver.AddFile(ctx, path, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("failed to add file to archive: %w", err)
	}

	s.entries = append(s.entries, ManifestEntry{Path: path, Size: len(content)})
	return nil
}

// Close writes the manifest, finalizes the archive and writes it to the inner sink.
func (s *ArchiveSink) Close(ctx context.Context) error {
	entries := s.entries
	if entries == nil {
		entries = []ManifestEntry{}
	}

	manifest, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := s.archiver.AddFile(ctx, ManifestName, bytes.NewReader(manifest)); err != nil {
		return fmt.Errorf("failed to add manifest to archive: %w", err)
	}

	reader, err := s.archiver.Close()
	if err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	if err := s.inner.Write(ctx, s.archiveName, reader); err != nil {
		return fmt.Errorf("failed to write archive to sink: %w", err)
	}

	if err := s.inner.Close(ctx); err != nil {
		return fmt.Errorf("failed to close inner sink: %w", err)
	}

	return nil
}
