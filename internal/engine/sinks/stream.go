package sinks

import (
	"context"
	"fmt"
	"io"

	"github.com/mtgmine/mtgmine/internal/engine"
)

// StreamSink writes every result to one stream, typically stdout. With
// headers enabled each result is preceded by a "# <path>" line so several
// step outputs stay distinguishable.
type StreamSink struct {
	w       io.Writer
	headers bool
	writes  int
}

func NewStreamSink(w io.Writer, headers bool) *StreamSink {
	return &StreamSink{w: w, headers: headers}
}

func (s *StreamSink) Name() string {
	return "stream"
}

func (s *StreamSink) Kind() string {
	return "stream"
}

func (s *StreamSink) Write(ctx context.Context, path string, data io.Reader) error {
	if s.headers {
		sep := ""
		if s.writes > 0 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(s.w, "%s# %s\n", sep, path); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	if _, err := io.Copy(s.w, data); err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}
	s.writes++
	return nil
}

func (s *StreamSink) Close(ctx context.Context) error {
	return nil
}

var _ engine.Sink = (*StreamSink)(nil)
