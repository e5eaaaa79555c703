package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
	"github.com/mtgmine/mtgmine/internal/engine"
	"github.com/mtgmine/mtgmine/internal/engine/archivers"
	"github.com/mtgmine/mtgmine/internal/engine/encoders"
	"github.com/mtgmine/mtgmine/internal/engine/sinks"
)

// buildEncoder creates an encoder from the output spec. Without an
// encoding, results are compact JSON, or an aligned table when a terminal
// reads them.
func buildEncoder(output *v1.OutputSpec, terminal bool) (engine.Encoder, error) {
	if output == nil || output.Encoding == nil {
		if terminal && writesToStdout(output) {
			return encoders.NewTextEncoder(0), nil
		}
		return encoders.NewJSONEncoder(""), nil
	}

	enc := output.Encoding
	set := 0
	for _, ok := range []bool{enc.JSON != nil, enc.CSV != nil, enc.Table != nil} {
		if ok {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("only one encoding may be set")
	}

	switch {
	case enc.JSON != nil:
		return encoders.NewJSONEncoder(enc.JSON.Indent), nil
	case enc.CSV != nil:
		delimiter := ','
		if enc.CSV.Delimiter != "" {
			r, size := utf8.DecodeRuneInString(enc.CSV.Delimiter)
			if size != len(enc.CSV.Delimiter) {
				return nil, fmt.Errorf("csv delimiter must be a single character, got %q", enc.CSV.Delimiter)
			}
			delimiter = r
		}
		return encoders.NewCSVEncoder(delimiter), nil
	case enc.Table != nil:
		return encoders.NewTextEncoder(enc.Table.MaxCellWidth), nil
	default:
		return encoders.NewJSONEncoder(""), nil
	}
}

func writesToStdout(output *v1.OutputSpec) bool {
	return output == nil || output.Sink == nil || output.Sink.Stdout != nil
}

// buildSink creates a sink from the job spec.
//
// Default behavior:
//   - No output spec: stdout sink
//   - No sink specified: stdout sink
//   - Explicit stdout sink: stdout sink
//   - Explicit filesystem sink: filesystem sink
//   - Explicit s3 sink: s3 sink
//
// If archive is configured, the inner sink is wrapped with an ArchiveSink
// whose entries are stamped with date.
func buildSink(ctx context.Context, job v1.MineJob, stdout io.Writer, date time.Time) (engine.Sink, error) {
	sink, err := buildInnerSink(ctx, job, stdout)
	if err != nil {
		return nil, err
	}

	if job.Spec.Output != nil && job.Spec.Output.Archive != nil {
		return wrapWithArchiveSink(job, sink, date)
	}

	return sink, nil
}

// buildInnerSink creates the underlying sink (stdout, filesystem, or S3).
func buildInnerSink(ctx context.Context, job v1.MineJob, stdout io.Writer) (engine.Sink, error) {
	output := job.Spec.Output
	if writesToStdout(output) {
		if output != nil && output.Archive != nil {
			return nil, fmt.Errorf("stdout sink cannot be used with archive configuration")
		}
		// Several results on one stream need a header to tell them apart.
		return sinks.NewStreamSink(stdout, len(job.Spec.Steps) > 1), nil
	}

	if output.Sink.Filesystem != nil {
		return buildFilesystemSink(output.Sink.Filesystem)
	}

	if output.Sink.S3 != nil {
		return buildS3Sink(ctx, job.Metadata.Name, output.Sink.S3)
	}

	return nil, fmt.Errorf("invalid sink configuration: no sink type specified")
}

func wrapWithArchiveSink(job v1.MineJob, inner engine.Sink, date time.Time) (engine.Sink, error) {
	archive := job.Spec.Output.Archive

	archiver, err := archivers.NewTarArchiver(archive.Compression, date)
	if err != nil {
		return nil, fmt.Errorf("failed to create tar archiver: %w", err)
	}

	name := archive.Name
	if name == "" {
		name = job.Metadata.Name
	}

	return sinks.NewArchiveSink(inner, archiver, name), nil
}

func buildFilesystemSink(spec *v1.FilesystemSinkSpec) (engine.Sink, error) {
	var path, prefix string
	if spec.Path != nil {
		path = *spec.Path
	}
	if spec.Prefix != nil {
		prefix = *spec.Prefix
	}

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = wd
	}

	return sinks.NewFilesystemSinkFromPath(filepath.Join(path, prefix))
}

func buildS3Sink(ctx context.Context, jobName string, spec *v1.S3SinkSpec) (engine.Sink, error) {
	cfg := sinks.S3Config{
		Bucket:   spec.Bucket,
		Metadata: map[string]string{"job": jobName},
	}

	if spec.Region != nil {
		cfg.Region = *spec.Region
	}

	if spec.Endpoint != nil {
		cfg.Endpoint = *spec.Endpoint
	}

	if spec.Prefix != nil {
		cfg.Prefix = *spec.Prefix
	}

	if spec.Credentials != nil {
		cfg.AccessKeyID = spec.Credentials.AccessKeyID
		cfg.SecretAccessKey = spec.Credentials.SecretAccessKey
	}

	return sinks.NewS3Sink(ctx, cfg)
}
