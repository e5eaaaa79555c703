package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
	"github.com/mtgmine/mtgmine/internal/engine"
)

type Runner struct {
	logger   *zap.Logger
	job      v1.MineJob
	pipeline *engine.Pipeline
	encoder  engine.Encoder
	sink     engine.Sink
}

type options struct {
	registry *engine.Registry
	stdout   io.Writer
	terminal bool
	defaults ClientDefaults
	date     time.Time
}

type Option func(*options)

// WithRegistry replaces the registry built by BuildRegistry.
func WithRegistry(registry *engine.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithStdout sets where the stdout sink writes. terminal reports whether a
// person reads it, which switches the default encoding to a table.
func WithStdout(w io.Writer, terminal bool) Option {
	return func(o *options) {
		o.stdout = w
		o.terminal = terminal
	}
}

func WithClientDefaults(defaults ClientDefaults) Option {
	return func(o *options) {
		o.defaults = defaults
	}
}

// WithDate sets the job date stamped on archive entries, normally the date
// passed to BuildVariables.
func WithDate(date time.Time) Option {
	return func(o *options) {
		o.date = date
	}
}

// New builds the pipeline, encoder and sink of job. The job must already be
// validated and have its templates expanded.
func New(ctx context.Context, logger *zap.Logger, job v1.MineJob, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	o := options{stdout: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = BuildRegistry(logger.Named("registry"))
	}

	logger.Info("creating runner", zap.String("job_name", job.Metadata.Name))

	pipeline, err := createPipeline(ctx, logger.Named("pipeline"), o.registry, job, o.defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	encoder, err := buildEncoder(job.Spec.Output, o.terminal)
	if err != nil {
		return nil, fmt.Errorf("failed to build encoder: %w", err)
	}

	date := o.date
	if date.IsZero() {
		date = pipeline.Date()
	}

	sink, err := buildSink(ctx, job, o.stdout, date)
	if err != nil {
		return nil, fmt.Errorf("failed to build sink: %w", err)
	}

	return &Runner{
		logger:   logger,
		job:      job,
		pipeline: pipeline,
		encoder:  encoder,
		sink:     sink,
	}, nil
}

// Run starts the collectors, resolves every step in order and writes the
// results. Nothing is written when a step fails.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.pipeline.Start(ctx); err != nil {
		return err
	}

	defer func() {
		// Use a background context so cleanup runs even after cancellation.
		if err := r.pipeline.Close(context.Background()); err != nil {
			r.logger.Error("failed to close collectors", zap.Error(err))
		}
	}()

	results, err := r.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run pipeline: %w", err)
	}

	if err := r.WriteResults(ctx, results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	r.logger.Info("job finished",
		zap.String("job_name", r.job.Metadata.Name),
		zap.Int("results", len(results)),
		zap.String("sink", r.sink.Name()),
	)
	return nil
}

// WriteResults encodes each result to "<step id>.<extension>" in step order,
// then closes the sink.
func (r *Runner) WriteResults(ctx context.Context, results []engine.Result) error {
	for _, result := range results {
		reader, err := r.encoder.EncodeResult(ctx, result)
		if err != nil {
			return fmt.Errorf("failed to encode result for step %s: %w", result.ID, err)
		}

		filename := fmt.Sprintf("%s.%s", result.ID, r.encoder.FileExtension())
		if err := r.sink.Write(ctx, filename, reader); err != nil {
			return fmt.Errorf("failed to write result for step %s: %w", result.ID, err)
		}
	}

	if err := r.sink.Close(ctx); err != nil {
		return fmt.Errorf("failed to close sink: %w", err)
	}

	return nil
}
