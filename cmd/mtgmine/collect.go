package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
	"github.com/mtgmine/mtgmine/internal/runner"
)

func allowedEnvFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "allowed-env",
		Usage: "Environment variables allowed in job configuration (can be repeated)",
	}
}

var collectCommand = &cli.Command{
	Name:  "collect",
	Usage: "Run a job file",
	Flags: []cli.Flag{allowedEnvFlag()},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "job",
			UsageText: "The job file to run, or - for stdin",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		jobFilename := command.StringArg("job")
		if jobFilename == "" {
			return fmt.Errorf("no job file provided")
		}

		date := time.Now().UTC()
		job, err := loadJob(ctx, jobFilename, date, command.StringSlice("allowed-env"))
		if err != nil {
			return err
		}

		logger.Info("running job",
			zap.String("job_filename", jobFilename),
			zap.String("job_name", job.Metadata.Name),
			zap.Int("steps", len(job.Spec.Steps)),
		)

		return runJob(ctx, job, runner.WithDate(date))
	},
}

// readJobFile reads a job from a file, or from stdin when filename is "-".
// It returns the data and a description of where it came from.
func readJobFile(_ context.Context, filename string) ([]byte, string, error) {
	if filename == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, "stdin", err
	}

	data, err := os.ReadFile(filename)
	return data, filename, err
}

// loadJob reads, validates and expands a job file.
func loadJob(ctx context.Context, filename string, date time.Time, allowedEnv []string) (v1.MineJob, error) {
	jobFile, source, err := readJobFile(ctx, filename)
	if err != nil {
		return v1.MineJob{}, fmt.Errorf("failed to read job file '%s': %w", filename, err)
	}

	job, err := runner.ParseMineJob(jobFile)
	if err != nil {
		return v1.MineJob{}, fmt.Errorf("job from %s is invalid: %w", source, formatValidationError(err))
	}

	variables, err := runner.BuildVariables(job, date, allowedEnv)
	if err != nil {
		return v1.MineJob{}, fmt.Errorf("failed to build variables: %w", err)
	}

	if err := runner.ExpandTemplates(&job, variables); err != nil {
		return v1.MineJob{}, fmt.Errorf("failed to expand templates: %w", err)
	}

	return job, nil
}

// runJob runs job with the client defaults from the environment, writing
// stdout results as tables when a terminal reads them.
func runJob(ctx context.Context, job v1.MineJob, opts ...runner.Option) error {
	r, err := newRunner(ctx, job, os.Stdout, opts...)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("failed to run job: %w", err)
	}

	return nil
}

func newRunner(ctx context.Context, job v1.MineJob, stdout io.Writer, opts ...runner.Option) (*runner.Runner, error) {
	defaults, err := runner.ClientDefaultsFromEnv()
	if err != nil {
		return nil, err
	}

	opts = append([]runner.Option{
		runner.WithStdout(stdout, isInteractive(ctx)),
		runner.WithClientDefaults(defaults),
	}, opts...)

	return runner.New(ctx, getLogger(ctx).Named("runner"), job, opts...)
}
