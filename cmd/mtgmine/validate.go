package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var validateCommand = &cli.Command{
	Name:  "validate",
	Usage: "Validate a job file without calling any API",
	Flags: []cli.Flag{allowedEnvFlag()},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "job",
			UsageText: "The job file to validate, or - for stdin",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		jobFilename := command.StringArg("job")
		if jobFilename == "" {
			return fmt.Errorf("no job file provided")
		}

		logger = logger.With(zap.String("job_filename", jobFilename))
		logger.Debug("validating job file")

		job, err := loadJob(ctx, jobFilename, time.Now().UTC(), command.StringSlice("allowed-env"))
		if err != nil {
			fmt.Println(err)
			return fmt.Errorf("job file '%s' is invalid", jobFilename)
		}

		// Building the runner checks step options and output settings.
		if _, err := newRunner(ctx, job, io.Discard); err != nil {
			fmt.Println(err)
			return fmt.Errorf("job file '%s' is invalid", jobFilename)
		}

		fmt.Printf("✓ Job file '%s' is valid (%d steps)\n", jobFilename, len(job.Spec.Steps))
		return nil
	},
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("job file has %d validation error(s):", len(validationErrs)))
		for _, fe := range validationErrs {
			sb.WriteString(fmt.Sprintf("\n  • %s: failed '%s' validation", fe.Namespace(), fe.Tag()))
			if fe.Param() != "" {
				sb.WriteString(fmt.Sprintf(" (param: %s)", fe.Param()))
			}
		}
		return errors.New(sb.String())
	}
	return err
}
