package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v3"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
)

var outputFormats = []string{"json", "csv", "table"}

// outputFlags are shared by every single-endpoint command.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: json, csv or table (default: table on a terminal, json otherwise)",
			Action: func(ctx context.Context, command *cli.Command, s string) error {
				if !slices.Contains(outputFormats, s) {
					return fmt.Errorf("invalid format %q, expected one of %v", s, outputFormats)
				}
				return nil
			},
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Write the result to a file in this directory instead of stdout",
		},
	}
}

func outputFromFlags(ctx context.Context, command *cli.Command) *v1.OutputSpec {
	output := &v1.OutputSpec{}

	switch command.String("format") {
	case "json":
		indent := ""
		if isInteractive(ctx) {
			indent = "  "
		}
		output.Encoding = &v1.EncodingSpec{JSON: &v1.JSONEncodingSpec{Indent: indent}}
	case "csv":
		output.Encoding = &v1.EncodingSpec{CSV: &v1.CSVEncodingSpec{}}
	case "table":
		output.Encoding = &v1.EncodingSpec{Table: &v1.TableEncodingSpec{}}
	}

	if dir := command.String("output-dir"); dir != "" {
		output.Sink = &v1.SinkSpec{Filesystem: &v1.FilesystemSinkSpec{Path: &dir}}
	}

	return output
}

// runStep runs a one-step job built from command line flags.
func runStep(ctx context.Context, command *cli.Command, step v1.Step) error {
	job := v1.MineJob{
		Kind:     v1.MineJobKind,
		Metadata: v1.Metadata{Name: step.ID},
		Spec: v1.MineJobSpec{
			Steps:  []v1.Step{step},
			Output: outputFromFlags(ctx, command),
		},
	}
	return runJob(ctx, job)
}

func requiredArg(command *cli.Command, name string) (string, error) {
	value := command.StringArg(name)
	if value == "" {
		return "", fmt.Errorf("no %s provided", name)
	}
	return value, nil
}

// dateRangeFlags bound 17Lands aggregations. The end date defaults to today.
func dateRangeFlags() []cli.Flag {
	checkDate := func(ctx context.Context, command *cli.Command, s string) error {
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
		}
		return nil
	}

	return []cli.Flag{
		&cli.StringFlag{
			Name:     "start",
			Usage:    "First day of the aggregation (YYYY-MM-DD)",
			Required: true,
			Action:   checkDate,
		},
		&cli.StringFlag{
			Name:   "end",
			Usage:  "Last day of the aggregation (YYYY-MM-DD, default: today)",
			Action: checkDate,
		},
	}
}

func dateRangeFromFlags(command *cli.Command) v1.DateRange {
	end := command.String("end")
	if end == "" {
		end = time.Now().UTC().Format(time.DateOnly)
	}
	return v1.DateRange{StartDate: command.String("start"), EndDate: end}
}

func eventTypeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "event-type",
		Usage: "17Lands event type, e.g. PremierDraft, QuickDraft, TradSealed (default: PremierDraft)",
	}
}

func optionalString(command *cli.Command, name string) *string {
	if !command.IsSet(name) {
		return nil
	}
	value := command.String(name)
	return &value
}
