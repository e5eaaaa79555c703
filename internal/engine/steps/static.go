package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/mtgmine/mtgmine/internal/apiclient"
	"github.com/mtgmine/mtgmine/internal/engine"
	"github.com/mtgmine/mtgmine/internal/table"
)

const (
	StaticStepKind = "static"

	ParseJSON = "json"
	ParseCSV  = "csv"
)

// StaticStepConfig describes local data to load as a table: either a file
// (e.g. a saved Scryfall export or a 17Lands CSV dataset) or an inline value.
type StaticStepConfig struct {
	Filepath *string
	Value    *string
	// ParseAs is "json" or "csv". Files default to their extension, inline
	// values to JSON.
	ParseAs *string
	// Columns, when set, projects the table onto these columns.
	Columns []string
}

func NewStaticStep(name string, cfg StaticStepConfig) (engine.Step, error) {
	if cfg.Filepath != nil && cfg.Value != nil {
		return nil, fmt.Errorf("both filepath and value are set")
	}

	if cfg.Filepath == nil && cfg.Value == nil {
		return nil, fmt.Errorf("neither filepath nor value are set")
	}

	if cfg.ParseAs != nil && *cfg.ParseAs != ParseJSON && *cfg.ParseAs != ParseCSV {
		return nil, fmt.Errorf("parse_as must be %q or %q, got %q", ParseJSON, ParseCSV, *cfg.ParseAs)
	}

	if cfg.Value != nil {
		return newStaticValueStep(name, cfg), nil
	}

	rootDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	return newStaticFileStep(name, afero.NewBasePathFs(afero.NewOsFs(), rootDir), cfg), nil
}

func newStaticFileStep(name string, fs afero.Fs, cfg StaticStepConfig) engine.Step {
	path := *cfg.Filepath
	format := ParseJSON
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		format = ParseCSV
	}
	if cfg.ParseAs != nil {
		format = *cfg.ParseAs
	}

	return engine.StepFunction(name, StaticStepKind, func(ctx context.Context) (engine.Result, error) {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return engine.Result{}, fmt.Errorf("failed to read filepath %s: %w", path, err)
		}

		tbl, err := parseTable(data, format, cfg.Columns)
		if err != nil {
			return engine.Result{}, fmt.Errorf("failed to load %s: %w", path, err)
		}

		return engine.Result{
			Data: tbl,
			Meta: map[string]string{"filepath": path, "rows": strconv.Itoa(tbl.Len())},
		}, nil
	})
}

func newStaticValueStep(name string, cfg StaticStepConfig) engine.Step {
	format := ParseJSON
	if cfg.ParseAs != nil {
		format = *cfg.ParseAs
	}

	return engine.StepFunction(name, StaticStepKind, func(ctx context.Context) (engine.Result, error) {
		tbl, err := parseTable([]byte(*cfg.Value), format, cfg.Columns)
		if err != nil {
			return engine.Result{}, fmt.Errorf("failed to load inline value: %w", err)
		}

		return engine.Result{
			Data: tbl,
			Meta: map[string]string{"rows": strconv.Itoa(tbl.Len())},
		}, nil
	})
}

func parseTable(data []byte, format string, columns []string) (*table.Table, error) {
	contentType := "application/json"
	if format == ParseCSV {
		contentType = "text/csv"
	}

	decoded, err := apiclient.DecodeBody(data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to parse as %s: %w", format, err)
	}

	tbl, err := table.FromJSON(decoded)
	if err != nil {
		return nil, err
	}

	if len(columns) > 0 {
		tbl = tbl.Select(columns...)
	}
	return tbl, nil
}
