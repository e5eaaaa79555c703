package scryfall

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mtgmine/mtgmine/internal/engine"
	"github.com/mtgmine/mtgmine/internal/errs"
)

const (
	SearchStepKind = "scryfall_search"
	NamedStepKind  = "scryfall_named"

	maxSuggestions = 5
)

type searchStep struct {
	collector *Collector
	opts      SearchOptions
}

func NewSearchStep(collector *Collector, opts SearchOptions) engine.Step {
	return &searchStep{collector: collector, opts: opts}
}

func (s *searchStep) Name() string {
	return fmt.Sprintf("%s(%s)", SearchStepKind, s.opts.Query)
}

func (s *searchStep) Kind() string {
	return SearchStepKind
}

func (s *searchStep) Resolve(ctx context.Context) (engine.Result, error) {
	tbl, err := s.collector.SearchByQuery(ctx, s.opts)
	if err != nil {
		return engine.Result{}, err
	}

	return engine.Result{
		Data: tbl,
		Meta: map[string]string{
			"query": s.opts.Query,
			"rows":  strconv.Itoa(tbl.Len()),
		},
	}, nil
}

type namedStep struct {
	collector *Collector
	opts      NamedOptions
	logger    *zap.Logger
}

// NewNamedStep looks up one card. When the name does not resolve, the error
// lists the closest known card names.
func NewNamedStep(collector *Collector, opts NamedOptions, logger *zap.Logger) engine.Step {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &namedStep{collector: collector, opts: opts, logger: logger}
}

func (s *namedStep) Name() string {
	return fmt.Sprintf("%s(%s)", NamedStepKind, s.opts.query())
}

func (s *namedStep) Kind() string {
	return NamedStepKind
}

func (s *namedStep) Resolve(ctx context.Context) (engine.Result, error) {
	card, err := s.collector.SearchByName(ctx, s.opts)
	if err != nil {
		return engine.Result{}, s.withSuggestions(ctx, err)
	}

	return engine.Result{
		Data: card,
		Meta: map[string]string{"query": s.opts.query()},
	}, nil
}

func (s *namedStep) withSuggestions(ctx context.Context, err error) error {
	var notFound *errs.NotFoundError
	if !errors.As(err, &notFound) || notFound.Ambiguous {
		return err
	}

	suggestions, suggestErr := s.collector.Suggest(ctx, s.opts.query(), maxSuggestions)
	if suggestErr != nil {
		s.logger.Debug("failed to fetch name suggestions", zap.Error(suggestErr))
		return err
	}
	if len(suggestions) == 0 {
		return err
	}

	return fmt.Errorf("%w (did you mean: %s?)", err, strings.Join(suggestions, ", "))
}
