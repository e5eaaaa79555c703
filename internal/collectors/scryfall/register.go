package scryfall

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
	"github.com/mtgmine/mtgmine/internal/apiclient"
	"github.com/mtgmine/mtgmine/internal/engine"
)

// Register registers the scryfall collector and step factories with the registry.
func Register(r *engine.Registry) {
	r.RegisterCollector(CollectorKind, engine.NewCollectorFactory(CollectorKind, newCollector))
	r.RegisterStep(SearchStepKind, engine.NewStepFactory(SearchStepKind, newSearchStep))
	r.RegisterStep(NamedStepKind, engine.NewStepFactory(NamedStepKind, newNamedStep))
}

func newCollector(_ context.Context, logger *zap.Logger, spec *v1.ScryfallCollector) (engine.Collector, error) {
	collector, err := NewCollector(
		apiclient.ConfigFromSpec(spec.ClientSpec, DefaultBaseURL),
		apiclient.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return collector, nil
}

func newSearchStep(_ context.Context, _ *zap.Logger, _ string, collector *Collector, spec *v1.ScryfallSearchStep) (engine.Step, error) {
	return NewSearchStep(collector, SearchOptions{
		Query:               spec.Query,
		Unique:              spec.Unique,
		Order:               spec.Order,
		Direction:           spec.Direction,
		IncludeExtras:       spec.IncludeExtras,
		IncludeMultilingual: spec.IncludeMultilingual,
		IncludeVariations:   spec.IncludeVariations,
		Simplified:          lo.FromPtrOr(spec.Simplified, true),
	}), nil
}

func newNamedStep(_ context.Context, logger *zap.Logger, _ string, collector *Collector, spec *v1.ScryfallNamedStep) (engine.Step, error) {
	return NewNamedStep(collector, NamedOptions{
		Exact:      spec.Exact,
		Fuzzy:      spec.Fuzzy,
		Set:        spec.Set,
		Simplified: lo.FromPtrOr(spec.Simplified, true),
	}, logger), nil
}
