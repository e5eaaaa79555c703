package seventeenlands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
	"github.com/mtgmine/mtgmine/internal/apiclient"
	"github.com/mtgmine/mtgmine/internal/engine"
)

// Register registers the 17Lands collector and step factories with the registry.
func Register(r *engine.Registry) {
	r.RegisterCollector(CollectorKind, engine.NewCollectorFactory(CollectorKind, newCollector))
	r.RegisterStep(CatalogStepKind, engine.NewStepFactory(CatalogStepKind, newCatalogStep))
	r.RegisterStep(ColorRatingsStepKind, engine.NewStepFactory(ColorRatingsStepKind, newColorRatingsStep))
	r.RegisterStep(CardRatingsStepKind, engine.NewStepFactory(CardRatingsStepKind, newCardRatingsStep))
	r.RegisterStep(CardEvaluationsStepKind, engine.NewStepFactory(CardEvaluationsStepKind, newCardEvaluationsStep))
	r.RegisterStep(PlayDrawStepKind, engine.NewStepFactory(PlayDrawStepKind, newPlayDrawStep))
	r.RegisterStep(TrophiesStepKind, engine.NewStepFactory(TrophiesStepKind, newTrophiesStep))
	r.RegisterStep(DraftStepKind, engine.NewStepFactory(DraftStepKind, newDraftStep))
	r.RegisterStep(DeckStepKind, engine.NewStepFactory(DeckStepKind, newDeckStep))
}

func newCollector(_ context.Context, logger *zap.Logger, spec *v1.SeventeenLandsCollector) (engine.Collector, error) {
	collector, err := NewCollector(
		apiclient.ConfigFromSpec(spec.ClientSpec, DefaultBaseURL),
		apiclient.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return collector, nil
}

func parseDateRange(spec v1.DateRange) (DateRange, error) {
	start, err := time.Parse(time.DateOnly, spec.StartDate)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.Parse(time.DateOnly, spec.EndDate)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end_date: %w", err)
	}
	return DateRange{StartDate: start, EndDate: end}, nil
}

func newCatalogStep(_ context.Context, _ *zap.Logger, _ string, collector *Collector, spec *v1.SeventeenLandsCatalogStep) (engine.Step, error) {
	return NewCatalogStep(collector, spec.Catalog)
}

func newColorRatingsStep(_ context.Context, _ *zap.Logger, _ string, collector *Collector, spec *v1.SeventeenLandsColorRatingsStep) (engine.Step, error) {
	dates, err := parseDateRange(spec.DateRange)
	if err != nil {
		return nil, err
	}

	opts := ColorRatingsOptions{
		Expansion:     spec.Expansion,
		DateRange:     dates,
		EventType:     spec.EventType,
		CombineSplash: spec.CombineSplash,
	}
	if spec.UserGroup != nil {
		opts.UserGroup = *spec.UserGroup
	}
	return NewColorRatingsStep(collector, opts), nil
}

func newCardRatingsStep(_ context.Context, _ *zap.Logger, _ string, collector *Collector, spec *v1.SeventeenLandsCardRatingsStep) (engine.Step, error) {
	dates, err := parseDateRange(spec.DateRange)
	if err != nil {
		return nil, err
	}

	opts := CardRatingsOptions{
		Expansion: spec.Expansion,
		DateRange: dates,
		EventType: spec.EventType,
	}
	if spec.UserGroup != nil {
		opts.UserGroup = *spec.UserGroup
	}
	if spec.DeckColors != nil {
		opts.DeckColors = *spec.DeckColors
	}
	return NewCardRatingsStep(collector, opts), nil
}

func newCardEvaluationsStep(_ context.Context, _ *zap.Logger, _ string, collector *Collector, spec *v1.SeventeenLandsCardEvaluationsStep) (engine.Step, error) {
	dates, err := parseDateRange(spec.DateRange)
	if err != nil {
		return nil, err
	}

	opts := CardEvaluationsOptions{
		Expansion: spec.Expansion,
		DateRange: dates,
		EventType: spec.EventType,
	}
	if spec.Rarity != nil {
		opts.Rarity = *spec.Rarity
	}
	if spec.Color != nil {
		opts.Color = *spec.Color
	}
	return NewCardEvaluationsStep(collector, opts), nil
}

func newPlayDrawStep(_ context.Context, _ *zap.Logger, _ string, collector *Collector, _ *v1.SeventeenLandsPlayDrawStep) (engine.Step, error) {
	return NewPlayDrawStep(collector), nil
}

func newTrophiesStep(_ context.Context, _ *zap.Logger, _ string, collector *Collector, spec *v1.SeventeenLandsTrophiesStep) (engine.Step, error) {
	return NewTrophiesStep(collector, TrophyDecksOptions{
		Expansion: spec.Expansion,
		EventType: spec.EventType,
	}), nil
}

func newDraftStep(_ context.Context, _ *zap.Logger, _ string, collector *Collector, spec *v1.SeventeenLandsDraftStep) (engine.Step, error) {
	return NewDraftStep(collector, spec.DraftID, spec.Table)
}

func newDeckStep(_ context.Context, _ *zap.Logger, _ string, collector *Collector, spec *v1.SeventeenLandsDeckStep) (engine.Step, error) {
	return NewDeckStep(collector, spec.DraftID, spec.DeckIndex), nil
}
