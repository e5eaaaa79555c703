package seventeenlands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mtgmine/mtgmine/internal/engine"
	"github.com/mtgmine/mtgmine/internal/table"
)

const (
	CatalogStepKind         = "seventeenlands_catalog"
	ColorRatingsStepKind    = "seventeenlands_color_ratings"
	CardRatingsStepKind     = "seventeenlands_card_ratings"
	CardEvaluationsStepKind = "seventeenlands_card_evaluations"
	PlayDrawStepKind        = "seventeenlands_play_draw"
	TrophiesStepKind        = "seventeenlands_trophies"
	DraftStepKind           = "seventeenlands_draft"
	DeckStepKind            = "seventeenlands_deck"
)

const (
	CatalogColors     = "colors"
	CatalogExpansions = "expansions"
	CatalogEventTypes = "event_types"

	DraftTablePicks           = "picks"
	DraftTableCardPerformance = "card_performance"
)

func tableResult(tbl *table.Table, meta map[string]string) engine.Result {
	if meta == nil {
		meta = map[string]string{}
	}
	meta["rows"] = strconv.Itoa(tbl.Len())
	return engine.Result{Data: tbl, Meta: meta}
}

func NewCatalogStep(collector *Collector, catalog string) (engine.Step, error) {
	var fetch func(context.Context) ([]string, error)
	switch catalog {
	case CatalogColors:
		fetch = collector.Colors
	case CatalogExpansions:
		fetch = collector.Expansions
	case CatalogEventTypes:
		fetch = collector.EventTypes
	default:
		return nil, fmt.Errorf("unknown catalog %q, expected one of %s, %s, %s", catalog, CatalogColors, CatalogExpansions, CatalogEventTypes)
	}

	return engine.StepFunction(fmt.Sprintf("%s(%s)", CatalogStepKind, catalog), CatalogStepKind, func(ctx context.Context) (engine.Result, error) {
		values, err := fetch(ctx)
		if err != nil {
			return engine.Result{}, err
		}
		return engine.Result{
			Data: values,
			Meta: map[string]string{"catalog": catalog, "rows": strconv.Itoa(len(values))},
		}, nil
	}), nil
}

func NewColorRatingsStep(collector *Collector, opts ColorRatingsOptions) engine.Step {
	return engine.StepFunction(fmt.Sprintf("%s(%s)", ColorRatingsStepKind, opts.Expansion), ColorRatingsStepKind, func(ctx context.Context) (engine.Result, error) {
		tbl, err := collector.ColorRatings(ctx, opts)
		if err != nil {
			return engine.Result{}, err
		}
		return tableResult(tbl, map[string]string{
			"expansion":  opts.Expansion,
			"event_type": eventTypeOrDefault(opts.EventType),
		}), nil
	})
}

func NewCardRatingsStep(collector *Collector, opts CardRatingsOptions) engine.Step {
	return engine.StepFunction(fmt.Sprintf("%s(%s)", CardRatingsStepKind, opts.Expansion), CardRatingsStepKind, func(ctx context.Context) (engine.Result, error) {
		tbl, err := collector.CardRatings(ctx, opts)
		if err != nil {
			return engine.Result{}, err
		}
		return tableResult(tbl, map[string]string{
			"expansion":  opts.Expansion,
			"event_type": eventTypeOrDefault(opts.EventType),
		}), nil
	})
}

func NewCardEvaluationsStep(collector *Collector, opts CardEvaluationsOptions) engine.Step {
	return engine.StepFunction(fmt.Sprintf("%s(%s)", CardEvaluationsStepKind, opts.Expansion), CardEvaluationsStepKind, func(ctx context.Context) (engine.Result, error) {
		tbl, err := collector.CardEvaluations(ctx, opts)
		if err != nil {
			return engine.Result{}, err
		}
		return tableResult(tbl, map[string]string{
			"expansion":  opts.Expansion,
			"event_type": eventTypeOrDefault(opts.EventType),
		}), nil
	})
}

func NewPlayDrawStep(collector *Collector) engine.Step {
	return engine.StepFunction(PlayDrawStepKind, PlayDrawStepKind, func(ctx context.Context) (engine.Result, error) {
		tbl, err := collector.PlayDrawStats(ctx)
		if err != nil {
			return engine.Result{}, err
		}
		return tableResult(tbl, nil), nil
	})
}

func NewTrophiesStep(collector *Collector, opts TrophyDecksOptions) engine.Step {
	return engine.StepFunction(fmt.Sprintf("%s(%s)", TrophiesStepKind, opts.Expansion), TrophiesStepKind, func(ctx context.Context) (engine.Result, error) {
		tbl, err := collector.TrophyDecks(ctx, opts)
		if err != nil {
			return engine.Result{}, err
		}
		return tableResult(tbl, map[string]string{
			"expansion":  opts.Expansion,
			"event_type": eventTypeOrDefault(opts.EventType),
		}), nil
	})
}

// NewDraftStep fetches one draft and yields either its picks or its card
// performance table.
func NewDraftStep(collector *Collector, draftID string, which string) (engine.Step, error) {
	if which == "" {
		which = DraftTablePicks
	}
	if which != DraftTablePicks && which != DraftTableCardPerformance {
		return nil, fmt.Errorf("unknown draft table %q, expected %s or %s", which, DraftTablePicks, DraftTableCardPerformance)
	}

	return engine.StepFunction(fmt.Sprintf("%s(%s)", DraftStepKind, draftID), DraftStepKind, func(ctx context.Context) (engine.Result, error) {
		draft, err := collector.Draft(ctx, draftID)
		if err != nil {
			return engine.Result{}, err
		}

		tbl := draft.Picks
		if which == DraftTableCardPerformance {
			tbl = draft.CardPerformance
		}
		return tableResult(tbl, map[string]string{"draft_id": draftID, "table": which}), nil
	}), nil
}

// NewDeckStep fetches one deck; its metadata travels in the result's Meta.
func NewDeckStep(collector *Collector, draftID string, deckIndex int) engine.Step {
	return engine.StepFunction(fmt.Sprintf("%s(%s/%d)", DeckStepKind, draftID, deckIndex), DeckStepKind, func(ctx context.Context) (engine.Result, error) {
		deck, meta, err := collector.Deck(ctx, draftID, deckIndex)
		if err != nil {
			return engine.Result{}, err
		}

		return tableResult(deck, map[string]string{
			"draft_id":              draftID,
			"deck_index":            strconv.Itoa(deckIndex),
			"expansion":             meta.Expansion,
			"event_type":            meta.EventType,
			"wins":                  strconv.Itoa(meta.Wins),
			"losses":                strconv.Itoa(meta.Losses),
			"pool_link":             meta.PoolLink,
			"deck_links":            strings.Join(meta.DeckLinks, ","),
			"details_link":          meta.DetailsLink,
			"draft_link":            meta.DraftLink,
			"sealed_deck_tech_link": meta.SealedDeckTechLink,
		}), nil
	})
}
