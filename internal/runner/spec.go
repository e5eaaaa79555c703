package runner

import (
	"fmt"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
	"github.com/mtgmine/mtgmine/internal/collectors/scryfall"
	"github.com/mtgmine/mtgmine/internal/collectors/seventeenlands"
	"github.com/mtgmine/mtgmine/internal/engine/steps"
)

// ResolvedSpec holds a kind identifier and the spec for that kind.
type ResolvedSpec struct {
	Kind string
	Spec any
	// CollectorKind is the collector kind a step needs; empty for steps
	// that run without one.
	CollectorKind string
}

// ResolveCollectorSpec extracts the kind and spec from a v1.Collector.
// Exactly one collector type must be set.
func ResolveCollectorSpec(c v1.Collector) (ResolvedSpec, error) {
	var resolved []ResolvedSpec
	if c.Scryfall != nil {
		resolved = append(resolved, ResolvedSpec{Kind: scryfall.CollectorKind, Spec: c.Scryfall})
	}
	if c.SeventeenLands != nil {
		resolved = append(resolved, ResolvedSpec{Kind: seventeenlands.CollectorKind, Spec: c.SeventeenLands})
	}

	switch len(resolved) {
	case 0:
		return ResolvedSpec{}, fmt.Errorf("collector %q has no type specified", c.ID)
	case 1:
		return resolved[0], nil
	default:
		return ResolvedSpec{}, fmt.Errorf("collector %q specifies more than one type", c.ID)
	}
}

// ResolveStepSpec extracts the kind and spec from a v1.Step. Exactly one
// step type must be set.
func ResolveStepSpec(s v1.Step) (ResolvedSpec, error) {
	var resolved []ResolvedSpec
	add := func(set bool, kind, collectorKind string, spec any) {
		if set {
			resolved = append(resolved, ResolvedSpec{Kind: kind, Spec: spec, CollectorKind: collectorKind})
		}
	}

	add(s.ScryfallSearch != nil, scryfall.SearchStepKind, scryfall.CollectorKind, s.ScryfallSearch)
	add(s.ScryfallNamed != nil, scryfall.NamedStepKind, scryfall.CollectorKind, s.ScryfallNamed)
	add(s.SeventeenLandsCatalog != nil, seventeenlands.CatalogStepKind, seventeenlands.CollectorKind, s.SeventeenLandsCatalog)
	add(s.SeventeenLandsColorRatings != nil, seventeenlands.ColorRatingsStepKind, seventeenlands.CollectorKind, s.SeventeenLandsColorRatings)
	add(s.SeventeenLandsCardRatings != nil, seventeenlands.CardRatingsStepKind, seventeenlands.CollectorKind, s.SeventeenLandsCardRatings)
	add(s.SeventeenLandsCardEvaluations != nil, seventeenlands.CardEvaluationsStepKind, seventeenlands.CollectorKind, s.SeventeenLandsCardEvaluations)
	add(s.SeventeenLandsPlayDraw != nil, seventeenlands.PlayDrawStepKind, seventeenlands.CollectorKind, s.SeventeenLandsPlayDraw)
	add(s.SeventeenLandsTrophies != nil, seventeenlands.TrophiesStepKind, seventeenlands.CollectorKind, s.SeventeenLandsTrophies)
	add(s.SeventeenLandsDraft != nil, seventeenlands.DraftStepKind, seventeenlands.CollectorKind, s.SeventeenLandsDraft)
	add(s.SeventeenLandsDeck != nil, seventeenlands.DeckStepKind, seventeenlands.CollectorKind, s.SeventeenLandsDeck)
	add(s.Static != nil, steps.StaticStepKind, "", s.Static)

	switch len(resolved) {
	case 0:
		return ResolvedSpec{}, fmt.Errorf("step %q has no type specified", s.ID)
	case 1:
		return resolved[0], nil
	default:
		kinds := make([]string, len(resolved))
		for i, r := range resolved {
			kinds[i] = r.Kind
		}
		return ResolvedSpec{}, fmt.Errorf("step %q specifies more than one type: %v", s.ID, kinds)
	}
}

// defaultCollectorSpec is the spec of the collector a step gets when it
// does not reference one.
func defaultCollectorSpec(kind string) (any, error) {
	switch kind {
	case scryfall.CollectorKind:
		return &v1.ScryfallCollector{}, nil
	case seventeenlands.CollectorKind:
		return &v1.SeventeenLandsCollector{}, nil
	default:
		return nil, fmt.Errorf("no default collector for kind %q", kind)
	}
}
