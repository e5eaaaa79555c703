package scryfall

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/samber/lo"

	"github.com/mtgmine/mtgmine/internal/apiclient"
	"github.com/mtgmine/mtgmine/internal/errs"
	"github.com/mtgmine/mtgmine/internal/table"
)

const (
	namedPath        = "/cards/named"
	autocompletePath = "/cards/autocomplete"

	// MinSuggestionScore is the Jaro-Winkler similarity a candidate needs
	// to be offered as a suggestion.
	MinSuggestionScore = 0.8
)

// NamedOptions select a single card. Exactly one of Exact and Fuzzy is set.
type NamedOptions struct {
	Exact      string `validate:"required_without=Fuzzy,excluded_with=Fuzzy"`
	Fuzzy      string `validate:"required_without=Exact"`
	Set        string
	Simplified bool
}

func (o NamedOptions) query() string {
	if o.Exact != "" {
		return o.Exact
	}
	return o.Fuzzy
}

// SearchByName returns the single card matching opts. When nothing matches,
// or a fuzzy name matches several cards, it fails with *errs.NotFoundError.
// Names are trimmed, so a blank name counts as unset.
func (c *Collector) SearchByName(ctx context.Context, opts NamedOptions) (table.Record, error) {
	opts.Exact = strings.TrimSpace(opts.Exact)
	opts.Fuzzy = strings.TrimSpace(opts.Fuzzy)
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("exactly one of exact or fuzzy must be set: %w", err)
	}

	params := apiclient.NewParams().
		Set("exact", opts.Exact).
		Set("fuzzy", opts.Fuzzy).
		Set("format", "json").
		Set("set", opts.Set).
		Set("pretty", false)

	body, err := c.client.Get(ctx, namedPath, params)
	if err != nil {
		return nil, mapError(opts.query(), err)
	}
	if err := checkEnvelope(opts.query(), namedPath, body); err != nil {
		return nil, err
	}

	card, ok := body.(map[string]any)
	if !ok {
		return nil, errs.Formatf("expected a card object, got %T", body)
	}

	if !opts.Simplified {
		return card, nil
	}

	out := make(table.Record, len(SimplifiedColumns))
	for _, col := range SimplifiedColumns {
		if v, ok := card[col]; ok {
			out[col] = v
		}
	}
	return out, nil
}

// Autocomplete returns up to 20 card names starting with, or containing,
// partial.
func (c *Collector) Autocomplete(ctx context.Context, partial string) ([]string, error) {
	body, err := c.client.Get(ctx, autocompletePath, apiclient.NewParams().Set("q", partial))
	if err != nil {
		return nil, err
	}

	page, err := apiclient.ParsePage(body)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(page.Data))
	for i, item := range page.Data {
		name, ok := item.(string)
		if !ok {
			return nil, errs.Formatf("autocomplete entry %d is %T, not a string", i, item)
		}
		names = append(names, name)
	}
	return names, nil
}

// Suggest looks up names close to a name that did not resolve. Candidates
// come from autocompleting the name's first word.
func (c *Collector) Suggest(ctx context.Context, name string, limit int) ([]string, error) {
	words := strings.Fields(name)
	if len(words) == 0 {
		return nil, nil
	}

	candidates, err := c.Autocomplete(ctx, words[0])
	if err != nil {
		return nil, err
	}
	return SuggestNames(name, candidates, limit), nil
}

// SuggestNames ranks candidates by case-insensitive Jaro-Winkler similarity
// to name and returns at most limit of those scoring MinSuggestionScore or
// better, best first. limit <= 0 means no limit.
func SuggestNames(name string, candidates []string, limit int) []string {
	type scored struct {
		name  string
		score float64
	}

	target := strings.ToLower(name)
	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range lo.Uniq(candidates) {
		score := matchr.JaroWinkler(target, strings.ToLower(candidate), false)
		if score >= MinSuggestionScore {
			ranked = append(ranked, scored{name: candidate, score: score})
		}
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return strings.Compare(a.name, b.name)
		}
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return lo.Map(ranked, func(s scored, _ int) string { return s.name })
}
