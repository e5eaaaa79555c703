package scryfall

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mtgmine/mtgmine/internal/apiclient"
	"github.com/mtgmine/mtgmine/internal/errs"
	"github.com/mtgmine/mtgmine/internal/table"
)

const searchPath = "/cards/search"

// SearchOptions mirror the parameters of the card search endpoint. Query
// uses the Scryfall search grammar, e.g. "c:red pow:3".
type SearchOptions struct {
	Query               string `validate:"required,notblank"`
	Unique              string `validate:"omitempty,oneof=cards art prints"`
	Order               string `validate:"omitempty,oneof=name set released rarity color usd tix eur cmc power toughness edhrec penny artist review"`
	Direction           string `validate:"omitempty,oneof=auto asc desc"`
	IncludeExtras       bool
	IncludeMultilingual bool
	IncludeVariations   bool
	// Simplified projects the result onto SimplifiedColumns.
	Simplified bool
}

func (o SearchOptions) params() *apiclient.Params {
	return apiclient.NewParams().
		Set("q", o.Query).
		Set("unique", o.Unique).
		Set("order", o.Order).
		Set("dir", o.Direction).
		Set("include_extras", o.IncludeExtras).
		Set("include_multilingual", o.IncludeMultilingual).
		Set("include_variations", o.IncludeVariations).
		Set("page", 1).
		Set("format", "json").
		Set("pretty", false)
}

func (c *Collector) search(ctx context.Context, opts SearchOptions) ([]any, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid search options: %w", err)
	}

	items, err := apiclient.Paginate(ctx, c.client, searchPath, opts.params())
	if err != nil {
		return nil, mapError(opts.Query, err)
	}
	return items, nil
}

// SearchByQuery returns every card matching opts, across all result pages,
// one row per card. released_at is parsed into a time.Time. A query that
// matches nothing fails with *errs.NotFoundError.
func (c *Collector) SearchByQuery(ctx context.Context, opts SearchOptions) (*table.Table, error) {
	items, err := c.search(ctx, opts)
	if err != nil {
		return nil, err
	}

	tbl, err := table.FromJSON(items)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize search results: %w", err)
	}

	if tbl.HasColumn("released_at") {
		tbl, err = tbl.Apply("released_at", parseReleaseDate)
		if err != nil {
			return nil, err
		}
	}

	if opts.Simplified {
		tbl = tbl.Select(SimplifiedColumns...)
	}

	return tbl, nil
}

// SearchCards runs the same search as SearchByQuery but decodes each card
// into a Card. Simplified is ignored.
func (c *Collector) SearchCards(ctx context.Context, opts SearchOptions) ([]Card, error) {
	items, err := c.search(ctx, opts)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode search results: %w", err)
	}

	var cards []Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, &errs.FormatError{Reason: "failed to decode cards", Err: err}
	}
	return cards, nil
}
