package seventeenlands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mtgmine/mtgmine/internal/apiclient"
	"github.com/mtgmine/mtgmine/internal/errs"
	"github.com/mtgmine/mtgmine/internal/table"
)

var (
	ColorRatingsColumns = []string{"is_summary", "color_name", "wins", "games"}

	cardRatingsUpstreamColumns = []string{
		"name",
		"color",
		"rarity",
		"seen_count",
		"avg_seen",
		"pick_count",
		"avg_pick",
		"game_count",
		"win_rate",
		"opening_hand_game_count",
		"opening_hand_win_rate",
		"drawn_game_count",
		"drawn_win_rate",
		"ever_drawn_game_count",
		"ever_drawn_win_rate",
		"never_drawn_game_count",
		"never_drawn_win_rate",
		"drawn_improvement_win_rate",
	}

	cardRatingsRenames = map[string]string{
		"avg_seen":                   "avg_last_seen_at",
		"avg_pick":                   "avg_taken_at",
		"game_count":                 "games_played_count",
		"win_rate":                   "games_played_win_rate",
		"ever_drawn_game_count":      "in_hand_game_count",
		"ever_drawn_win_rate":        "in_hand_win_rate",
		"never_drawn_game_count":     "not_drawn_game_count",
		"never_drawn_win_rate":       "not_drawn_win_rate",
		"drawn_improvement_win_rate": "improvement_when_drawn",
	}

	CardEvaluationsColumns = []string{"date", "name", "pick_count", "avg_taken_at", "seen_count", "avg_last_seen_at"}
)

// DateRange bounds an aggregate; both ends are inclusive days.
type DateRange struct {
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtefield=StartDate"`
}

type ColorRatingsOptions struct {
	Expansion string `validate:"required"`
	DateRange
	// EventType defaults to PremierDraft.
	EventType     string
	CombineSplash bool
	UserGroup     string `validate:"omitempty,oneof=top middle bottom"`
}

// ColorRatings returns games and wins per deck color combination.
func (c *Collector) ColorRatings(ctx context.Context, opts ColorRatingsOptions) (*table.Table, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid color ratings options: %w", err)
	}

	params := apiclient.NewParams().
		Set("expansion", opts.Expansion).
		Set("event_type", eventTypeOrDefault(opts.EventType)).
		Set("start_date", opts.StartDate).
		Set("end_date", opts.EndDate).
		Set("combine_splash", opts.CombineSplash).
		Set("user_group", opts.UserGroup)

	tbl, err := c.list(ctx, "/color_ratings/data", params)
	if err != nil {
		return nil, err
	}
	return tbl.Select(ColorRatingsColumns...), nil
}

type CardRatingsOptions struct {
	Expansion string `validate:"required"`
	DateRange
	EventType string
	UserGroup string `validate:"omitempty,oneof=top middle bottom"`
	// DeckColors restricts the statistics to decks of one color
	// combination, e.g. "UR".
	DeckColors string
}

// CardRatings returns per-card pick and win-rate statistics. Upstream
// metric names are replaced by their descriptive form, e.g. avg_pick
// becomes avg_taken_at.
func (c *Collector) CardRatings(ctx context.Context, opts CardRatingsOptions) (*table.Table, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid card ratings options: %w", err)
	}

	params := apiclient.NewParams().
		Set("expansion", opts.Expansion).
		Set("format", eventTypeOrDefault(opts.EventType)).
		Set("start_date", opts.StartDate).
		Set("end_date", opts.EndDate).
		Set("user_group", opts.UserGroup).
		Set("colors", opts.DeckColors)

	tbl, err := c.list(ctx, "/card_ratings/data", params)
	if err != nil {
		return nil, err
	}
	return tbl.Select(cardRatingsUpstreamColumns...).Rename(cardRatingsRenames), nil
}

type CardEvaluationsOptions struct {
	Expansion string `validate:"required"`
	DateRange
	EventType string
	Rarity    string `validate:"omitempty,oneof=common uncommon rare mythic"`
	Color     string `validate:"omitempty,oneof=Colorless Multicolor W U B R G"`
}

type evaluationCell struct {
	PickN   any `json:"pick_n"`
	PickAvg any `json:"pick_avg"`
	SeenN   any `json:"seen_n"`
	SeenAvg any `json:"seen_avg"`
}

type evaluationResponse struct {
	Dates []string           `json:"dates"`
	Cards []string           `json:"cards"`
	Data  [][]evaluationCell `json:"data"`
}

// CardEvaluations returns how the pick order of each card evolved, one row
// per (date, card). Repeated rows are dropped.
func (c *Collector) CardEvaluations(ctx context.Context, opts CardEvaluationsOptions) (*table.Table, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid card evaluations options: %w", err)
	}

	params := apiclient.NewParams().
		Set("expansion", opts.Expansion).
		Set("format", eventTypeOrDefault(opts.EventType)).
		Set("start_date", opts.StartDate).
		Set("end_date", opts.EndDate).
		Set("rarity", opts.Rarity).
		Set("color", opts.Color)

	body, err := c.client.GetText(ctx, "/card_evaluation_metagame/data", params)
	if err != nil {
		return nil, err
	}

	var resp evaluationResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, &errs.FormatError{Reason: "failed to decode card evaluations", Err: err}
	}
	if len(resp.Data) < len(resp.Dates) {
		return nil, errs.Formatf("card evaluations have %d dates but %d data rows", len(resp.Dates), len(resp.Data))
	}

	tbl := table.New(CardEvaluationsColumns...)
	for d, day := range resp.Dates {
		date, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, &errs.FormatError{Reason: fmt.Sprintf("invalid evaluation date %q", day), Err: err}
		}
		if len(resp.Data[d]) < len(resp.Cards) {
			return nil, errs.Formatf("card evaluations for %s cover %d of %d cards", day, len(resp.Data[d]), len(resp.Cards))
		}

		for i, name := range resp.Cards {
			cell := resp.Data[d][i]
			tbl.Append(table.Record{
				"date":             date,
				"name":             name,
				"pick_count":       cell.PickN,
				"avg_taken_at":     cell.PickAvg,
				"seen_count":       cell.SeenN,
				"avg_last_seen_at": cell.SeenAvg,
			})
		}
	}

	return tbl.DropDuplicates(), nil
}
