package seventeenlands

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/mtgmine/mtgmine/internal/apiclient"
	"github.com/mtgmine/mtgmine/internal/errs"
	"github.com/mtgmine/mtgmine/internal/table"
)

var (
	TrophyDecksColumns = []string{"time", "colors", "wins", "losses", "start_rank", "end_rank", "draft_id", "deck_index"}
	PicksColumns       = []string{"expansion", "pack_number", "pick_number", "colors", "pick", "available", "known_missing", "pool", "possible_maindeck", "probable_sideboard"}
	DeckColumns        = []string{"group", "name"}

	cardPerformanceRenames = map[string]string{
		"total_times_seen":   "seen_count",
		"avg_seen_position":  "avg_last_seen_at",
		"total_times_picked": "pick_count",
		"avg_pick_position":  "avg_taken_at",
	}
)

// PlayDrawStats returns on-the-play win rates and game lengths per
// expansion and event type.
func (c *Collector) PlayDrawStats(ctx context.Context) (*table.Table, error) {
	return c.list(ctx, "/data/play_draw", nil)
}

type TrophyDecksOptions struct {
	Expansion string `validate:"required"`
	EventType string
}

// TrophyDecks returns recent decks that reached the maximum number of wins.
// draft_id and deck_index identify the deck for Draft and Deck.
func (c *Collector) TrophyDecks(ctx context.Context, opts TrophyDecksOptions) (*table.Table, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid trophy decks options: %w", err)
	}

	params := apiclient.NewParams().
		Set("expansion", opts.Expansion).
		Set("format", eventTypeOrDefault(opts.EventType))

	tbl, err := c.list(ctx, "/data/trophies", params)
	if err != nil {
		return nil, err
	}

	tbl = tbl.Rename(map[string]string{"aggregate_id": "draft_id"}).Select(TrophyDecksColumns...)
	return tbl.Apply("time", parseTimestamp)
}

type namedCard struct {
	Name string `json:"name"`
}

func cardNames(cards []namedCard) []string {
	return lo.Map(cards, func(c namedCard, _ int) string { return c.Name })
}

type draftPick struct {
	PackNumber        int           `json:"pack_number"`
	PickNumber        int           `json:"pick_number"`
	Colors            any           `json:"colors"`
	Pick              namedCard     `json:"pick"`
	Available         []namedCard   `json:"available"`
	KnownMissing      []namedCard   `json:"known_missing"`
	Pool              []namedCard   `json:"pool"`
	PossibleMaindeck  [][]namedCard `json:"possible_maindeck"`
	ProbableSideboard [][]namedCard `json:"probable_sideboard"`
}

type draftPayload struct {
	Expansion           string                    `json:"expansion"`
	Picks               []draftPick               `json:"picks"`
	CardPerformanceData map[string]map[string]any `json:"card_performance_data"`
}

type draftEvent struct {
	Type    string        `json:"type"`
	Payload *draftPayload `json:"payload"`
}

// DraftResult is one draft: every pick, plus the card statistics 17Lands
// showed the drafter at the time.
type DraftResult struct {
	Picks           *table.Table
	CardPerformance *table.Table
}

// Draft returns the pick-by-pick record of draftID. The endpoint answers
// with a server-sent event stream; only a complete draft is accepted.
func (c *Collector) Draft(ctx context.Context, draftID string) (*DraftResult, error) {
	if draftID == "" {
		return nil, fmt.Errorf("draft_id is required")
	}

	body, err := c.client.GetText(ctx, "/data/draft/stream", apiclient.NewParams().Set("draft_id", draftID))
	if err != nil {
		return nil, err
	}

	data, err := lastEventData(body)
	if err != nil {
		return nil, err
	}

	var event draftEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, &errs.FormatError{Reason: "failed to decode draft event", Err: err}
	}
	if event.Type != "complete" {
		return nil, errs.Formatf("draft %s is not complete: event type %q", draftID, event.Type)
	}
	if event.Payload == nil {
		return nil, errs.Formatf("draft %s has no payload", draftID)
	}

	return &DraftResult{
		Picks:           picksTable(event.Payload),
		CardPerformance: cardPerformanceTable(event.Payload.CardPerformanceData),
	}, nil
}

// lastEventData returns the data of the last event in a server-sent event
// stream ("data: {...}\n\n").
func lastEventData(stream string) (string, error) {
	var last string
	for _, line := range strings.Split(stream, "\n") {
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			last = strings.TrimSpace(rest)
		}
	}
	if last == "" {
		return "", errs.Formatf("draft stream carries no data event")
	}
	return last, nil
}

func picksTable(payload *draftPayload) *table.Table {
	tbl := table.New(PicksColumns...)
	for _, pick := range payload.Picks {
		tbl.Append(table.Record{
			"expansion":          payload.Expansion,
			"pack_number":        pick.PackNumber,
			"pick_number":        pick.PickNumber,
			"colors":             pick.Colors,
			"pick":               pick.Pick.Name,
			"available":          cardNames(pick.Available),
			"known_missing":      cardNames(pick.KnownMissing),
			"pool":               cardNames(pick.Pool),
			"possible_maindeck":  cardNames(lo.Flatten(pick.PossibleMaindeck)),
			"probable_sideboard": cardNames(lo.Flatten(pick.ProbableSideboard)),
		})
	}
	return tbl
}

// cardPerformanceTable turns the name-keyed statistics into one row per
// card, sorted by name.
func cardPerformanceTable(data map[string]map[string]any) *table.Table {
	names := lo.Keys(data)
	slices.Sort(names)

	tbl := table.New("name")
	for _, name := range names {
		row := make(table.Record, len(data[name])+1)
		for k, v := range data[name] {
			row[k] = v
		}
		row["name"] = name
		tbl.Append(row)
	}
	return tbl.Rename(cardPerformanceRenames)
}

// DeckMetadata describes the event a deck was played in. Links are paths
// relative to the 17Lands site, except SealedDeckTechLink.
type DeckMetadata struct {
	Expansion          string   `json:"expansion"`
	EventType          string   `json:"event_type"`
	Wins               int      `json:"wins"`
	Losses             int      `json:"losses"`
	PoolLink           string   `json:"pool_link"`
	DeckLinks          []string `json:"deck_links"`
	DetailsLink        string   `json:"details_link"`
	DraftLink          string   `json:"draft_link"`
	SealedDeckTechLink string   `json:"sealed_deck_tech_link"`
}

type deckResponse struct {
	Groups []struct {
		Name  string      `json:"name"`
		Cards []namedCard `json:"cards"`
	} `json:"groups"`
	EventInfo *struct {
		Expansion   string   `json:"expansion"`
		Format      string   `json:"format"`
		Wins        int      `json:"wins"`
		Losses      int      `json:"losses"`
		PoolLink    string   `json:"pool_link"`
		DeckLinks   []string `json:"deck_links"`
		DetailsLink string   `json:"details_link"`
		DraftLink   string   `json:"draft_link"`
	} `json:"event_info"`
	BuilderLink string `json:"builder_link"`
}

// Deck returns the cards of one deck built from draftID, one row per card
// copy with its group (Maindeck or Sideboard), and the deck's metadata.
func (c *Collector) Deck(ctx context.Context, draftID string, deckIndex int) (*table.Table, *DeckMetadata, error) {
	if draftID == "" {
		return nil, nil, fmt.Errorf("draft_id is required")
	}
	if deckIndex < 0 {
		return nil, nil, fmt.Errorf("deck_index must not be negative, got %d", deckIndex)
	}

	params := apiclient.NewParams().
		Set("draft_id", draftID).
		Set("deck_index", deckIndex)

	body, err := c.client.GetText(ctx, "/data/deck", params)
	if err != nil {
		return nil, nil, err
	}

	var resp deckResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, nil, &errs.FormatError{Reason: "failed to decode deck", Err: err}
	}
	if resp.EventInfo == nil {
		return nil, nil, errs.Formatf("deck %s/%d has no event_info", draftID, deckIndex)
	}

	deck := table.New(DeckColumns...)
	for _, group := range resp.Groups {
		for _, card := range group.Cards {
			deck.Append(table.Record{"group": group.Name, "name": card.Name})
		}
	}

	info := resp.EventInfo
	return deck, &DeckMetadata{
		Expansion:          info.Expansion,
		EventType:          info.Format,
		Wins:               info.Wins,
		Losses:             info.Losses,
		PoolLink:           info.PoolLink,
		DeckLinks:          info.DeckLinks,
		DetailsLink:        info.DetailsLink,
		DraftLink:          info.DraftLink,
		SealedDeckTechLink: resp.BuilderLink,
	}, nil
}
