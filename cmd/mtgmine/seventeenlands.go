package main

import (
	"context"

	"github.com/urfave/cli/v3"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
	"github.com/mtgmine/mtgmine/internal/collectors/seventeenlands"
)

func flags(groups ...[]cli.Flag) []cli.Flag {
	var all []cli.Flag
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

func expansionArg() cli.Argument {
	return &cli.StringArg{
		Name:      "expansion",
		UsageText: "The set code, e.g. MKM",
	}
}

var catalogCommand = &cli.Command{
	Name:      "catalog",
	Usage:     "List the colors, expansions or event types 17Lands tracks",
	Flags:     outputFlags(),
	Arguments: []cli.Argument{&cli.StringArg{Name: "catalog", UsageText: "colors, expansions or event_types"}},
	Action: func(ctx context.Context, command *cli.Command) error {
		catalog, err := requiredArg(command, "catalog")
		if err != nil {
			return err
		}
		return runStep(ctx, command, v1.Step{
			ID:                    "catalog",
			SeventeenLandsCatalog: &v1.SeventeenLandsCatalogStep{Catalog: catalog},
		})
	},
}

var colorRatingsCommand = &cli.Command{
	Name:  "color-ratings",
	Usage: "Win rates per deck color combination",
	Flags: flags(dateRangeFlags(), []cli.Flag{
		eventTypeFlag(),
		&cli.BoolFlag{Name: "combine-splash", Usage: "Count splashed decks with their main colors"},
		&cli.StringFlag{Name: "user-group", Usage: "Restrict to top, middle or bottom players"},
	}, outputFlags()),
	Arguments: []cli.Argument{expansionArg()},
	Action: func(ctx context.Context, command *cli.Command) error {
		expansion, err := requiredArg(command, "expansion")
		if err != nil {
			return err
		}
		return runStep(ctx, command, v1.Step{
			ID: "color-ratings",
			SeventeenLandsColorRatings: &v1.SeventeenLandsColorRatingsStep{
				Expansion:     expansion,
				DateRange:     dateRangeFromFlags(command),
				EventType:     command.String("event-type"),
				CombineSplash: command.Bool("combine-splash"),
				UserGroup:     optionalString(command, "user-group"),
			},
		})
	},
}

var cardRatingsCommand = &cli.Command{
	Name:  "card-ratings",
	Usage: "Pick order and win-rate statistics per card",
	Flags: flags(dateRangeFlags(), []cli.Flag{
		eventTypeFlag(),
		&cli.StringFlag{Name: "user-group", Usage: "Restrict to top, middle or bottom players"},
		&cli.StringFlag{Name: "deck-colors", Usage: "Restrict to decks of one color combination, e.g. UR"},
	}, outputFlags()),
	Arguments: []cli.Argument{expansionArg()},
	Action: func(ctx context.Context, command *cli.Command) error {
		expansion, err := requiredArg(command, "expansion")
		if err != nil {
			return err
		}
		return runStep(ctx, command, v1.Step{
			ID: "card-ratings",
			SeventeenLandsCardRatings: &v1.SeventeenLandsCardRatingsStep{
				Expansion:  expansion,
				DateRange:  dateRangeFromFlags(command),
				EventType:  command.String("event-type"),
				UserGroup:  optionalString(command, "user-group"),
				DeckColors: optionalString(command, "deck-colors"),
			},
		})
	},
}

var cardEvaluationsCommand = &cli.Command{
	Name:  "card-evaluations",
	Usage: "Day-by-day pick rate and average pick position per card",
	Flags: flags(dateRangeFlags(), []cli.Flag{
		eventTypeFlag(),
		&cli.StringFlag{Name: "rarity", Usage: "Restrict to one rarity: common, uncommon, rare or mythic"},
		&cli.StringFlag{Name: "color", Usage: "Restrict to one color: W, U, B, R, G, Multicolor or Colorless"},
	}, outputFlags()),
	Arguments: []cli.Argument{expansionArg()},
	Action: func(ctx context.Context, command *cli.Command) error {
		expansion, err := requiredArg(command, "expansion")
		if err != nil {
			return err
		}
		return runStep(ctx, command, v1.Step{
			ID: "card-evaluations",
			SeventeenLandsCardEvaluations: &v1.SeventeenLandsCardEvaluationsStep{
				Expansion: expansion,
				DateRange: dateRangeFromFlags(command),
				EventType: command.String("event-type"),
				Rarity:    optionalString(command, "rarity"),
				Color:     optionalString(command, "color"),
			},
		})
	},
}

var playDrawCommand = &cli.Command{
	Name:  "play-draw",
	Usage: "On-the-play win rates per expansion and event type",
	Flags: outputFlags(),
	Action: func(ctx context.Context, command *cli.Command) error {
		return runStep(ctx, command, v1.Step{
			ID:                     "play-draw",
			SeventeenLandsPlayDraw: &v1.SeventeenLandsPlayDrawStep{},
		})
	},
}

var trophiesCommand = &cli.Command{
	Name:      "trophies",
	Usage:     "Recent decks that reached the maximum number of wins",
	Flags:     flags([]cli.Flag{eventTypeFlag()}, outputFlags()),
	Arguments: []cli.Argument{expansionArg()},
	Action: func(ctx context.Context, command *cli.Command) error {
		expansion, err := requiredArg(command, "expansion")
		if err != nil {
			return err
		}
		return runStep(ctx, command, v1.Step{
			ID: "trophies",
			SeventeenLandsTrophies: &v1.SeventeenLandsTrophiesStep{
				Expansion: expansion,
				EventType: command.String("event-type"),
			},
		})
	},
}

var draftCommand = &cli.Command{
	Name:  "draft",
	Usage: "Every pick of one draft",
	Flags: flags([]cli.Flag{
		&cli.BoolFlag{Name: "card-performance", Usage: "Show the card statistics seen during the draft instead of the picks"},
	}, outputFlags()),
	Arguments: []cli.Argument{&cli.StringArg{Name: "draft-id", UsageText: "The draft ID, e.g. from the trophies command"}},
	Action: func(ctx context.Context, command *cli.Command) error {
		draftID, err := requiredArg(command, "draft-id")
		if err != nil {
			return err
		}

		table := seventeenlands.DraftTablePicks
		if command.Bool("card-performance") {
			table = seventeenlands.DraftTableCardPerformance
		}
		return runStep(ctx, command, v1.Step{
			ID:                  "draft",
			SeventeenLandsDraft: &v1.SeventeenLandsDraftStep{DraftID: draftID, Table: table},
		})
	},
}

var deckCommand = &cli.Command{
	Name:  "deck",
	Usage: "The cards of one deck built from a draft",
	Flags: flags([]cli.Flag{
		&cli.IntFlag{Name: "index", Usage: "Which deck of the draft, starting at 0"},
	}, outputFlags()),
	Arguments: []cli.Argument{&cli.StringArg{Name: "draft-id", UsageText: "The draft ID, e.g. from the trophies command"}},
	Action: func(ctx context.Context, command *cli.Command) error {
		draftID, err := requiredArg(command, "draft-id")
		if err != nil {
			return err
		}
		return runStep(ctx, command, v1.Step{
			ID:                 "deck",
			SeventeenLandsDeck: &v1.SeventeenLandsDeckStep{DraftID: draftID, DeckIndex: int(command.Int("index"))},
		})
	},
}
