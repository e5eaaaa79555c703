package main

import (
	"context"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
)

var searchCommand = &cli.Command{
	Name:  "search",
	Usage: "Search Scryfall with its full-text query syntax",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "unique", Usage: "Collapse duplicates: cards, art or prints"},
		&cli.StringFlag{Name: "order", Usage: "Sort order, e.g. name, set, cmc, usd, edhrec"},
		&cli.StringFlag{Name: "dir", Usage: "Sort direction: auto, asc or desc"},
		&cli.BoolFlag{Name: "include-extras", Usage: "Include tokens, emblems and other extras"},
		&cli.BoolFlag{Name: "include-multilingual", Usage: "Include cards in every language"},
		&cli.BoolFlag{Name: "include-variations", Usage: "Include rare printing variations"},
		&cli.BoolFlag{Name: "full", Usage: "Keep every Scryfall field instead of the simplified columns"},
	}, outputFlags()...),
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "query",
			UsageText: "The search query, e.g. 'c:red t:goblin cmc<=2'",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		query, err := requiredArg(command, "query")
		if err != nil {
			return err
		}

		return runStep(ctx, command, v1.Step{
			ID: "search",
			ScryfallSearch: &v1.ScryfallSearchStep{
				Query:               query,
				Unique:              command.String("unique"),
				Order:               command.String("order"),
				Direction:           command.String("dir"),
				IncludeExtras:       command.Bool("include-extras"),
				IncludeMultilingual: command.Bool("include-multilingual"),
				IncludeVariations:   command.Bool("include-variations"),
				Simplified:          lo.ToPtr(!command.Bool("full")),
			},
		})
	},
}

var cardCommand = &cli.Command{
	Name:  "card",
	Usage: "Look up one card by name on Scryfall",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{Name: "fuzzy", Usage: "Match the name loosely instead of exactly"},
		&cli.StringFlag{Name: "set", Usage: "Prefer the printing from this set code"},
		&cli.BoolFlag{Name: "full", Usage: "Keep every Scryfall field instead of the simplified columns"},
	}, outputFlags()...),
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "name",
			UsageText: "The card name",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		name, err := requiredArg(command, "name")
		if err != nil {
			return err
		}

		step := &v1.ScryfallNamedStep{
			Set:        command.String("set"),
			Simplified: lo.ToPtr(!command.Bool("full")),
		}
		if command.Bool("fuzzy") {
			step.Fuzzy = name
		} else {
			step.Exact = name
		}

		return runStep(ctx, command, v1.Step{ID: "card", ScryfallNamed: step})
	},
}
