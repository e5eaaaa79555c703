package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var loggerDeferFunc func() error

func main() {
	app := &cli.Command{
		Name:  "mtgmine",
		Usage: "Mine Magic: The Gathering card data from Scryfall and 17Lands",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log Level (debug, info, warn, error, fatal)",
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					_, err := zapcore.ParseLevel(s)
					if err != nil {
						return fmt.Errorf("invalid log level %s: %w", s, err)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Also write JSON logs to this file, rotated by size",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file (default: .env when present)",
			},
		},
		Commands: []*cli.Command{
			collectCommand,
			validateCommand,
			searchCommand,
			cardCommand,
			catalogCommand,
			colorRatingsCommand,
			cardRatingsCommand,
			cardEvaluationsCommand,
			playDrawCommand,
			trophiesCommand,
			draftCommand,
			deckCommand,
			versionCommand,
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			envFile, err := loadEnvFile(command.String("env-file"))
			if err != nil {
				return nil, err
			}

			logger, _, closeLog, err := createLogger(command.Bool("debug"), command.String("log-level"), command.String("log-file"))
			if err != nil {
				return nil, err
			}

			logger.Debug("logger created",
				zap.String("log_level", command.String("log-level")),
				zap.String("env_file", envFile),
			)

			loggerDeferFunc = func() error {
				_ = logger.Sync()
				return closeLog()
			}

			ctx = withInteractive(ctx, isInteractiveEnvironment())
			return withLogger(ctx, logger), nil
		},
		ExitErrHandler: func(ctx context.Context, command *cli.Command, err error) {
			if err == nil {
				return
			}

			if logger := tryLogger(ctx); logger != nil {
				exitWithError(logger, err, loggerDeferFunc, os.Exit)
			} else {
				log.Fatal(fmt.Errorf("failed to run application: %w", err))
			}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	defer func() {
		if loggerDeferFunc != nil {
			_ = loggerDeferFunc()
		}
	}()

	_ = app.Run(ctx, os.Args)
}
