package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lueurxax/catwalk/internal/app"
	"github.com/lueurxax/catwalk/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
			os.Exit(130)
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliState is shared by subcommands once PersistentPreRunE has loaded config.
type cliState struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCommand() *cobra.Command {
	rt := &cliState{}

	root := &cobra.Command{
		Use:           "catwalk",
		Short:         "Evaluate model predictions and store the results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			rt.cfg = cfg
			rt.logger = newLogger(cfg.AppEnv, cfg.LogLevel)

			return nil
		},
	}

	root.AddCommand(newMigrateCommand(rt))
	root.AddCommand(newEvaluateCommand(rt))
	root.AddCommand(newBatchCommand(rt))
	root.AddCommand(newShowCommand(rt))
	root.AddCommand(newMetricsCommand())

	return root
}

func newLogger(appEnv, level string) zerolog.Logger {
	var logger zerolog.Logger
	if appEnv == "local" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return logger.Level(lvl)
}

// openApp opens the configured store; callers must Close the result.
func (rt *cliState) openApp(ctx context.Context) (*app.App, error) {
	return app.Open(ctx, rt.cfg, &rt.logger)
}
