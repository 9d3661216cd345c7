package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"reviewd/internal/bootstrap/logging"
	"reviewd/internal/errs"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "reviewd",
	Short:        "AI-assisted code review service",
	Long:         "Web backend for user authentication and asynchronous LLM-backed code reviews.",
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.main().
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logger := slog.New(slog.NewTextHandler(rootCmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	ctx = logging.WithLogger(ctx, logger)
	ctx = logging.WithAttrs(ctx, slog.String("app", "reviewd"))

	rootCmd.SetContext(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error(ctx, "command execution failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "execute root command")
	}

	return nil
}

func init() {
	// Empty means discovery inside config.Load: ./configs/config.yaml, then
	// ./config.yaml, then defaults plus RD_* env.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path")
}
