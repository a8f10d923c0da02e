package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/hackerwear/storefront/config"
	"github.com/hackerwear/storefront/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "HackerWear storefront API server",
	Long: `Backend for the HackerWear store: product catalog, accounts and
token sessions. Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadRuntime reads configuration and builds the logger every command shares.
// validate is false for commands that never touch the database.
func loadRuntime(ctx context.Context, validate bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.With(zap.String("environment", cfg.Environment)), nil
}
