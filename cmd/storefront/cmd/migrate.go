package cmd

import (
	"fmt"

	"github.com/hackerwear/storefront/repositories/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or roll back the database schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer logger.Sync()

		direction := args[0]
		if err := postgres.Migrate(cfg.Database.MigrationURL(), direction); err != nil {
			logger.Error("migration failed", zap.String("direction", direction), zap.Error(err))
			return fmt.Errorf("migrate %s: %w", direction, err)
		}

		logger.Info("migrations applied", zap.String("direction", direction))
		fmt.Fprintf(cmd.OutOrStdout(), "migrate %s complete\n", direction)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
