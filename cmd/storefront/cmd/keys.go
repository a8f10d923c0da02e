package cmd

import (
	"fmt"

	authn "github.com/hackerwear/storefront/internal/auth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Signing key management",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Load the token signing key, generating it when missing",
	Long: `Loads the Ed25519 signing key from AUTH_KEY_PATH. When no key exists a new
one is generated and written there. Prints the public key fingerprint.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer logger.Sync()

		keys, err := authn.LoadOrGenerateKeyPair(cfg.Auth.KeyPath)
		if err != nil {
			logger.Error("failed to load signing key", zap.Error(err))
			return err
		}

		fingerprint := keys.PublicKeyFingerprint()
		logger.Info("signing key ready",
			zap.String("path", cfg.Auth.KeyPath),
			zap.String("fingerprint", fingerprint))
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", cfg.Auth.KeyPath, fingerprint)
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysInitCmd)
	rootCmd.AddCommand(keysCmd)
}
