package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hackerwear/storefront/app"
	"github.com/hackerwear/storefront/services/audit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// operatorAgent tags audit events raised from the command line
const operatorAgent = "storefront-cli"

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Session administration",
}

var sessionsRevokeCmd = &cobra.Command{
	Use:   "revoke <token-id>",
	Short: "Revoke the session a token was issued for",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokenID, err := parseID("token", args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		cfg, logger, err := loadRuntime(ctx, true)
		if err != nil {
			return err
		}

		deps, err := app.NewDependencies(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer deps.Close(ctx)

		session, err := deps.Accounts.RevokeToken(ctx, tokenID, audit.RequestMeta{UserAgent: operatorAgent})
		if err != nil {
			logger.Error("failed to revoke session", zap.String("token_id", tokenID.String()), zap.Error(err))
			return err
		}

		logger.Info("session revoked by operator",
			zap.String("session_id", session.ID.String()),
			zap.String("user_id", session.UserID.String()))
		fmt.Fprintf(cmd.OutOrStdout(), "revoked session %s\n", session.ID)
		return nil
	},
}

var sessionsListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List the active sessions of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user", args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		cfg, logger, err := loadRuntime(ctx, true)
		if err != nil {
			return err
		}

		deps, err := app.NewDependencies(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer deps.Close(ctx)

		sessions, err := deps.Accounts.ActiveSessions(ctx, userID)
		if err != nil {
			logger.Error("failed to list sessions", zap.String("user_id", userID.String()), zap.Error(err))
			return err
		}

		out := cmd.OutOrStdout()
		for _, s := range sessions {
			fmt.Fprintf(out, "%s\t%s\t%s\n", s.TokenID, s.IssuedAt.Format(time.RFC3339), s.ExpiresAt.Format(time.RFC3339))
		}
		return nil
	},
}

func parseID(kind, arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, arg, err)
	}
	return id, nil
}

func init() {
	sessionsCmd.AddCommand(sessionsRevokeCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	rootCmd.AddCommand(sessionsCmd)
}
