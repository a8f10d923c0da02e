package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackerwear/storefront/app"
	"github.com/hackerwear/storefront/routes"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, logger, err := loadRuntime(ctx, true)
		if err != nil {
			return err
		}

		deps, err := app.NewDependencies(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to initialize dependencies", zap.Error(err))
			return err
		}

		server := &http.Server{
			Addr:              cfg.Server.Address(),
			Handler:           routes.SetupRoutes(deps),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		}

		done := make(chan error, 1)
		go func() {
			var err error
			if cfg.Server.TLS.Enabled {
				err = server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
			} else {
				err = server.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		logger.Info("storefront listening",
			zap.String("addr", server.Addr),
			zap.Bool("tls", cfg.Server.TLS.Enabled))

		var serveErr error
		select {
		case <-ctx.Done():
			logger.Info("shutdown signal received")
		case serveErr = <-done:
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
			serveErr = errors.Join(serveErr, err)
		}
		if err := deps.Close(shutdownCtx); err != nil {
			serveErr = errors.Join(serveErr, err)
		}

		logger.Info("server stopped")
		return serveErr
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
