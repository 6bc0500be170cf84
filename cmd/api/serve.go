package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iamasit07/simpage/backend/internal/config"
	"github.com/iamasit07/simpage/backend/internal/repository/postgres"
	"github.com/iamasit07/simpage/backend/internal/service/audit"
	"github.com/iamasit07/simpage/backend/internal/service/cleanup"
	"github.com/iamasit07/simpage/backend/internal/service/credential"
	"github.com/iamasit07/simpage/backend/internal/service/lockout"
	"github.com/iamasit07/simpage/backend/internal/service/login"
	"github.com/iamasit07/simpage/backend/internal/service/session"
	transportHttp "github.com/iamasit07/simpage/backend/internal/transport/http"
	"github.com/iamasit07/simpage/backend/pkg/auth"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg := config.LoadConfig()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Key-value store
	kv, err := openBackend(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer kv.close()

	// 2. Optional audit mirror
	var mirror audit.Mirror
	var pruner cleanup.AuditPruner
	if cfg.Storage.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		repo := postgres.NewAuditRepo(db)
		mirror, pruner = repo, repo
		logger.Info("audit mirror enabled")
	}

	// 3. Token signing key
	secret := []byte(cfg.Security.TokenSecret)
	if len(secret) == 0 {
		secret, err = auth.GenerateSecret()
		if err != nil {
			return err
		}
		logger.Warn("TOKEN_SECRET not set, using a random key; sessions end on restart")
	}

	// 4. Services
	sec := cfg.Security
	credentials := credential.NewService(kv.store, sec.AdminUsername, logger)
	if _, err := credentials.EnsureDefault(ctx, sec.AdminPassword); err != nil {
		return fmt.Errorf("failed to bootstrap admin credential: %w", err)
	}

	tokens := auth.NewTokenIssuer(secret, sec.AccessTokenTTL, sec.RefreshTokenTTL, nil)
	sessions := session.NewAuthService(kv.store, sec, tokens, logger, nil)
	auditLog := audit.NewLog(kv.store, mirror, sec.AuditRetention, logger, nil)
	loginService := login.NewService(credentials, lockout.NewTracker(kv.store, sec, nil), sessions, auditLog, sec, logger)

	// 5. Background workers
	worker := cleanup.NewWorker(pruner, kv.sweeper, sec.AuditRetention, logger)
	if worker.Enabled() {
		worker.Start(ctx)
	}

	// 6. HTTP
	handler := transportHttp.NewAuthHandler(loginService, sessions, credentials, auditLog,
		transportHttp.CookieSettings{Secure: cfg.CookieSecure, RefreshTTL: sec.RefreshTokenTTL},
		int(sec.AccessTokenTTL.Seconds()), logger)
	router := transportHttp.NewRouter(handler, sessions, cfg.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "sso", sec.EnableSSO)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited gracefully")
	return nil
}

