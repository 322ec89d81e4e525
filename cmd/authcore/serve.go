// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/authcore/authcore/internal/auth"
	authpostgres "github.com/authcore/authcore/internal/auth/postgres"
	authredis "github.com/authcore/authcore/internal/auth/redis"
	"github.com/authcore/authcore/internal/config"
	"github.com/authcore/authcore/internal/httpapi"
	"github.com/authcore/authcore/internal/logging"
	"github.com/authcore/authcore/internal/mail"
	"github.com/authcore/authcore/internal/observability"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/errutil"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the auth HTTP server",
		Long: `Start the HTTP server exposing the auth endpoints, backed by
PostgreSQL for accounts and Redis for sessions and reset tokens.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	// Dotted flag names override the matching config keys.
	cmd.Flags().String("server.addr", "", "HTTP listen address")
	cmd.Flags().String("server.metrics_addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("server.reset_base_url", "", "external base URL for password reset links")
	cmd.Flags().String("postgres.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("redis.addr", "", "Redis address")
	cmd.Flags().String("log.format", "", "log format (json or text)")
	cmd.Flags().String("log.level", "", "log level (debug, info, warn, error)")

	return cmd
}

// logMailer stands in when SMTP is not configured: recovery links are
// only logged.
type logMailer struct {
	logger *slog.Logger
}

func (m *logMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	m.logger.Info("mail disabled, reset link not delivered",
		"to", to,
		"reset_url", resetURL,
	)
	return nil
}

// instrumentedMailer counts successful dispatches.
type instrumentedMailer struct {
	next    auth.Mailer
	metrics *observability.Metrics
}

func (m *instrumentedMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	if err := m.next.SendPasswordReset(ctx, to, resetURL); err != nil {
		return err
	}
	m.metrics.ResetMailsSentTotal.Inc()
	return nil
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("authcore", version, cfg.Log.Format, cfg.Log.Level)
	logger := slog.Default()

	logger.Info("starting authcore",
		"addr", cfg.Server.Addr,
		"metrics_addr", cfg.Server.MetricsAddr,
	)

	pool, err := store.ConnectPostgres(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := store.ConnectRedis(ctx, store.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rdb.Close(); closeErr != nil {
			logger.Warn("error closing redis client", "error", closeErr.Error())
		}
	}()

	logger.Info("connected to postgres and redis")

	var metrics *observability.Metrics
	var obsServer *observability.Server
	if cfg.Server.MetricsAddr != "" {
		// Ready once both backends answered their startup pings.
		obsServer = observability.NewServer(cfg.Server.MetricsAddr, func() bool { return true })
		if _, err := obsServer.Start(); err != nil {
			return err
		}
		metrics = obsServer.Metrics()
	}

	var mailer auth.Mailer
	if cfg.MailEnabled() {
		mailer = mail.NewClient(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		mailer = &logMailer{logger: logger}
	}
	if metrics != nil {
		mailer = &instrumentedMailer{next: mailer, metrics: metrics}
	}

	svc, err := auth.NewServiceWithLogger(
		authpostgres.NewUserRepository(pool),
		authredis.NewResetTokenStore(rdb),
		auth.NewArgon2idHasher(),
		mailer,
		cfg.Server.ResetBaseURL,
		logger,
	)
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(svc,
		httpapi.RedisSessions(authredis.NewSessionStore(rdb)),
		logger,
		httpapi.Options{
			CookieSecure: cfg.Server.CookieSecure,
			Metrics:      metrics,
		},
	)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpSrv.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			errChan <- serveErr
		}
	}()

	cmd.Println("authcore started on " + cfg.Server.Addr)
	logger.Info("authcore ready", "addr", cfg.Server.Addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errChan:
		errutil.LogError(logger, "http server failed", err)
		return err
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err.Error())
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err.Error())
		}
	}

	logger.Info("shutdown complete")
	return nil
}
