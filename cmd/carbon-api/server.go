package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rshade/carbon-dashboard/internal/api"
	"github.com/rshade/carbon-dashboard/internal/auth"
	"github.com/rshade/carbon-dashboard/internal/carbon"
	"github.com/rshade/carbon-dashboard/internal/config"
	"github.com/rshade/carbon-dashboard/internal/logging"
	"github.com/rshade/carbon-dashboard/internal/narrative"
	"github.com/rshade/carbon-dashboard/internal/period"
	"github.com/rshade/carbon-dashboard/internal/report"
	"github.com/rshade/carbon-dashboard/internal/store"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// serve runs the API until ctx is cancelled.
func serve(ctx context.Context, cfg config.Config) error {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	carbon.SetLogger(logger)
	period.SetLogger(logger)
	report.SetLogger(logger)

	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn().Msg("JWT_SECRET is unset, using the development secret")
	}

	table, err := cfg.FactorTable()
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(ctx, cfg, table, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []report.Option{report.WithFactors(table, cfg.SharePrecision)}
	client, err := narrative.NewClient(narrative.Config{
		APIKey:  cfg.NarrativeAPIKey,
		BaseURL: cfg.NarrativeBaseURL,
		Model:   cfg.NarrativeModel,
		Timeout: cfg.NarrativeTimeout,
	})
	switch {
	case errors.Is(err, narrative.ErrNotConfigured):
		logger.Info().Msg("narrative generation disabled")
	case err != nil:
		return err
	default:
		opts = append(opts, report.WithNarrator(client, cfg.NarrativeTimeout))
	}
	svc := report.NewService(st, logger, opts...)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewHandler(svc, st, table, logger), auth.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress).Msg("Starting carbon API")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore returns the Postgres store when a database URL is configured and
// the in-memory store otherwise.
func openStore(ctx context.Context, cfg config.Config, table carbon.FactorTable, logger zerolog.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL is unset, records are kept in memory")
		return store.NewMemory(table), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	pg := store.NewPostgres(pool, table, logger)
	if err := pg.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pg, pool.Close, nil
}
