package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"market_backend/internal/app/config"
	"market_backend/internal/app/di"
	"market_backend/internal/app/router"
	alerthandler "market_backend/internal/feature/alerts/transport/handler"
	assethandler "market_backend/internal/feature/assets/transport/handler"
	watchlisthandler "market_backend/internal/feature/watchlist/transport/handler"
	infradb "market_backend/internal/platform/db"
	"market_backend/internal/platform/http/handler"
	"market_backend/internal/platform/logger"
	infraredis "market_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	logger.Setup(logger.LoadConfig())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.Open(cfg.DB)
	if err != nil {
		return err
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfig()); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	provider, err := di.NewYahooClient()
	if err != nil {
		return err
	}
	uc := di.NewUsecases(cfg, db, rdb, provider)

	checks := map[string]handler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	r := router.NewRouter(router.Handlers{
		Health:    handler.NewHealthHandler(checks),
		Refresh:   assethandler.NewRefreshHandler(uc.Refresh),
		Market:    assethandler.NewMarketHandler(uc.Market),
		Admin:     assethandler.NewAdminHandler(uc.Maintenance),
		Watchlist: watchlisthandler.NewSymbolHandler(uc.Watchlist),
		Alerts:    alerthandler.NewAlertHandler(uc.Alerts),
	}, router.Options{
		CronSecret:     cfg.CronSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "db", cfg.DB.Driver, "cache", rdb != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
