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

	"github.com/redis/go-redis/v9"

	"socialbooster/internal/adapter/cache"
	"socialbooster/internal/adapter/exchange"
	httpadapter "socialbooster/internal/adapter/http"
	"socialbooster/internal/adapter/postgres"
	"socialbooster/internal/adapter/usecase"
	"socialbooster/internal/config"
	"socialbooster/internal/core/port"
	"socialbooster/internal/db"
)

// main loads configuration, optionally runs database migrations and seeds
// demo data, wires the adapters, then starts the HTTP server. On receiving
// a termination signal it gracefully shuts down the server.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}

	logger := cfg.Log.New(os.Stdout).With(slog.String("env", cfg.Env))

	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
			return
		}
		logger.Info("migrations applied successfully")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		return
	}
	defer pool.Close()

	sqlDB := db.OpenDB(pool)
	defer sqlDB.Close()

	repo := postgres.NewCampaignRepository(sqlDB)

	if cfg.Psql.Seed {
		n, err := db.Seed(ctx, repo, time.Now())
		if err != nil {
			logger.Error("seed error", slog.Any("error", err))
			return
		}
		logger.Info("seed complete", slog.Int("campaigns", n))
	}

	client := exchange.NewClient(cfg.Exchange.URL, cfg.Exchange.Timeout)
	var rates port.RateProvider = client
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err = rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, rate cache will fall through", slog.Any("error", err))
		}
		pingCancel()

		rates = cache.NewRateCache(client, rdb, client.URL(), cfg.Redis.TTL, logger)
		logger.Info("exchange rate cache enabled", slog.String("addr", cfg.Redis.Addr), slog.Duration("ttl", cfg.Redis.TTL))
	}

	svc := usecase.NewCampaignUseCase(repo, rates, logger)

	handler := httpadapter.NewHandler(svc, sqlDB, cfg.HTTP, logger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err = <-serveErr:
		logger.Error("server error", slog.Any("error", err))
		return
	case <-ctx.Done():
		exitCode = 0
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		exitCode = 1
	} else {
		logger.Info("server gracefully stopped")
	}
}
