package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diplomsklad/internal/config"
	"diplomsklad/internal/infra"
	"diplomsklad/internal/metrics"
	"diplomsklad/internal/repository"
	"diplomsklad/internal/router"
	"diplomsklad/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.DatabaseOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	// Redis carries the barcode cache and the sync retry queue. An empty
	// REDIS_URL runs the server without both.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		log.Warn().Msg("REDIS_URL is empty: barcode cache and sync retries disabled")
	}

	cbCfg := infra.DefaultCBConfig()
	cbCfg.OnStateChange = func(from, to infra.CBState) {
		metrics.BreakerState.Set(float64(to))
		log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("accounting circuit breaker state changed")
	}
	accountingCB := infra.NewCircuitBreaker(cbCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sync retry workers, wired here so the pool sees the same breaker as
	// the request path.
	var workers interface{ Wait() }
	if rdb != nil {
		var pusher infra.SyncPusher
		if cfg.SyncEndpointURL != "" {
			pusher = infra.NewAccountingClient(cfg.SyncEndpointURL)
		}
		handlers := worker.Handlers{
			Sync: worker.NewSyncWorker(pusher, accountingCB, repository.NewSyncLogRepository(db), rdb),
		}
		workers = worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
		worker.StartRedriveCron(ctx, worker.RedriveCronConfig{RDB: rdb, CB: accountingCB})
	}

	r := router.New(cfg, db, rdb, accountingCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("warehouse backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if workers != nil {
		workers.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
