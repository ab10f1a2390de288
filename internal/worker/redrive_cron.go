package worker

// redrive_cron.go
// Background goroutine that periodically moves dead-lettered sync jobs back
// onto the work queue, except while the accounting breaker is open.

import (
	"context"
	"time"

	"diplomsklad/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redriveTickInterval = time.Minute
	redriveBatchSize    = 20
)

// RedriveCronConfig holds all dependencies for the redrive goroutine.
type RedriveCronConfig struct {
	RDB      *redis.Client
	CB       *infra.CircuitBreaker
	Interval time.Duration
}

// StartRedriveCron launches the redrive goroutine. It stops with ctx.
func StartRedriveCron(ctx context.Context, cfg RedriveCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = redriveTickInterval
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Msg("redrive_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("redrive_cron: shutting down")
				return
			case <-ticker.C:
				redriveOnce(ctx, cfg)
			}
		}
	}()
}

func redriveOnce(ctx context.Context, cfg RedriveCronConfig) {
	// Don't hammer an endpoint that is still failing
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("redrive_cron: circuit breaker is open, skipping tick")
		return
	}

	moved, err := Redrive(ctx, cfg.RDB, QueueSync, redriveBatchSize, SyncMaxTotalAttempts)
	if err != nil {
		log.Error().Err(err).Msg("redrive_cron: redrive failed")
		return
	}
	if moved > 0 {
		log.Info().Int("count", moved).Msg("redrive_cron: requeued dead-lettered sync jobs")
	}
}
