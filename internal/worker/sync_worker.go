package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"diplomsklad/internal/infra"
	"diplomsklad/internal/metrics"
	"diplomsklad/internal/model"
	"diplomsklad/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// SyncAttemptsPerJob is how many deliveries one dequeued job makes.
	SyncAttemptsPerJob = 3
	// SyncMaxTotalAttempts stops redrives of a job that keeps failing.
	SyncMaxTotalAttempts = 12
)

// SyncWorker re-attempts failed sync deliveries. Every attempt appends a
// SyncLog row; a job that exhausts its attempts is dead-lettered.
type SyncWorker struct {
	pusher  infra.SyncPusher
	breaker *infra.CircuitBreaker
	logs    repository.SyncLogRepository
	rdb     *redis.Client

	backoff time.Duration
}

func NewSyncWorker(pusher infra.SyncPusher, breaker *infra.CircuitBreaker, logs repository.SyncLogRepository, rdb *redis.Client) *SyncWorker {
	return &SyncWorker{pusher: pusher, breaker: breaker, logs: logs, rdb: rdb, backoff: time.Second}
}

// Process handles one sync job payload.
func (w *SyncWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p SyncJobPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("sync_worker: decode payload: %w", err)
	}

	err := withRetry(ctx, SyncAttemptsPerJob, w.backoff, func(attempt int) error {
		p.Attempts++
		payload := infra.SyncPayload{
			EntityType: p.EntityType,
			EntityID:   p.EntityID,
			Message:    p.Message,
			Attempt:    p.Attempts,
		}
		pushErr := infra.DeliverSync(ctx, w.pusher, w.breaker, payload)
		w.record(ctx, p, pushErr)
		if pushErr != nil {
			log.Warn().
				Err(pushErr).
				Int("attempt", p.Attempts).
				Str("entity_type", p.EntityType).
				Int64("entity_id", p.EntityID).
				Msg("sync_worker: delivery attempt failed")
		}
		return pushErr
	})
	if err == nil {
		log.Info().
			Str("entity_type", p.EntityType).
			Int64("entity_id", p.EntityID).
			Int("attempts", p.Attempts).
			Msg("sync_worker: delivered after retry")
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	parked, merr := json.Marshal(p)
	if merr != nil {
		return merr
	}
	if w.rdb != nil {
		SendToDLQ(ctx, w.rdb, QueueSync, JobTypeSync, parked, err.Error(), p.Attempts)
		metrics.SyncDeadLettered.Inc()
	}
	return err
}

func (w *SyncWorker) record(ctx context.Context, p SyncJobPayload, pushErr error) {
	entry := &model.SyncLog{
		EntityType: p.EntityType,
		EntityID:   p.EntityID,
		Status:     model.SyncSuccess,
		Message:    p.Message,
		Attempt:    p.Attempts,
	}
	if pushErr != nil {
		msg := infra.FailureMessage(pushErr, p.Message)
		entry.Status = model.SyncFail
		entry.Message = &msg
	}
	metrics.SyncAttempts.WithLabelValues(string(entry.Status)).Inc()
	if err := w.logs.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("entity_type", p.EntityType).Int64("entity_id", p.EntityID).Msg("sync_worker: failed to append sync log")
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 immediate, then base, 2*base, 4*base …
// Returns nil if any attempt succeeds; the last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
