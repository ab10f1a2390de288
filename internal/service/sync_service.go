package service

import (
	"context"

	"diplomsklad/internal/dto"
	"diplomsklad/internal/infra"
	"diplomsklad/internal/metrics"
	"diplomsklad/internal/model"
	"diplomsklad/internal/repository"
	"diplomsklad/internal/worker"

	"github.com/rs/zerolog/log"
)

// SyncQueue accepts retry jobs for failed deliveries.
type SyncQueue interface {
	EnqueueSync(ctx context.Context, payload worker.SyncJobPayload) error
}

type SyncService interface {
	// Sync delivers one entity change and always appends a SyncLog row
	// recording the outcome.
	Sync(ctx context.Context, req dto.SyncRequest) (*dto.SyncResponse, error)
	ListLogs(ctx context.Context, page, limit int) (*dto.SyncLogListResponse, error)
}

type syncService struct {
	logs    repository.SyncLogRepository
	pusher  infra.SyncPusher
	breaker *infra.CircuitBreaker
	queue   SyncQueue
}

// NewSyncService wires delivery. A nil pusher records every sync as
// delivered locally; a nil queue disables retries.
func NewSyncService(logs repository.SyncLogRepository, pusher infra.SyncPusher, breaker *infra.CircuitBreaker, queue SyncQueue) SyncService {
	return &syncService{logs: logs, pusher: pusher, breaker: breaker, queue: queue}
}

func (s *syncService) Sync(ctx context.Context, req dto.SyncRequest) (*dto.SyncResponse, error) {
	entry := &model.SyncLog{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Status:     model.SyncSuccess,
		Message:    req.Message,
		Attempt:    1,
		SyncedAt:   utcNow(),
	}

	var pushErr error
	if s.pusher != nil {
		pushErr = infra.DeliverSync(ctx, s.pusher, s.breaker, infra.SyncPayload{
			EntityType: req.EntityType,
			EntityID:   req.EntityID,
			Message:    req.Message,
			Attempt:    1,
		})
	}
	if pushErr != nil {
		msg := infra.FailureMessage(pushErr, req.Message)
		entry.Status = model.SyncFail
		entry.Message = &msg
	}

	metrics.SyncAttempts.WithLabelValues(string(entry.Status)).Inc()
	if err := s.logs.Create(ctx, entry); err != nil {
		return nil, err
	}

	if pushErr == nil {
		return &dto.SyncResponse{Status: "synced", SyncLogID: entry.ID}, nil
	}

	queued := false
	if s.queue != nil {
		err := s.queue.EnqueueSync(ctx, worker.SyncJobPayload{
			EntityType: req.EntityType,
			EntityID:   req.EntityID,
			Message:    req.Message,
			Attempts:   1,
		})
		if err != nil {
			log.Error().Err(err).Str("entity_type", req.EntityType).Int64("entity_id", req.EntityID).Msg("sync: failed to enqueue retry")
		} else {
			queued = true
		}
	}
	log.Warn().Err(pushErr).Str("entity_type", req.EntityType).Int64("entity_id", req.EntityID).Bool("retry_queued", queued).Msg("sync: delivery failed")
	return &dto.SyncResponse{Status: "failed", SyncLogID: entry.ID, RetryQueued: &queued}, nil
}

func (s *syncService) ListLogs(ctx context.Context, page, limit int) (*dto.SyncLogListResponse, error) {
	page, limit = clampPage(page, limit)
	rows, total, err := s.logs.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SyncLogResponse, 0, len(rows))
	for i := range rows {
		data = append(data, mapSyncLog(&rows[i]))
	}
	return &dto.SyncLogListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}
