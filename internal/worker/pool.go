package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueSync   = "jobs:sync"
	JobTypeSync = "sync"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SyncJobPayload re-attempts delivery of one sync request. Attempts counts
// the deliveries already made, so attempt numbering continues across retries.
type SyncJobPayload struct {
	EntityType string  `json:"entity_type"`
	EntityID   int64   `json:"entity_id"`
	Message    *string `json:"message,omitempty"`
	Attempts   int     `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueSync pushes a sync retry job to Redis.
func (d *Dispatcher) EnqueueSync(ctx context.Context, payload SyncJobPayload) error {
	return enqueue(ctx, d.rdb, QueueSync, JobTypeSync, payload)
}

func enqueue(ctx context.Context, rdb *redis.Client, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers routes job types to their processors.
type Handlers struct {
	Sync *SyncWorker
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP, zero CPU when idle. The returned WaitGroup
// is done once every worker has observed ctx cancellation.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, h Handlers, numWorkers int) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, rdb, h, id)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return &wg
}

func runWorker(ctx context.Context, rdb *redis.Client, h Handlers, id int) {
	queues := []string{QueueSync}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, h, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, h Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	switch job.Type {
	case JobTypeSync:
		if h.Sync == nil {
			log.Error().Str("queue", queue).Msg("no sync handler registered")
			return
		}
		if err := h.Sync.Process(ctx, job.Payload); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("sync job failed")
		}
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type")
	}
}
