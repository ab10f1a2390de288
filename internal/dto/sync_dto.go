package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SyncRequest struct {
	EntityType string  `json:"entity_type" validate:"required,max=50"`
	EntityID   int64   `json:"entity_id"   validate:"required"`
	Message    *string `json:"message"`
}

// SyncLogFilter pages the admin sync audit trail. Zero values take the
// defaults.
type SyncLogFilter struct {
	Page  int `form:"page"  validate:"omitempty,gte=1"`
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SyncResponse struct {
	Status      string `json:"status"` // synced | failed
	SyncLogID   uint   `json:"sync_log_id"`
	RetryQueued *bool  `json:"retry_queued,omitempty"`
}

type SyncLogResponse struct {
	ID         uint    `json:"id"`
	EntityType string  `json:"entity_type"`
	EntityID   int64   `json:"entity_id"`
	Status     string  `json:"status"`
	Message    *string `json:"message"`
	Attempt    int     `json:"attempt"`
	SyncedAt   string  `json:"synced_at"`
}

type SyncLogListResponse struct {
	Data  []SyncLogResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
