package model

import "time"

// SyncStatus is the outcome of one delivery attempt.
type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncFail    SyncStatus = "fail"
)

// SyncLog is an append-only record of an attempt to propagate a change to the
// external accounting system.
type SyncLog struct {
	ID         uint       `gorm:"primaryKey"`
	EntityType string     `gorm:"type:varchar(50);not null;index:idx_sync_logs_entity"`
	EntityID   int64      `gorm:"not null;index:idx_sync_logs_entity"`
	Status     SyncStatus `gorm:"type:varchar(20);not null"`
	Message    *string    `gorm:"type:text"`
	Attempt    int        `gorm:"not null;default:1"`
	SyncedAt   time.Time  `gorm:"autoCreateTime;index"`
}
