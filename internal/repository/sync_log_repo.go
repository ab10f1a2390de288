package repository

import (
	"context"

	"diplomsklad/internal/model"

	"gorm.io/gorm"
)

// SyncLogRepository is append-only.
type SyncLogRepository interface {
	Create(ctx context.Context, l *model.SyncLog) error
	List(ctx context.Context, page, limit int) ([]model.SyncLog, int64, error)
}

type syncLogRepo struct{ db *gorm.DB }

func NewSyncLogRepository(db *gorm.DB) SyncLogRepository { return &syncLogRepo{db: db} }

func (r *syncLogRepo) Create(ctx context.Context, l *model.SyncLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *syncLogRepo) List(ctx context.Context, page, limit int) ([]model.SyncLog, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.SyncLog{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	logs := []model.SyncLog{}
	err := r.db.WithContext(ctx).
		Order("synced_at DESC, id DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&logs).Error
	return logs, total, err
}
