package repository

import (
	"context"

	"diplomsklad/internal/dto"
	"diplomsklad/internal/model"

	"gorm.io/gorm"
)

// OperationRepository is append-only: there is no update or delete.
type OperationRepository interface {
	CreateTx(tx *gorm.DB, op *model.Operation) error
	// List returns operations joined with item barcode, user external id and
	// location code, newest first.
	List(ctx context.Context, filter dto.OperationFilter) ([]model.OperationDetail, int64, error)
}

type operationRepo struct{ db *gorm.DB }

func NewOperationRepository(db *gorm.DB) OperationRepository { return &operationRepo{db: db} }

func (r *operationRepo) CreateTx(tx *gorm.DB, op *model.Operation) error {
	return tx.Create(op).Error
}

func (r *operationRepo) List(ctx context.Context, filter dto.OperationFilter) ([]model.OperationDetail, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Table("operations AS o")
		if filter.ItemID != nil {
			q = q.Where("o.item_id = ?", *filter.ItemID)
		}
		if filter.Type != "" {
			q = q.Where("o.type = ?", filter.Type)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []model.OperationDetail{}
	offset := (filter.Page - 1) * filter.Limit
	err := filtered().
		Select("o.*, i.barcode AS item_barcode, u.external_id AS user_external_id, l.code AS location_code").
		Joins("JOIN items i ON i.id = o.item_id").
		Joins("JOIN users u ON u.id = o.user_id").
		Joins("JOIN locations l ON l.id = o.location_id").
		Order("o.created_at DESC, o.id DESC").
		Limit(filter.Limit).Offset(offset).
		Scan(&rows).Error
	return rows, total, err
}
