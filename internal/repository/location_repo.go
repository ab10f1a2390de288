package repository

import (
	"context"

	"diplomsklad/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LocationRepository interface {
	Create(ctx context.Context, l *model.Location) error
	FindByID(ctx context.Context, id uint) (*model.Location, error)
	FindByCode(ctx context.Context, code string) (*model.Location, error)
	List(ctx context.Context) ([]model.Location, error)
	Update(ctx context.Context, l *model.Location) error

	// Used inside transactions, callers pass the tx instance
	FindByIDTx(tx *gorm.DB, id uint) (*model.Location, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Location, error)
	// CountReferencesTx counts items and operations pointing at the location.
	CountReferencesTx(tx *gorm.DB, id uint) (items int64, operations int64, err error)
	DeleteTx(tx *gorm.DB, id uint) error

	DB() *gorm.DB
}

type locationRepo struct{ db *gorm.DB }

func NewLocationRepository(db *gorm.DB) LocationRepository { return &locationRepo{db: db} }

func (r *locationRepo) DB() *gorm.DB { return r.db }

func (r *locationRepo) Create(ctx context.Context, l *model.Location) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *locationRepo) FindByID(ctx context.Context, id uint) (*model.Location, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *locationRepo) FindByCode(ctx context.Context, code string) (*model.Location, error) {
	var l model.Location
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&l).Error
	return &l, err
}

func (r *locationRepo) List(ctx context.Context) ([]model.Location, error) {
	locs := []model.Location{}
	err := r.db.WithContext(ctx).Order("code ASC").Find(&locs).Error
	return locs, err
}

func (r *locationRepo) Update(ctx context.Context, l *model.Location) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *locationRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Location, error) {
	var l model.Location
	err := tx.First(&l, id).Error
	return &l, err
}

func (r *locationRepo) FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Location, error) {
	var l model.Location
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&l, id).Error
	return &l, err
}

func (r *locationRepo) CountReferencesTx(tx *gorm.DB, id uint) (int64, int64, error) {
	var items, ops int64
	if err := tx.Model(&model.Item{}).Where("location_id = ?", id).Count(&items).Error; err != nil {
		return 0, 0, err
	}
	if err := tx.Model(&model.Operation{}).Where("location_id = ?", id).Count(&ops).Error; err != nil {
		return 0, 0, err
	}
	return items, ops, nil
}

func (r *locationRepo) DeleteTx(tx *gorm.DB, id uint) error {
	return tx.Delete(&model.Location{}, id).Error
}
