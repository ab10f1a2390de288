package repository

import (
	"context"

	"diplomsklad/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRepository defines the data access contract for items.
// Services depend on this interface, not on the concrete GORM implementation.
type ItemRepository interface {
	Create(ctx context.Context, it *model.Item) error
	FindByID(ctx context.Context, id uint) (*model.Item, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Item, error)
	ListByOwner(ctx context.Context, userID uint) ([]model.Item, error)
	ListAll(ctx context.Context) ([]model.Item, error)

	// Used inside transactions, callers pass the tx instance
	CreateTx(tx *gorm.DB, it *model.Item) error
	// FindByIDForUpdateTx locks the row until tx ends.
	FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Item, error)
	SaveTx(tx *gorm.DB, it *model.Item) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) DB() *gorm.DB { return r.db }

func (r *itemRepo) Create(ctx context.Context, it *model.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *itemRepo) FindByID(ctx context.Context, id uint) (*model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).First(&it, id).Error
	return &it, err
}

func (r *itemRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&it).Error
	return &it, err
}

func (r *itemRepo) ListByOwner(ctx context.Context, userID uint) ([]model.Item, error) {
	items := []model.Item{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) ListAll(ctx context.Context) ([]model.Item, error) {
	items := []model.Item{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) CreateTx(tx *gorm.DB, it *model.Item) error {
	return tx.Create(it).Error
}

func (r *itemRepo) FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Item, error) {
	var it model.Item
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&it, id).Error
	return &it, err
}

func (r *itemRepo) SaveTx(tx *gorm.DB, it *model.Item) error {
	return tx.Save(it).Error
}
