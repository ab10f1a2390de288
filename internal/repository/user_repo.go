package repository

import (
	"context"

	"diplomsklad/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository is the data access contract for users. Lookups return
// gorm.ErrRecordNotFound when the row does not exist.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByExternalID(ctx context.Context, externalID int64) (*model.User, error)
	// FirstOrCreate returns the user with u.ExternalID, inserting u when absent.
	// created reports whether the insert happened.
	FirstOrCreate(ctx context.Context, u *model.User) (user *model.User, created bool, err error)

	// Used inside transactions, callers pass the tx instance
	FindByIDTx(tx *gorm.DB, id uint) (*model.User, error)
	FirstOrCreateTx(tx *gorm.DB, u *model.User) (user *model.User, created bool, err error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByExternalID(ctx context.Context, externalID int64) (*model.User, error) {
	return findByExternalID(r.db.WithContext(ctx), externalID)
}

func (r *userRepo) FirstOrCreate(ctx context.Context, u *model.User) (*model.User, bool, error) {
	return r.FirstOrCreateTx(r.db.WithContext(ctx), u)
}

// FirstOrCreateTx inserts with ON CONFLICT DO NOTHING so a concurrent first
// sight of the same user never aborts the surrounding transaction.
func (r *userRepo) FirstOrCreateTx(tx *gorm.DB, u *model.User) (*model.User, bool, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(u)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return u, true, nil
	}
	existing, err := findByExternalID(tx, u.ExternalID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *userRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.User, error) {
	var u model.User
	err := tx.First(&u, id).Error
	return &u, err
}

func findByExternalID(db *gorm.DB, externalID int64) (*model.User, error) {
	var u model.User
	err := db.Where("external_id = ?", externalID).First(&u).Error
	return &u, err
}
