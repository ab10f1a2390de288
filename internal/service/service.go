// Package service holds the business rules behind every endpoint. Services
// return *apierror.Error for domain failures and plain wrapped errors for
// infrastructure failures.
package service

import (
	"context"
	"errors"
	"time"

	"diplomsklad/internal/apierror"

	"gorm.io/gorm"
)

// runTx runs fn inside a transaction. With a nil db (unit tests over stub
// repositories) fn runs inline with a nil tx.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// notFound turns gorm.ErrRecordNotFound into a NotFound error naming the
// missing entity; any other error passes through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(format, args...).Wrap(err)
	}
	return err
}

// conflictOnDuplicate turns a unique violation into a Conflict.
func conflictOnDuplicate(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierror.Conflict(format, args...).Wrap(err)
	}
	return err
}

func utcNow() time.Time { return time.Now().UTC() }
