package infra

import (
	"fmt"

	"diplomsklad/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseOptions tunes the connection pool.
type DatabaseOptions struct {
	MaxOpenConns int
	MaxIdleConns int
}

// NewDatabase establishes a GORM connection backed by pgx. Unique violations
// come back as gorm.ErrDuplicatedKey.
func NewDatabase(dsn string, opts DatabaseOptions) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 25
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)

	return db, nil
}

// Migrate creates / updates all tables, then applies the idempotent SQL
// patches AutoMigrate cannot express: foreign keys between tables that carry
// plain id columns, and check constraints.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Location{},
		&model.Item{},
		&model.Operation{},
		&model.SyncLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// addConstraint wraps an ALTER TABLE in a guard so re-running is a no-op.
func addConstraint(table, name, definition string) string {
	return fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
    ALTER TABLE %s ADD CONSTRAINT %s %s;
  END IF;
END $$`, name, table, name, definition)
}

func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"items.location_id fk", addConstraint("items", "fk_items_location",
			"FOREIGN KEY (location_id) REFERENCES locations(id)")},
		{"items.user_id fk", addConstraint("items", "fk_items_user",
			"FOREIGN KEY (user_id) REFERENCES users(id)")},
		{"items.last_operation_id fk", addConstraint("items", "fk_items_last_operation",
			"FOREIGN KEY (last_operation_id) REFERENCES operations(id)")},
		{"operations.user_id fk", addConstraint("operations", "fk_operations_user",
			"FOREIGN KEY (user_id) REFERENCES users(id)")},
		{"operations.item_id fk", addConstraint("operations", "fk_operations_item",
			"FOREIGN KEY (item_id) REFERENCES items(id)")},
		{"operations.location_id fk", addConstraint("operations", "fk_operations_location",
			"FOREIGN KEY (location_id) REFERENCES locations(id)")},
		{"items.quantity non-negative", addConstraint("items", "chk_items_quantity",
			"CHECK (quantity >= 0)")},
		{"operations.type enum", addConstraint("operations", "chk_operations_type",
			"CHECK (type IN ('receive','ship','move','inventory'))")},
		{"users.role enum", addConstraint("users", "chk_users_role",
			"CHECK (role IN ('admin','worker'))")},
		{"sync_logs.status enum", addConstraint("sync_logs", "chk_sync_logs_status",
			"CHECK (status IN ('success','fail'))")},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("%s: %w", p.descr, err)
		}
	}
	return nil
}
