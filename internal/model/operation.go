package model

import "time"

// OperationType names one of the four stock movements.
type OperationType string

const (
	OperationReceive   OperationType = "receive"
	OperationShip      OperationType = "ship"
	OperationMove      OperationType = "move"
	OperationInventory OperationType = "inventory"
)

// Operation is an immutable audit row for one inventory-affecting action.
type Operation struct {
	ID         uint          `gorm:"primaryKey"`
	UserID     uint          `gorm:"not null;index"`
	ItemID     uint          `gorm:"not null;index"`
	LocationID uint          `gorm:"not null;index"`
	Type       OperationType `gorm:"type:varchar(20);not null"`
	Quantity   int           `gorm:"not null"`
	Note       *string       `gorm:"type:text"`
	CreatedAt  time.Time     `gorm:"index"`
}

// OperationDetail is an Operation joined with the human-facing keys of the
// rows it references. Read-only, produced by explicit joins.
type OperationDetail struct {
	Operation      `gorm:"embedded"`
	ItemBarcode    string
	UserExternalID int64
	LocationCode   string
}
