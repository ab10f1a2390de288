package model

import "time"

// ItemStatusStored is the status assigned to every new item.
const ItemStatusStored = "stored"

// Item is a barcoded stock unit. Quantity and LocationID change only through
// an Operation; LastOperationID points at the most recent one.
type Item struct {
	ID              uint    `gorm:"primaryKey"`
	Barcode         string  `gorm:"type:varchar(100);uniqueIndex;not null"`
	Name            string  `gorm:"type:varchar(255);not null"`
	SKU             *string `gorm:"column:sku;type:varchar(100)"`
	Description     *string `gorm:"type:text"`
	Quantity        int     `gorm:"not null;default:0"`
	LocationID      *uint   `gorm:"index"`
	Status          string  `gorm:"type:varchar(50);not null;default:'stored'"`
	UserID          *uint   `gorm:"index"` // owner
	LastOperationID *uint
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
