package model

// Location is a storage place inside the warehouse (rack, shelf, zone).
type Location struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"type:varchar(100);not null"`
	Code        string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	Description *string `gorm:"type:text"`
}
