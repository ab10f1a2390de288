package model

import "time"

// Role is a user's privilege level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

// ParseRole returns the role for s, or false when s is not a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleWorker:
		return Role(s), true
	}
	return "", false
}

// User is a warehouse worker or admin, known by the identifier they carry on
// the messaging platform the mini app runs in.
type User struct {
	ID         uint    `gorm:"primaryKey"`
	ExternalID int64   `gorm:"uniqueIndex;not null"`
	Username   *string `gorm:"type:varchar(50)"`
	FirstName  *string `gorm:"type:varchar(50)"`
	LastName   *string `gorm:"type:varchar(50)"`
	Role       Role    `gorm:"type:varchar(20);not null;default:'worker'"`
	IsActive   bool    `gorm:"not null;default:true"`
	CreatedAt  time.Time
	LastLogin  *time.Time
}
