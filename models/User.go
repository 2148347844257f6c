package models

import "gorm.io/gorm"

// Roles an account can hold. Recipe deletion is restricted to admins;
// projection deletion is not.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents an application account that can authenticate with the platform.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
	Role         string `gorm:"type:varchar(32);default:staff"`
}

// ValidRole reports whether the value names a known role.
func ValidRole(value string) bool {
	switch value {
	case RoleAdmin, RoleStaff:
		return true
	}
	return false
}
