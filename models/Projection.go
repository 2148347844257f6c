package models

import "time"

// Projection is a forward meal plan that blends two or three recipes by
// percentage share for a target diner count.
type Projection struct {
	ID         uint              `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Name       string            `gorm:"not null" json:"name"`
	MealPeriod string            `gorm:"not null" json:"meal_period"`
	Diners     int               `gorm:"not null" json:"diners"`
	Status     string            `gorm:"not null;default:active" json:"status"`
	DeletedAt  *time.Time        `json:"deleted_at,omitempty"`
	OwnerID    uint              `gorm:"not null" json:"owner_id"`
	Owner      *User             `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Shares     []ProjectionShare `gorm:"foreignKey:ProjectionID" json:"shares"`
}
