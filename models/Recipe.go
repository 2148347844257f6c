package models

import "time"

type Recipe struct {
	ID             uint                   `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Name           string                 `gorm:"not null" json:"name"`
	Classification string                 `json:"classification"`
	MealPeriod     string                 `gorm:"not null" json:"meal_period"`
	BaseDiners     int                    `gorm:"not null" json:"base_diners"`
	Status         string                 `gorm:"not null;default:active" json:"status"`
	DeletedAt      *time.Time             `json:"deleted_at,omitempty"`
	Lines          []RecipeIngredientLine `gorm:"foreignKey:RecipeID" json:"lines"`
}
