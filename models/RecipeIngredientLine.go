package models

import "time"

// RecipeIngredientLine records how much of one ingredient a recipe needs to
// feed its base diner count. Lines live and die with their recipe; they carry
// no lifecycle of their own, so deletes are hard deletes.
type RecipeIngredientLine struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	RecipeID     uint      `gorm:"not null;index" json:"recipe_id"`
	IngredientID uint      `gorm:"not null" json:"ingredient_id"`
	Quantity     float64   `gorm:"not null" json:"quantity"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
