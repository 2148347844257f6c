package models

import "time"

// ProjectionShare assigns a recipe a percentage of a projection's diners.
// Shares live and die with their projection, so deletes are hard deletes.
type ProjectionShare struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ProjectionID uint      `gorm:"not null;index" json:"projection_id"`
	RecipeID     uint      `gorm:"not null" json:"recipe_id"`
	Percentage   int       `gorm:"not null" json:"percentage"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
}
