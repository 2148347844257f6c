package models

import (
	"gorm.io/gorm"
)

type Ingredient struct {
	gorm.Model
	Name         string    `gorm:"uniqueIndex;not null" json:"name"`
	Unit         string    `gorm:"not null" json:"unit"`
	PricePerUnit float64   `json:"price_per_unit"`
	ProviderID   *uint     `json:"provider_id,omitempty"`
	Provider     *Provider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}
