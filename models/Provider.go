package models

import "gorm.io/gorm"

// Provider is a supplier of ingredients.
type Provider struct {
	gorm.Model
	Name    string `gorm:"uniqueIndex;not null" json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}
