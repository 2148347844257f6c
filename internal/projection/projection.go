package projection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"comedor/internal/fault"
	applog "comedor/internal/log"
	"comedor/models"
)

// CreateInput carries everything needed to persist a new projection.
type CreateInput struct {
	Name       string
	MealPeriod string
	Diners     int
	OwnerID    uint
	Shares     []ShareInput
}

// UpdateInput is a typed update request. Nil pointer fields are left
// untouched; a nil Shares slice keeps the existing share set, a non-nil one
// replaces it wholesale after revalidation.
type UpdateInput struct {
	Name       *string
	MealPeriod *string
	Diners     *int
	Shares     []ShareInput
}

// Create validates the candidate shares, verifies every referenced recipe is
// active, and writes the projection with its share rows in one transaction.
// Nothing is persisted when any step fails.
func Create(ctx context.Context, db *gorm.DB, in CreateInput) (*models.Projection, error) {
	if err := ValidateShares(in.Shares); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fault.Field(fault.KindInvalid, "name", "name is required")
	}

	period := models.NormalizePeriod(in.MealPeriod)
	if !models.ValidPeriod(period) {
		return nil, fault.Field(fault.KindInvalid, "meal_period", fmt.Sprintf("unknown meal period %q", in.MealPeriod))
	}

	if in.Diners <= 0 {
		return nil, fault.Field(fault.KindInvalidDinerCount, "diners", "target diner count must be greater than zero")
	}

	created := models.Projection{
		Name:       name,
		MealPeriod: period,
		Diners:     in.Diners,
		Status:     models.StatusActive,
		OwnerID:    in.OwnerID,
	}
	for _, share := range in.Shares {
		created.Shares = append(created.Shares, models.ProjectionShare{
			RecipeID:   share.RecipeID,
			Percentage: share.Percentage,
		})
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := resolveRecipes(tx, in.Shares); err != nil {
			return err
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "projection created", "id", created.ID, "shares", len(created.Shares))
	return &created, nil
}

// Update applies a typed update request to an active projection. Share
// replacement revalidates the new set and swaps all share rows inside the
// same transaction as the field updates.
func Update(ctx context.Context, db *gorm.DB, id uint, in UpdateInput) (*models.Projection, error) {
	if in.Shares != nil {
		if err := ValidateShares(in.Shares); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fault.Field(fault.KindInvalid, "name", "name is required")
		}
		updates["name"] = name
	}
	if in.MealPeriod != nil {
		period := models.NormalizePeriod(*in.MealPeriod)
		if !models.ValidPeriod(period) {
			return nil, fault.Field(fault.KindInvalid, "meal_period", fmt.Sprintf("unknown meal period %q", *in.MealPeriod))
		}
		updates["meal_period"] = period
	}
	if in.Diners != nil {
		if *in.Diners <= 0 {
			return nil, fault.Field(fault.KindInvalidDinerCount, "diners", "target diner count must be greater than zero")
		}
		updates["diners"] = *in.Diners
	}

	var updated models.Projection
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.New(fault.KindProjectionNotFound, fmt.Sprintf("projection %d does not exist", id))
			}
			return err
		}
		if updated.Status != models.StatusActive {
			return fault.New(fault.KindProjectionNotFound, fmt.Sprintf("projection %d is in the trash", id))
		}

		if len(updates) > 0 {
			if err := tx.Model(&updated).Updates(updates).Error; err != nil {
				return err
			}
		}

		if in.Shares != nil {
			if err := resolveRecipes(tx, in.Shares); err != nil {
				return err
			}
			if err := tx.Where("projection_id = ?", id).Delete(&models.ProjectionShare{}).Error; err != nil {
				return err
			}
			for _, share := range in.Shares {
				row := models.ProjectionShare{
					ProjectionID: id,
					RecipeID:     share.RecipeID,
					Percentage:   share.Percentage,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}

		return tx.Preload("Shares").First(&updated, id).Error
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "projection updated", "id", id, "fields", len(updates), "sharesReplaced", in.Shares != nil)
	return &updated, nil
}

// resolveRecipes verifies that every share points at an existing, active
// recipe. A recipe in the trash cannot anchor a new share set.
func resolveRecipes(tx *gorm.DB, shares []ShareInput) error {
	for _, share := range shares {
		var recipe models.Recipe
		if err := tx.First(&recipe, share.RecipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.Field(fault.KindRecipeNotFound, "recipe_id", fmt.Sprintf("recipe %d does not exist", share.RecipeID))
			}
			return err
		}
		if recipe.Status != models.StatusActive {
			return fault.Field(fault.KindRecipeNotFound, "recipe_id", fmt.Sprintf("recipe %d is in the trash", share.RecipeID))
		}
	}
	return nil
}
