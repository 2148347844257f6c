package projection

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"comedor/internal/fault"
	applog "comedor/internal/log"
	"comedor/models"
)

// IngredientTotal is the aggregate quantity of one ingredient across all
// shares of a projection, scaled to the projection's target diner count.
type IngredientTotal struct {
	IngredientID uint    `json:"ingredient_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
}

// TotalIngredients computes the shopping list for a projection. Each share
// contributes its recipe's line quantities multiplied by
//
//	scale = (percentage / 100) * (target diners / recipe base diners)
//
// which re-weights the recipe by its percentage and re-normalizes it from its
// own base diner count. Contributions for the same ingredient across recipes
// are summed into a single entry; entries keep first-encounter order.
//
// The computation is a pure read: calling it twice against the same persisted
// state yields identical results. A share whose recipe is missing or in the
// trash fails the whole call; skipping it would leave the totals inconsistent
// with the stated percentages.
func TotalIngredients(ctx context.Context, db *gorm.DB, projectionID uint) ([]IngredientTotal, error) {
	var proj models.Projection
	if err := db.WithContext(ctx).Preload("Shares").First(&proj, projectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.New(fault.KindProjectionNotFound, fmt.Sprintf("projection %d does not exist", projectionID))
		}
		return nil, err
	}
	if proj.Status != models.StatusActive {
		return nil, fault.New(fault.KindProjectionNotFound, fmt.Sprintf("projection %d is in the trash", projectionID))
	}

	if proj.Diners <= 0 {
		return nil, fault.Field(fault.KindInvalidDinerCount, "diners",
			fmt.Sprintf("projection %d has target diner count %d", proj.ID, proj.Diners))
	}

	totals := make([]IngredientTotal, 0, 8)
	index := make(map[uint]int)

	for _, share := range proj.Shares {
		var recipe models.Recipe
		err := db.WithContext(ctx).
			Preload("Lines").
			Preload("Lines.Ingredient").
			First(&recipe, share.RecipeID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fault.Field(fault.KindRecipeNotFound, "recipe_id",
					fmt.Sprintf("recipe %d referenced by projection %d does not exist", share.RecipeID, proj.ID))
			}
			return nil, err
		}
		if recipe.Status != models.StatusActive {
			return nil, fault.Field(fault.KindRecipeNotFound, "recipe_id",
				fmt.Sprintf("recipe %d referenced by projection %d is in the trash", share.RecipeID, proj.ID))
		}
		if recipe.BaseDiners <= 0 {
			return nil, fault.Field(fault.KindInvalidDinerCount, "base_diners",
				fmt.Sprintf("recipe %d has base diner count %d", recipe.ID, recipe.BaseDiners))
		}

		scale := float64(share.Percentage) / float64(totalPercentage) *
			float64(proj.Diners) / float64(recipe.BaseDiners)

		for _, line := range recipe.Lines {
			contribution := line.Quantity * scale
			if at, ok := index[line.IngredientID]; ok {
				totals[at].Quantity += contribution
				continue
			}

			total := IngredientTotal{
				IngredientID: line.IngredientID,
				Quantity:     contribution,
			}
			if line.Ingredient != nil {
				total.Name = line.Ingredient.Name
				total.Unit = line.Ingredient.Unit
			}
			index[line.IngredientID] = len(totals)
			totals = append(totals, total)
		}
	}

	applog.Debug(ctx, "ingredient totals computed",
		"projection", proj.ID, "shares", len(proj.Shares), "ingredients", len(totals))
	return totals, nil
}
