package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"comedor/internal/fault"
	applog "comedor/internal/log"
	"comedor/internal/trash"
	"comedor/models"
)

type recipeLineRequest struct {
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type recipeRequest struct {
	Name           string              `json:"name"`
	Classification string              `json:"classification"`
	MealPeriod     string              `json:"meal_period"`
	BaseDiners     int                 `json:"base_diners"`
	Lines          []recipeLineRequest `json:"lines"`
}

type recipeLineResponse struct {
	ID           uint    `json:"id"`
	IngredientID uint    `json:"ingredient_id"`
	Ingredient   string  `json:"ingredient,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	Quantity     float64 `json:"quantity"`
}

type recipeResponse struct {
	ID             uint                 `json:"id"`
	Name           string               `json:"name"`
	Classification string               `json:"classification"`
	MealPeriod     string               `json:"meal_period"`
	BaseDiners     int                  `json:"base_diners"`
	Status         string               `json:"status"`
	DeletedAt      *time.Time           `json:"deleted_at,omitempty"`
	Lines          []recipeLineResponse `json:"lines"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// RecipeResource handles CRUD interactions for recipe records. DELETE moves
// the recipe to the trash rather than destroying it, and is restricted to
// admin accounts.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "recipe request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "recipe request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/recipes")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r)
		case http.MethodPost:
			createRecipe(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	recipeID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showRecipe(w, r, recipeID)
	case http.MethodPut:
		updateRecipe(w, r, recipeID)
	case http.MethodDelete:
		softDeleteRecipe(w, r, recipeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.Recipe

	query := database.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Ingredient").
		Where("status = ?", models.StatusActive).
		Order("name asc, id asc")

	if period := models.NormalizePeriod(r.URL.Query().Get("meal_period")); period != "" {
		query = query.Where("meal_period = ?", period)
	}

	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipes")
		return
	}

	responses := make([]recipeResponse, 0, len(results))
	for _, recipe := range results {
		responses = append(responses, projectRecipe(recipe))
	}

	writeJSON(w, http.StatusOK, responses)
}

func showRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	var recipe models.Recipe
	if err := database.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Ingredient").
		First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipe(recipe))
}

func createRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateRecipePayload(payload); err != nil {
		applog.Debug(ctx, "recipe validation failed", "error", err)
		writeFault(w, err)
		return
	}

	recipe := models.Recipe{
		Name:           strings.TrimSpace(payload.Name),
		Classification: strings.TrimSpace(payload.Classification),
		MealPeriod:     models.NormalizePeriod(payload.MealPeriod),
		BaseDiners:     payload.BaseDiners,
		Status:         models.StatusActive,
	}
	for _, line := range payload.Lines {
		recipe.Lines = append(recipe.Lines, models.RecipeIngredientLine{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		})
	}

	if err := database.WithContext(ctx).Create(&recipe).Error; err != nil {
		applog.Error(ctx, "failed to create recipe", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create recipe")
		return
	}

	reloadAndRespondRecipe(w, r, recipe.ID, http.StatusCreated)
}

func updateRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateRecipePayload(payload); err != nil {
		applog.Debug(ctx, "recipe update validation failed", "error", err)
		writeFault(w, err)
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Recipe
		if err := tx.First(&existing, recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.New(fault.KindRecipeNotFound, fmt.Sprintf("recipe %d does not exist", recipeID))
			}
			return err
		}
		if existing.Status != models.StatusActive {
			return fault.New(fault.KindRecipeNotFound, fmt.Sprintf("recipe %d is in the trash", recipeID))
		}

		updates := map[string]any{
			"name":           strings.TrimSpace(payload.Name),
			"classification": strings.TrimSpace(payload.Classification),
			"meal_period":    models.NormalizePeriod(payload.MealPeriod),
			"base_diners":    payload.BaseDiners,
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredientLine{}).Error; err != nil {
			return err
		}
		for _, line := range payload.Lines {
			row := models.RecipeIngredientLine{
				RecipeID:     recipeID,
				IngredientID: line.IngredientID,
				Quantity:     line.Quantity,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if fault.KindOf(err) != "" {
			writeFault(w, err)
			return
		}
		applog.Error(ctx, "failed to update recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update recipe")
		return
	}

	reloadAndRespondRecipe(w, r, recipeID, http.StatusOK)
}

func softDeleteRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()

	// Unlike projections, recipe deletion is limited to admin accounts.
	if currentUserRole(r) != models.RoleAdmin {
		writeJSONError(w, http.StatusForbidden, "deleting recipes requires an admin account")
		return
	}

	deleted, err := trash.SoftDelete(ctx, database, trash.KindRecipe, recipeID)
	if err != nil {
		writeFault(w, err)
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusConflict, "recipe is already in the trash")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func reloadAndRespondRecipe(w http.ResponseWriter, r *http.Request, recipeID uint, status int) {
	ctx := r.Context()
	var recipe models.Recipe
	if err := database.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Ingredient").
		First(&recipe, recipeID).Error; err != nil {
		applog.Error(ctx, "failed to reload recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}
	writeJSON(w, status, projectRecipe(recipe))
}

func projectRecipe(recipe models.Recipe) recipeResponse {
	response := recipeResponse{
		ID:             recipe.ID,
		Name:           recipe.Name,
		Classification: recipe.Classification,
		MealPeriod:     recipe.MealPeriod,
		BaseDiners:     recipe.BaseDiners,
		Status:         recipe.Status,
		DeletedAt:      recipe.DeletedAt,
		Lines:          make([]recipeLineResponse, 0, len(recipe.Lines)),
		CreatedAt:      recipe.CreatedAt,
		UpdatedAt:      recipe.UpdatedAt,
	}

	for _, line := range recipe.Lines {
		lineResponse := recipeLineResponse{
			ID:           line.ID,
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		}
		if line.Ingredient != nil {
			lineResponse.Ingredient = line.Ingredient.Name
			lineResponse.Unit = line.Ingredient.Unit
		}
		response.Lines = append(response.Lines, lineResponse)
	}

	return response
}

func validateRecipePayload(payload recipeRequest) error {
	if strings.TrimSpace(payload.Name) == "" {
		return fault.Field(fault.KindInvalid, "name", "name is required")
	}
	if !models.ValidPeriod(models.NormalizePeriod(payload.MealPeriod)) {
		return fault.Field(fault.KindInvalid, "meal_period", fmt.Sprintf("unknown meal period %q", payload.MealPeriod))
	}
	if payload.BaseDiners <= 0 {
		return fault.Field(fault.KindInvalidDinerCount, "base_diners", "base diner count must be greater than zero")
	}
	for _, line := range payload.Lines {
		if line.IngredientID == 0 {
			return fault.Field(fault.KindInvalid, "ingredient_id", "every line needs an ingredient")
		}
		if line.Quantity <= 0 {
			return fault.Field(fault.KindInvalid, "quantity", "line quantities must be greater than zero")
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFault renders a typed domain error with a status derived from its kind.
func writeFault(w http.ResponseWriter, err error) {
	var fe *fault.Error
	if !errors.As(err, &fe) {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusBadRequest
	switch fe.Kind {
	case fault.KindRecipeNotFound, fault.KindProjectionNotFound, fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindNotInTrash, fault.KindRetentionHold:
		status = http.StatusConflict
	}

	body := map[string]string{
		"error": fe.Message,
		"kind":  string(fe.Kind),
	}
	if fe.Field != "" {
		body["field"] = fe.Field
	}
	writeJSON(w, status, body)
}
