package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"comedor/internal/fault"
	applog "comedor/internal/log"
	"comedor/models"
)

type ingredientRequest struct {
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"price_per_unit"`
	ProviderID   *uint   `json:"provider_id"`
}

type ingredientResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	PricePerUnit float64   `json:"price_per_unit"`
	ProviderID   *uint     `json:"provider_id,omitempty"`
	Provider     string    `json:"provider,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IngredientResource handles CRUD interactions for the ingredient catalog.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "ingredient request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "ingredient request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid ingredient identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	ingredientID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, ingredientID)
	case http.MethodPut:
		updateIngredient(w, r, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.Ingredient

	query := database.WithContext(ctx).
		Preload("Provider").
		Order("name asc")

	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		query = query.Where("lower(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	responses := make([]ingredientResponse, 0, len(results))
	for _, ingredient := range results {
		responses = append(responses, projectIngredient(ingredient))
	}

	writeJSON(w, http.StatusOK, responses)
}

func showIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).Preload("Provider").First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(ingredient))
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateIngredientPayload(payload); err != nil {
		applog.Debug(ctx, "ingredient validation failed", "error", err)
		writeFault(w, err)
		return
	}

	ingredient := models.Ingredient{
		Name:         strings.TrimSpace(payload.Name),
		Unit:         normalizedUnit(payload.Unit),
		PricePerUnit: payload.PricePerUnit,
		ProviderID:   payload.ProviderID,
	}

	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		applog.Error(ctx, "failed to create ingredient", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, projectIngredient(ingredient))
}

func updateIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var existing models.Ingredient
	if err := database.WithContext(ctx).First(&existing, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient for update", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := validateIngredientPayload(payload); err != nil {
		applog.Debug(ctx, "ingredient update validation failed", "error", err)
		writeFault(w, err)
		return
	}

	updates := map[string]any{
		"name":           strings.TrimSpace(payload.Name),
		"unit":           normalizedUnit(payload.Unit),
		"price_per_unit": payload.PricePerUnit,
		"provider_id":    payload.ProviderID,
	}

	if err := database.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusBadRequest, "unable to update ingredient")
		return
	}

	if err := database.WithContext(ctx).Preload("Provider").First(&existing, ingredientID).Error; err != nil {
		applog.Error(ctx, "failed to reload updated ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(existing))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()

	// Ingredients referenced by recipe lines must stay resolvable; refuse the
	// delete instead of orphaning lines.
	var references int64
	if err := database.WithContext(ctx).
		Model(&models.RecipeIngredientLine{}).
		Where("ingredient_id = ?", ingredientID).
		Count(&references).Error; err != nil {
		applog.Error(ctx, "failed to count ingredient references", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}
	if references > 0 {
		writeJSONError(w, http.StatusConflict, "ingredient is used by existing recipes")
		return
	}

	if err := database.WithContext(ctx).Delete(&models.Ingredient{}, ingredientID).Error; err != nil {
		applog.Error(ctx, "failed to delete ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	response := ingredientResponse{
		ID:           ingredient.ID,
		Name:         strings.TrimSpace(ingredient.Name),
		Unit:         ingredient.Unit,
		PricePerUnit: ingredient.PricePerUnit,
		ProviderID:   ingredient.ProviderID,
		CreatedAt:    ingredient.CreatedAt,
		UpdatedAt:    ingredient.UpdatedAt,
	}
	if ingredient.Provider != nil {
		response.Provider = ingredient.Provider.Name
	}
	return response
}

func validateIngredientPayload(payload ingredientRequest) error {
	if strings.TrimSpace(payload.Name) == "" {
		return fault.Field(fault.KindInvalid, "name", "name is required")
	}
	if payload.PricePerUnit < 0 {
		return fault.Field(fault.KindInvalid, "price_per_unit", "price must not be negative")
	}
	return nil
}

func normalizedUnit(unit string) string {
	trimmed := strings.TrimSpace(unit)
	if trimmed == "" {
		return "kg"
	}
	return trimmed
}
