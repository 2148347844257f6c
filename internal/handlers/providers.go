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

type providerRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

type providerResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProviderResource handles CRUD interactions for ingredient providers.
func ProviderResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/providers")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listProviders(w, r)
		case http.MethodPost:
			createProvider(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	providerID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showProvider(w, r, providerID)
	case http.MethodPut:
		updateProvider(w, r, providerID)
	case http.MethodDelete:
		deleteProvider(w, r, providerID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listProviders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.Provider
	if err := database.WithContext(ctx).Order("name asc").Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list providers", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load providers")
		return
	}

	responses := make([]providerResponse, 0, len(results))
	for _, provider := range results {
		responses = append(responses, projectProvider(provider))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showProvider(w http.ResponseWriter, r *http.Request, providerID uint) {
	ctx := r.Context()
	var provider models.Provider
	if err := database.WithContext(ctx).First(&provider, providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load provider", "error", err, "id", providerID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load provider")
		return
	}
	writeJSON(w, http.StatusOK, projectProvider(provider))
}

func createProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload providerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if strings.TrimSpace(payload.Name) == "" {
		writeFault(w, fault.Field(fault.KindInvalid, "name", "name is required"))
		return
	}

	provider := models.Provider{
		Name:    strings.TrimSpace(payload.Name),
		Contact: strings.TrimSpace(payload.Contact),
		Phone:   strings.TrimSpace(payload.Phone),
	}
	if err := database.WithContext(ctx).Create(&provider).Error; err != nil {
		applog.Error(ctx, "failed to create provider", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create provider")
		return
	}
	writeJSON(w, http.StatusCreated, projectProvider(provider))
}

func updateProvider(w http.ResponseWriter, r *http.Request, providerID uint) {
	ctx := r.Context()
	var provider models.Provider
	if err := database.WithContext(ctx).First(&provider, providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load provider for update", "error", err, "id", providerID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load provider")
		return
	}

	var payload providerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeFault(w, fault.Field(fault.KindInvalid, "name", "name is required"))
		return
	}

	updates := map[string]any{
		"name":    strings.TrimSpace(payload.Name),
		"contact": strings.TrimSpace(payload.Contact),
		"phone":   strings.TrimSpace(payload.Phone),
	}
	if err := database.WithContext(ctx).Model(&provider).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update provider", "error", err, "id", providerID)
		writeJSONError(w, http.StatusBadRequest, "unable to update provider")
		return
	}

	if err := database.WithContext(ctx).First(&provider, providerID).Error; err != nil {
		applog.Error(ctx, "failed to reload updated provider", "error", err, "id", providerID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load provider")
		return
	}
	writeJSON(w, http.StatusOK, projectProvider(provider))
}

func deleteProvider(w http.ResponseWriter, r *http.Request, providerID uint) {
	ctx := r.Context()

	var references int64
	if err := database.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("provider_id = ?", providerID).
		Count(&references).Error; err != nil {
		applog.Error(ctx, "failed to count provider references", "error", err, "id", providerID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete provider")
		return
	}
	if references > 0 {
		writeJSONError(w, http.StatusConflict, "provider is referenced by ingredients")
		return
	}

	if err := database.WithContext(ctx).Delete(&models.Provider{}, providerID).Error; err != nil {
		applog.Error(ctx, "failed to delete provider", "error", err, "id", providerID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete provider")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectProvider(provider models.Provider) providerResponse {
	return providerResponse{
		ID:        provider.ID,
		Name:      provider.Name,
		Contact:   provider.Contact,
		Phone:     provider.Phone,
		CreatedAt: provider.CreatedAt,
		UpdatedAt: provider.UpdatedAt,
	}
}
