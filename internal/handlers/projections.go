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
	"comedor/internal/projection"
	"comedor/internal/trash"
	"comedor/models"
)

type projectionRequest struct {
	Name       string                  `json:"name"`
	MealPeriod string                  `json:"meal_period"`
	Diners     int                     `json:"diners"`
	Shares     []projection.ShareInput `json:"shares"`
}

type projectionUpdateRequest struct {
	Name       *string                 `json:"name"`
	MealPeriod *string                 `json:"meal_period"`
	Diners     *int                    `json:"diners"`
	Shares     []projection.ShareInput `json:"shares"`
}

type projectionShareResponse struct {
	RecipeID   uint   `json:"recipe_id"`
	Recipe     string `json:"recipe,omitempty"`
	Percentage int    `json:"percentage"`
}

type projectionResponse struct {
	ID         uint                      `json:"id"`
	Name       string                    `json:"name"`
	MealPeriod string                    `json:"meal_period"`
	Diners     int                       `json:"diners"`
	Status     string                    `json:"status"`
	DeletedAt  *time.Time                `json:"deleted_at,omitempty"`
	OwnerID    uint                      `json:"owner_id"`
	Shares     []projectionShareResponse `json:"shares"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// ProjectionResource handles CRUD interactions for projections plus the
// aggregated ingredient totals at /{id}/totals.
func ProjectionResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "projection request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		applog.Debug(r.Context(), "projection request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/projections")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listProjections(w, r)
		case http.MethodPost:
			createProjection(w, r, userID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	segment, rest, _ := strings.Cut(path, "/")
	idValue, err := strconv.ParseUint(segment, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid projection identifier", "identifier", segment, "error", err)
		http.NotFound(w, r)
		return
	}
	projectionID := uint(idValue)

	if rest == "totals" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		projectionTotals(w, r, projectionID)
		return
	}
	if rest != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showProjection(w, r, projectionID)
	case http.MethodPut:
		updateProjection(w, r, projectionID)
	case http.MethodDelete:
		softDeleteProjection(w, r, projectionID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listProjections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.Projection

	query := database.WithContext(ctx).
		Preload("Shares").
		Preload("Shares.Recipe").
		Where("status = ?", models.StatusActive).
		Order("created_at desc, id desc")

	if period := models.NormalizePeriod(r.URL.Query().Get("meal_period")); period != "" {
		query = query.Where("meal_period = ?", period)
	}

	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list projections", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load projections")
		return
	}

	responses := make([]projectionResponse, 0, len(results))
	for _, proj := range results {
		responses = append(responses, projectProjection(proj))
	}

	writeJSON(w, http.StatusOK, responses)
}

func showProjection(w http.ResponseWriter, r *http.Request, projectionID uint) {
	ctx := r.Context()
	var proj models.Projection
	if err := database.WithContext(ctx).
		Preload("Shares").
		Preload("Shares.Recipe").
		First(&proj, projectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load projection", "error", err, "id", projectionID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load projection")
		return
	}

	writeJSON(w, http.StatusOK, projectProjection(proj))
}

func createProjection(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()
	var payload projectionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid projection create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	created, err := projection.Create(ctx, database, projection.CreateInput{
		Name:       payload.Name,
		MealPeriod: payload.MealPeriod,
		Diners:     payload.Diners,
		OwnerID:    userID,
		Shares:     payload.Shares,
	})
	if err != nil {
		if fault.KindOf(err) != "" {
			applog.Debug(ctx, "projection validation failed", "error", err)
			writeFault(w, err)
			return
		}
		applog.Error(ctx, "failed to create projection", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create projection")
		return
	}

	reloadAndRespondProjection(w, r, created.ID, http.StatusCreated)
}

func updateProjection(w http.ResponseWriter, r *http.Request, projectionID uint) {
	ctx := r.Context()
	var payload projectionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid projection update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	_, err := projection.Update(ctx, database, projectionID, projection.UpdateInput{
		Name:       payload.Name,
		MealPeriod: payload.MealPeriod,
		Diners:     payload.Diners,
		Shares:     payload.Shares,
	})
	if err != nil {
		if fault.KindOf(err) != "" {
			applog.Debug(ctx, "projection update rejected", "error", err, "id", projectionID)
			writeFault(w, err)
			return
		}
		applog.Error(ctx, "failed to update projection", "error", err, "id", projectionID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update projection")
		return
	}

	reloadAndRespondProjection(w, r, projectionID, http.StatusOK)
}

func softDeleteProjection(w http.ResponseWriter, r *http.Request, projectionID uint) {
	deleted, err := trash.SoftDelete(r.Context(), database, trash.KindProjection, projectionID)
	if err != nil {
		writeFault(w, err)
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusConflict, "projection is already in the trash")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectionTotals(w http.ResponseWriter, r *http.Request, projectionID uint) {
	ctx := r.Context()
	totals, err := projection.TotalIngredients(ctx, database, projectionID)
	if err != nil {
		if fault.KindOf(err) != "" {
			writeFault(w, err)
			return
		}
		applog.Error(ctx, "failed to compute ingredient totals", "error", err, "id", projectionID)
		writeJSONError(w, http.StatusInternalServerError, "unable to compute ingredient totals")
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

func reloadAndRespondProjection(w http.ResponseWriter, r *http.Request, projectionID uint, status int) {
	ctx := r.Context()
	var proj models.Projection
	if err := database.WithContext(ctx).
		Preload("Shares").
		Preload("Shares.Recipe").
		First(&proj, projectionID).Error; err != nil {
		applog.Error(ctx, "failed to reload projection", "error", err, "id", projectionID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load projection")
		return
	}
	writeJSON(w, status, projectProjection(proj))
}

func projectProjection(proj models.Projection) projectionResponse {
	response := projectionResponse{
		ID:         proj.ID,
		Name:       proj.Name,
		MealPeriod: proj.MealPeriod,
		Diners:     proj.Diners,
		Status:     proj.Status,
		DeletedAt:  proj.DeletedAt,
		OwnerID:    proj.OwnerID,
		Shares:     make([]projectionShareResponse, 0, len(proj.Shares)),
		CreatedAt:  proj.CreatedAt,
		UpdatedAt:  proj.UpdatedAt,
	}

	for _, share := range proj.Shares {
		shareResponse := projectionShareResponse{
			RecipeID:   share.RecipeID,
			Percentage: share.Percentage,
		}
		if share.Recipe != nil {
			shareResponse.Recipe = share.Recipe.Name
		}
		response.Shares = append(response.Shares, shareResponse)
	}

	return response
}
