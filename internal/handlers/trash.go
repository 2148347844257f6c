package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	applog "comedor/internal/log"
	"comedor/internal/trash"
	"comedor/models"
)

// TrashResource exposes the soft-delete lifecycle: listing trashed entities,
// restoring them, and permanently purging them. Purging and manual sweeps are
// destructive and therefore restricted to admin accounts.
func TrashResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/trash")
	path = strings.Trim(path, "/")

	if path == "sweep" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		runManualSweep(w, r)
		return
	}

	segments := strings.Split(path, "/")
	kind, err := trash.ParseKind(segments[0])
	if err != nil {
		writeFault(w, err)
		return
	}

	switch len(segments) {
	case 1:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		listTrashed(w, r, kind)
		return
	case 2, 3:
	default:
		http.NotFound(w, r)
		return
	}

	idValue, err := strconv.ParseUint(segments[1], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	entityID := uint(idValue)

	if len(segments) == 3 {
		if segments[2] != "restore" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		restoreTrashed(w, r, kind, entityID)
		return
	}

	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	purgeTrashed(w, r, kind, entityID)
}

func listTrashed(w http.ResponseWriter, r *http.Request, kind trash.Kind) {
	ctx := r.Context()

	filter := trash.Filter{Name: r.URL.Query().Get("name")}
	if raw := strings.TrimSpace(r.URL.Query().Get("deleted_on")); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "deleted_on must be a YYYY-MM-DD date")
			return
		}
		filter.DeletedOn = &day
	}

	entries, err := trash.ListDeleted(ctx, database, kind, filter)
	if err != nil {
		applog.Error(ctx, "failed to list trash", "kind", string(kind), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load trash")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func restoreTrashed(w http.ResponseWriter, r *http.Request, kind trash.Kind, id uint) {
	ctx := r.Context()

	restored, err := trash.Restore(ctx, database, kind, id)
	if err != nil {
		writeFault(w, err)
		return
	}
	if !restored {
		writeJSONError(w, http.StatusConflict, "entity is not in the trash")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func purgeTrashed(w http.ResponseWriter, r *http.Request, kind trash.Kind, id uint) {
	ctx := r.Context()

	if currentUserRole(r) != models.RoleAdmin {
		writeJSONError(w, http.StatusForbidden, "permanent deletion requires an admin account")
		return
	}

	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "force must be a boolean")
			return
		}
		force = parsed
	}

	if err := trash.PermanentDelete(ctx, database, kind, id, force, time.Now().UTC()); err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func runManualSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if currentUserRole(r) != models.RoleAdmin {
		writeJSONError(w, http.StatusForbidden, "sweeping the trash requires an admin account")
		return
	}

	report, err := trash.Sweep(ctx, database, time.Now().UTC())
	if err != nil {
		applog.Error(ctx, "manual sweep failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
