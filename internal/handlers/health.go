package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	applog "comedor/internal/log"
)

var startedAt = time.Now().UTC()

type healthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
	Uptime string    `json:"uptime"`
}

// Health is a simple readiness handler suitable for infrastructure probes.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
		Uptime: time.Since(startedAt).Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	applog.Debug(r.Context(), "health check responded successfully")
}
