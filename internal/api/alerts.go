package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homecontrol-core/internal/audit"
)

// alertRequest is the request body for PUT /alerts/{alert}.
type alertRequest struct {
	Message string `json:"message"`
}

// handleListAlerts returns the raised alerts by id.
func (s *Server) handleListAlerts(w http.ResponseWriter, _ *http.Request) {
	alerts := s.runtime.Alerts()
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// handleRaiseAlert raises or replaces an alert.
func (s *Server) handleRaiseAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "alert")
	if err := s.runtime.RaiseAlert(requestContext(r), id, req.Message); err != nil {
		s.writeDeviceError(w, r, err)
		return
	}
	s.auditLog(r, audit.ActionAlertRaise, "", map[string]any{"alert": id, "message": req.Message})
	writeJSON(w, http.StatusOK, map[string]string{
		"id":      id,
		"message": req.Message,
	})
}

// handleClearAlert clears a raised alert.
func (s *Server) handleClearAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "alert")
	if err := s.runtime.ClearAlert(requestContext(r), id); err != nil {
		s.writeDeviceError(w, r, err)
		return
	}
	s.auditLog(r, audit.ActionAlertClear, "", map[string]any{"alert": id})
	w.WriteHeader(http.StatusNoContent)
}
