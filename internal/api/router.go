package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homecontrol-core/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Prometheus scrape endpoint (no auth required for basic monitoring)
	if s.metrics != nil {
		r.Method(http.MethodGet, s.metricsPath, s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// The WebSocket upgrade authenticates from the query string.
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermDeviceRead))
				r.Get("/device", s.handleGetDevice)
				r.Get("/nodes", s.handleListNodes)
				r.Get("/nodes/{node}", s.handleGetNode)
				r.Get("/alerts", s.handleListAlerts)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermNodeManage))
				r.Post("/nodes", s.handleProvisionNode)
				r.Delete("/nodes/{node}", s.handleDeprovisionNode)
			})

			r.With(s.requirePermission(auth.PermDeviceOperate)).
				Post("/nodes/{node}/properties/{property}/set", s.handleSetProperty)

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermAlertManage))
				r.Put("/alerts/{alert}", s.handleRaiseAlert)
				r.Delete("/alerts/{alert}", s.handleClearAlert)
			})

			r.With(s.requirePermission(auth.PermAuditRead)).
				Get("/audit", s.handleListAuditLog)
		})
	})

	return r
}

// handleHealth reports the process version and the device state.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"version":      s.version,
		"device":       s.runtime.Device().ID(),
		"device_state": s.runtime.State(),
		"ws_clients":   s.hub.ClientCount(),
	})
}
