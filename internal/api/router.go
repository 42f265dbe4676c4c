package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/lumen-core/internal/auth"
	"github.com/nerrad567/lumen-core/internal/daemon"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// System metrics (no auth required for basic monitoring)
		r.Get("/metrics", s.handleMetrics)

		// WebSocket authenticates with a single-use ticket in the query string.
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.Route("/devices", func(r chi.Router) {
				r.With(s.requirePermission(auth.PermDeviceRead)).Get("/", s.handleListDevices)
				r.With(s.requirePermission(auth.PermSystemAdmin)).Post("/discover", s.handleDiscover)

				r.Route("/{serial}", func(r chi.Router) {
					// Reads
					r.Group(func(r chi.Router) {
						r.Use(s.requirePermission(auth.PermDeviceRead))
						r.Get("/", s.handleGetDevice)
						r.Get("/info", s.handleGetDeviceInfo)
						r.Get("/zones/{zone}", s.handleGetZone)
						r.Get("/dpi", s.handleGetDPI)
						r.Get("/poll-rate", s.handleGetPollRate)
						r.Get("/mode", s.handleGetMode)
					})

					// Lighting
					r.Group(func(r chi.Router) {
						r.Use(s.requirePermission(auth.PermDeviceOperate))
						r.Put("/zones/{zone}/effect", s.command(daemon.ActionEffect))
						r.Put("/zones/{zone}/brightness", s.command(daemon.ActionBrightness))
						r.Put("/zones/{zone}/active", s.command(daemon.ActionActive))
						r.Post("/restore", s.command(daemon.ActionRestore))
					})

					// Hardware settings
					r.Group(func(r chi.Router) {
						r.Use(s.requirePermission(auth.PermDeviceConfigure))
						r.Put("/dpi", s.command(daemon.ActionDPI))
						r.Put("/poll-rate", s.command(daemon.ActionPollRate))
						r.Put("/mode", s.command(daemon.ActionDeviceMode))
						r.Put("/effect-sync", s.command(daemon.ActionEffectSync))
						r.Post("/custom-effect", s.command(daemon.ActionCustomEffect))
						r.Post("/custom-frame", s.command(daemon.ActionKeyRow))
						r.Post("/suspend", s.command(daemon.ActionSuspend))
						r.Post("/resume", s.command(daemon.ActionResume))
					})

					r.With(s.requirePermission(auth.PermSystemAdmin)).Delete("/", s.handleRemoveDevice)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
