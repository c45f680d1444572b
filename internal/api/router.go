package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
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
		r.Get("/health", s.handleHealth)

		// Movement commands and the operations catalog
		r.Get("/commands", s.handleListCommands)
		r.Post("/commands", s.handleSendCommand)
		r.Get("/operations", s.handleListOperations)

		// Device registry
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Put("/", s.handleUpdateDevice)
				r.Delete("/", s.handleDeleteDevice)
			})
		})

		// Obstacle reports and manual markers
		r.Route("/obstacles", func(r chi.Router) {
			r.Get("/", s.handleListObstacles)
			r.Post("/", s.handleReportObstacle)
			r.Get("/catalog", s.handleObstacleCatalog)

			r.Route("/manual", func(r chi.Router) {
				r.Get("/", s.handleListManualObstacles)
				r.Post("/", s.handleCreateManualObstacle)
				r.Delete("/{id}", s.handleDeleteManualObstacle)
			})
		})

		// Movement sequences and executions
		r.Route("/sequences", func(r chi.Router) {
			r.Get("/", s.handleListSequences)
			r.Post("/", s.handleCreateSequence)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSequence)
				r.Put("/", s.handleUpdateSequence)
				r.Delete("/", s.handleDeleteSequence)
				r.Post("/execute", s.handleExecuteSequence)
			})
		})
		r.Post("/executions/status", s.handleExecutionStatus)

		// WebSocket event stream
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status, including database
// connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			dbStatus = "unavailable"
		}
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"version":  s.version,
		"database": dbStatus,
		"clients":  s.Hub().ClientCount(),
	})
}
