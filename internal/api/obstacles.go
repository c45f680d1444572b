package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mverac/rover-core/internal/obstacle"
)

// obstacleRequest is the body for POST /obstacles.
type obstacleRequest struct {
	DeviceID int64    `json:"id_dispositivo"`
	Code     int      `json:"status_obstaculo"`
	Distance *float64 `json:"distancia"`
	Location *string  `json:"ubicacion"`
}

// manualObstacleRequest is the body for POST /obstacles/manual.
type manualObstacleRequest struct {
	DeviceID    int64   `json:"id_dispositivo"`
	Name        string  `json:"nombre"`
	Location    *string `json:"ubicacion"`
	Description *string `json:"descripcion"`
}

// handleReportObstacle accepts a sensor obstacle report, persists it,
// and announces it on the device topic.
func (s *Server) handleReportObstacle(w http.ResponseWriter, r *http.Request) {
	var req obstacleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.DeviceID <= 0 {
		req.DeviceID = defaultDeviceID
	}

	report, err := s.obstacles.Report(r.Context(), req.DeviceID, req.Code, req.Distance, req.Location)
	if err != nil {
		switch {
		case errors.Is(err, obstacle.ErrUnknownCode):
			writeBadRequest(w, "status_obstaculo is not a valid classification")
		case errors.Is(err, obstacle.ErrInvalidDistance):
			writeBadRequest(w, "distancia cannot be negative")
		case errors.Is(err, obstacle.ErrInvalidLocation):
			writeBadRequest(w, "ubicacion must be one of frontal, trasera, izquierda, derecha")
		case errors.Is(err, obstacle.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		default:
			s.logger.Error("obstacle write failed", "error", err)
			writeInternalError(w, "failed to save obstacle")
		}
		return
	}

	writeSuccess(w, http.StatusCreated, "obstacle registered", report)
}

// handleListObstacles returns the recent sensor report history.
// Optional query parameters: device_id, limit.
func (s *Server) handleListObstacles(w http.ResponseWriter, r *http.Request) {
	deviceID := queryInt64(r, "device_id")
	limit := int(queryInt64(r, "limit"))

	reports, err := s.obstacles.RecentReports(r.Context(), deviceID, limit)
	if err != nil {
		s.logger.Error("obstacle list failed", "error", err)
		writeInternalError(w, "failed to load obstacles")
		return
	}
	if reports == nil {
		reports = []obstacle.Report{}
	}

	writeSuccess(w, http.StatusOK, "", reports)
}

// handleObstacleCatalog returns the obstacle classification catalog.
func (s *Server) handleObstacleCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.obstacles.Catalog(r.Context())
	if err != nil {
		s.logger.Error("obstacle catalog failed", "error", err)
		writeInternalError(w, "failed to load obstacle catalog")
		return
	}
	if entries == nil {
		entries = []obstacle.CatalogEntry{}
	}

	writeSuccess(w, http.StatusOK, "", entries)
}

// handleCreateManualObstacle places a manual obstacle marker.
func (s *Server) handleCreateManualObstacle(w http.ResponseWriter, r *http.Request) {
	var req manualObstacleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.DeviceID <= 0 {
		req.DeviceID = defaultDeviceID
	}

	created, err := s.obstacles.CreateManual(r.Context(), &obstacle.ManualObstacle{
		DeviceID:    req.DeviceID,
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, obstacle.ErrInvalidName):
			writeBadRequest(w, "nombre is required")
		case errors.Is(err, obstacle.ErrInvalidLocation):
			writeBadRequest(w, "ubicacion must be one of frontal, trasera, izquierda, derecha")
		case errors.Is(err, obstacle.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		default:
			s.logger.Error("manual obstacle write failed", "error", err)
			writeInternalError(w, "failed to save manual obstacle")
		}
		return
	}

	writeSuccess(w, http.StatusCreated, "manual obstacle created", created)
}

// handleListManualObstacles returns manual obstacle markers.
// Optional query parameter: device_id.
func (s *Server) handleListManualObstacles(w http.ResponseWriter, r *http.Request) {
	obstacles, err := s.obstacles.ListManual(r.Context(), queryInt64(r, "device_id"))
	if err != nil {
		s.logger.Error("manual obstacle list failed", "error", err)
		writeInternalError(w, "failed to load manual obstacles")
		return
	}
	if obstacles == nil {
		obstacles = []obstacle.ManualObstacle{}
	}

	writeSuccess(w, http.StatusOK, "", obstacles)
}

// handleDeleteManualObstacle removes a manual obstacle marker and
// announces the deleted record.
func (s *Server) handleDeleteManualObstacle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "invalid obstacle id")
		return
	}

	deleted, err := s.obstacles.DeleteManual(r.Context(), id)
	if err != nil {
		if errors.Is(err, obstacle.ErrManualNotFound) {
			writeNotFound(w, "manual obstacle not found")
			return
		}
		s.logger.Error("manual obstacle delete failed", "error", err)
		writeInternalError(w, "failed to delete manual obstacle")
		return
	}

	writeSuccess(w, http.StatusOK, "manual obstacle deleted", deleted)
}
