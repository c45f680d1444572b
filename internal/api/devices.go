package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mverac/rover-core/internal/vehicle"
)

// deviceRequest is the body for POST and PUT /devices.
type deviceRequest struct {
	Client      *string `json:"cliente"`
	Name        string  `json:"nombre_dispositivo"`
	Description *string `json:"descripcion"`
}

// handleListDevices returns all registered devices.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.vehicles.Devices(r.Context())
	if err != nil {
		s.logger.Error("device list failed", "error", err)
		writeInternalError(w, "failed to load devices")
		return
	}
	if devices == nil {
		devices = []vehicle.Device{}
	}

	writeSuccess(w, http.StatusOK, "", devices)
}

// handleGetDevice returns a single device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	d, err := s.vehicles.Device(r.Context(), id)
	if err != nil {
		if errors.Is(err, vehicle.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("device read failed", "error", err)
		writeInternalError(w, "failed to load device")
		return
	}

	writeSuccess(w, http.StatusOK, "", d)
}

// handleCreateDevice registers a new device.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	created, err := s.vehicles.CreateDevice(r.Context(), &vehicle.Device{
		Client:      req.Client,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, vehicle.ErrInvalidName):
			writeBadRequest(w, "nombre_dispositivo is required")
		case errors.Is(err, vehicle.ErrDeviceExists):
			writeBadRequest(w, "a device with that name already exists")
		default:
			s.logger.Error("device create failed", "error", err)
			writeInternalError(w, "failed to create device")
		}
		return
	}

	writeSuccess(w, http.StatusCreated, "device created", created)
}

// handleUpdateDevice modifies a device's registration.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	updated, err := s.vehicles.UpdateDevice(r.Context(), &vehicle.Device{
		ID:          id,
		Client:      req.Client,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, vehicle.ErrInvalidName):
			writeBadRequest(w, "nombre_dispositivo is required")
		case errors.Is(err, vehicle.ErrDeviceExists):
			writeBadRequest(w, "a device with that name already exists")
		case errors.Is(err, vehicle.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		default:
			s.logger.Error("device update failed", "error", err)
			writeInternalError(w, "failed to update device")
		}
		return
	}

	writeSuccess(w, http.StatusOK, "device updated", updated)
}

// handleDeleteDevice removes a device registration.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.vehicles.DeleteDevice(r.Context(), id); err != nil {
		if errors.Is(err, vehicle.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("device delete failed", "error", err)
		writeInternalError(w, "failed to delete device")
		return
	}

	writeSuccess(w, http.StatusOK, "device deleted", map[string]int64{"id_dispositivo": id})
}
