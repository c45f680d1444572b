package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mverac/rover-core/internal/vehicle"
)

// commandRequest is the body for POST /commands.
type commandRequest struct {
	DeviceID  int64 `json:"id_dispositivo"`
	Operation int   `json:"status_operacion"`
}

// handleSendCommand accepts a movement command, persists it, and
// announces it on the device topic.
func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.DeviceID <= 0 {
		req.DeviceID = defaultDeviceID
	}

	cmd, err := s.vehicles.SendCommand(r.Context(), req.DeviceID, req.Operation)
	if err != nil {
		switch {
		case errors.Is(err, vehicle.ErrUnknownOperation):
			writeBadRequest(w, "status_operacion is not a valid operation")
		case errors.Is(err, vehicle.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		default:
			s.logger.Error("command write failed", "error", err)
			writeInternalError(w, "failed to save command")
		}
		return
	}

	writeSuccess(w, http.StatusCreated, "command registered", cmd)
}

// handleListCommands returns the recent command history, newest first.
// Optional query parameters: device_id, limit.
func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	deviceID := queryInt64(r, "device_id")
	limit := int(queryInt64(r, "limit"))

	commands, err := s.vehicles.RecentCommands(r.Context(), deviceID, limit)
	if err != nil {
		s.logger.Error("command list failed", "error", err)
		writeInternalError(w, "failed to load commands")
		return
	}
	if commands == nil {
		commands = []vehicle.Command{}
	}

	writeSuccess(w, http.StatusOK, "", commands)
}

// handleListOperations returns the movement operations catalog.
func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	ops, err := s.vehicles.Operations(r.Context())
	if err != nil {
		s.logger.Error("operations list failed", "error", err)
		writeInternalError(w, "failed to load operations")
		return
	}
	if ops == nil {
		ops = []vehicle.Operation{}
	}

	writeSuccess(w, http.StatusOK, "", ops)
}

// queryInt64 parses a positive integer query parameter, returning 0
// when absent or malformed.
func queryInt64(r *http.Request, key string) int64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
