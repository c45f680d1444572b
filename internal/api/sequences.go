package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mverac/rover-core/internal/sequence"
)

// sequenceRequest is the body for POST and PUT /sequences.
type sequenceRequest struct {
	DeviceID int64  `json:"id_dispositivo"`
	Name     string `json:"nombre_secuencia"`
	Moves    []int  `json:"movimientos"`
}

// executionStatusRequest is the body for POST /executions/status.
type executionStatusRequest struct {
	ExecutionID int64  `json:"id_ejecucion"`
	Status      string `json:"estado"`
}

// writeSequenceError maps sequence domain errors onto HTTP responses.
func (s *Server) writeSequenceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sequence.ErrInvalidName):
		writeBadRequest(w, "nombre_secuencia is required")
	case errors.Is(err, sequence.ErrNoMoves):
		writeBadRequest(w, "movimientos must contain at least one operation")
	case errors.Is(err, sequence.ErrUnknownOperation):
		writeBadRequest(w, "movimientos contains an unknown operation")
	case errors.Is(err, sequence.ErrInvalidStatus):
		writeBadRequest(w, "estado is not a valid execution status")
	case errors.Is(err, sequence.ErrNotFound):
		writeNotFound(w, "sequence not found")
	case errors.Is(err, sequence.ErrExecutionNotFound):
		writeNotFound(w, "execution not found")
	case errors.Is(err, sequence.ErrDeviceNotFound):
		writeNotFound(w, "device not found")
	default:
		s.logger.Error("sequence operation failed", "error", err)
		writeInternalError(w, "sequence storage error")
	}
}

// handleCreateSequence creates a named movement sequence.
func (s *Server) handleCreateSequence(w http.ResponseWriter, r *http.Request) {
	var req sequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.DeviceID <= 0 {
		req.DeviceID = defaultDeviceID
	}

	seq, err := s.sequences.Create(r.Context(), req.DeviceID, req.Name, req.Moves)
	if err != nil {
		s.writeSequenceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "sequence created", seq)
}

// handleListSequences returns stored sequences, newest first.
// Optional query parameter: device_id.
func (s *Server) handleListSequences(w http.ResponseWriter, r *http.Request) {
	sequences, err := s.sequences.List(r.Context(), queryInt64(r, "device_id"))
	if err != nil {
		s.logger.Error("sequence list failed", "error", err)
		writeInternalError(w, "failed to load sequences")
		return
	}
	if sequences == nil {
		sequences = []sequence.Sequence{}
	}

	writeSuccess(w, http.StatusOK, "", sequences)
}

// handleGetSequence returns a sequence with its operations in order.
func (s *Server) handleGetSequence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	seq, err := s.sequences.Get(r.Context(), id)
	if err != nil {
		s.writeSequenceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", seq)
}

// handleUpdateSequence replaces a sequence's name and operations.
func (s *Server) handleUpdateSequence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req sequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	seq, err := s.sequences.Update(r.Context(), id, req.Name, req.Moves)
	if err != nil {
		s.writeSequenceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "sequence updated", seq)
}

// handleDeleteSequence removes a sequence and announces the deleted record.
func (s *Server) handleDeleteSequence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := s.sequences.Delete(r.Context(), id)
	if err != nil {
		s.writeSequenceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "sequence deleted", deleted)
}

// handleExecuteSequence starts a new pending run of a sequence.
func (s *Server) handleExecuteSequence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	exec, err := s.sequences.Execute(r.Context(), id)
	if err != nil {
		s.writeSequenceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "execution started", exec)
}

// handleExecutionStatus transitions an execution's lifecycle state.
func (s *Server) handleExecutionStatus(w http.ResponseWriter, r *http.Request) {
	var req executionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.ExecutionID <= 0 {
		writeBadRequest(w, "id_ejecucion is required")
		return
	}

	exec, err := s.sequences.UpdateExecutionStatus(r.Context(), req.ExecutionID, req.Status)
	if err != nil {
		s.writeSequenceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "execution status updated", exec)
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}
