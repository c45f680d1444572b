package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mverac/rover-core/internal/infrastructure/logging"
)

// Events published by this service. Sequence events go to the owning
// device's topic; execution events resolve the device through the
// execution's sequence.
const (
	EventCreated         = "sequence_created"
	EventUpdated         = "sequence_updated"
	EventDeleted         = "sequence_deleted"
	EventExecutionStart  = "execution_started"
	EventExecutionStatus = "execution_status_updated"
)

// EventPublisher delivers domain events to the subscribers of a device
// topic. Delivery is best-effort and must never block the caller.
type EventPublisher interface {
	Publish(deviceID int64, event string, data any)
}

// OperationChecker validates movement operation codes against the
// catalog. Satisfied by the vehicle catalog.
type OperationChecker interface {
	HasOperation(code int) bool
}

// DeviceChecker reports whether a device exists. Satisfied by the
// vehicle repository.
type DeviceChecker interface {
	DeviceExists(ctx context.Context, id int64) (bool, error)
}

// Service coordinates movement sequences and their executions.
type Service struct {
	repo       Repository
	operations OperationChecker
	devices    DeviceChecker
	publisher  EventPublisher
	logger     *logging.Logger
}

// NewService creates a sequence service.
func NewService(repo Repository, operations OperationChecker, devices DeviceChecker,
	publisher EventPublisher, logger *logging.Logger) *Service {
	return &Service{
		repo:       repo,
		operations: operations,
		devices:    devices,
		publisher:  publisher,
		logger:     logger.With("component", "sequence"),
	}
}

// validateMoves checks that a move list is non-empty and that every
// code exists in the operations catalog.
func (s *Service) validateMoves(moves []int) error {
	if len(moves) == 0 {
		return ErrNoMoves
	}
	for _, op := range moves {
		if !s.operations.HasOperation(op) {
			return fmt.Errorf("%w: %d", ErrUnknownOperation, op)
		}
	}
	return nil
}

// Create validates, persists and announces a new sequence. The
// returned Sequence is the committed record re-read from storage.
func (s *Service) Create(ctx context.Context, deviceID int64, name string, moves []int) (*Sequence, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if err := s.validateMoves(moves); err != nil {
		return nil, err
	}

	exists, err := s.devices.DeviceExists(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDeviceNotFound
	}

	id, err := s.repo.Create(ctx, deviceID, name, moves)
	if err != nil {
		return nil, err
	}

	seq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The row vanished between write and re-read. The write
			// itself committed, so report success without publishing.
			return &Sequence{
				ID:         id,
				DeviceID:   deviceID,
				Name:       name,
				Moves:      moves,
				TotalMoves: len(moves),
			}, nil
		}
		return nil, err
	}

	s.publisher.Publish(seq.DeviceID, EventCreated, seq)
	s.logger.Info("sequence created",
		"sequence_id", seq.ID,
		"device_id", seq.DeviceID,
		"moves", seq.TotalMoves)

	return seq, nil
}

// Get returns a sequence by ID with its operations in order.
func (s *Service) Get(ctx context.Context, id int64) (*Sequence, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns sequences, newest first. A deviceID of 0 means all devices.
func (s *Service) List(ctx context.Context, deviceID int64) ([]Sequence, error) {
	return s.repo.List(ctx, deviceID)
}

// Update replaces a sequence's name and operations, then announces the
// committed record on the owning device's topic.
func (s *Service) Update(ctx context.Context, id int64, name string, moves []int) (*Sequence, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if err := s.validateMoves(moves); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, name, moves); err != nil {
		return nil, err
	}

	seq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Deleted concurrently after the update committed.
			return &Sequence{
				ID:         id,
				Name:       name,
				Moves:      moves,
				TotalMoves: len(moves),
			}, nil
		}
		return nil, err
	}

	s.publisher.Publish(seq.DeviceID, EventUpdated, seq)
	s.logger.Info("sequence updated", "sequence_id", seq.ID, "device_id", seq.DeviceID)

	return seq, nil
}

// Delete removes a sequence and announces the record as it existed
// before removal.
func (s *Service) Delete(ctx context.Context, id int64) (*Sequence, error) {
	seq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.publisher.Publish(seq.DeviceID, EventDeleted, seq)
	s.logger.Info("sequence deleted", "sequence_id", seq.ID, "device_id", seq.DeviceID)

	return seq, nil
}

// Execute records a new pending run of a sequence and announces it.
// The execution's device is resolved through the owning sequence.
func (s *Service) Execute(ctx context.Context, sequenceID int64) (*Execution, error) {
	seq, err := s.repo.GetByID(ctx, sequenceID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id, err := s.repo.CreateExecution(ctx, sequenceID, now)
	if err != nil {
		return nil, err
	}

	exec, err := s.repo.GetExecution(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExecutionNotFound) {
			// The sequence (and its executions) vanished after the
			// insert committed. Report success without publishing.
			return &Execution{
				ID:         id,
				SequenceID: sequenceID,
				DeviceID:   seq.DeviceID,
				Status:     StatusPending,
				Moves:      seq.Moves,
				ExecutedAt: now.Format(timeFormat),
			}, nil
		}
		return nil, err
	}

	s.publisher.Publish(exec.DeviceID, EventExecutionStart, exec)
	s.logger.Info("execution started",
		"execution_id", exec.ID,
		"sequence_id", exec.SequenceID,
		"device_id", exec.DeviceID)

	return exec, nil
}

// UpdateExecutionStatus transitions an execution and announces the
// committed record on the device topic resolved through its sequence.
func (s *Service) UpdateExecutionStatus(ctx context.Context, id int64, status string) (*Execution, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	if err := s.repo.UpdateExecutionStatus(ctx, id, status); err != nil {
		return nil, err
	}

	exec, err := s.repo.GetExecution(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExecutionNotFound) {
			// Cascade-deleted after the status update committed.
			return &Execution{ID: id, Status: status}, nil
		}
		return nil, err
	}

	s.publisher.Publish(exec.DeviceID, EventExecutionStatus, exec)
	s.logger.Info("execution status updated",
		"execution_id", exec.ID,
		"device_id", exec.DeviceID,
		"status", exec.Status)

	return exec, nil
}
