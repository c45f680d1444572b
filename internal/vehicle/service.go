package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mverac/rover-core/internal/infrastructure/logging"
)

// EventNewCommand is published on a device's topic when a movement
// command is accepted and persisted.
const EventNewCommand = "new_command"

// EventPublisher delivers domain events to the subscribers of a device
// topic. Delivery is best-effort and must never block the caller.
type EventPublisher interface {
	Publish(deviceID int64, event string, data any)
}

// CommandRecorder mirrors accepted movement commands into a metrics
// backend. Optional; nil disables mirroring.
type CommandRecorder interface {
	WriteCommandCount(deviceID int64, operation int)
}

// Service coordinates movement commands and device administration.
// Writes go through the repository inside the request's context; the
// published event payload is always the re-read record, so subscribers
// see exactly what was committed.
type Service struct {
	repo      Repository
	catalog   *Catalog
	publisher EventPublisher
	metrics   CommandRecorder
	logger    *logging.Logger
}

// NewService creates a vehicle service. metrics may be nil when no
// metrics backend is configured.
func NewService(repo Repository, catalog *Catalog, publisher EventPublisher,
	metrics CommandRecorder, logger *logging.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("component", "vehicle"),
	}
}

// SendCommand validates, persists and announces a movement command.
// The returned Command is the committed record re-read from storage.
// Publication failures do not affect the outcome: once the write has
// committed, SendCommand reports success.
func (s *Service) SendCommand(ctx context.Context, deviceID int64, operation int) (*Command, error) {
	if !s.catalog.HasOperation(operation) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, operation)
	}

	exists, err := s.repo.DeviceExists(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDeviceNotFound
	}

	now := time.Now().UTC()
	eventID, err := s.repo.SaveCommand(ctx, deviceID, operation, now)
	if err != nil {
		return nil, err
	}

	cmd, err := s.repo.GetCommand(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrCommandNotFound) {
			// The row vanished between write and re-read. The write
			// itself committed, so report success without publishing.
			return &Command{
				EventID:       eventID,
				DeviceID:      deviceID,
				Operation:     operation,
				OperationText: s.catalog.OperationText(operation),
				Timestamp:     now.Format(TimeFormat),
			}, nil
		}
		return nil, err
	}

	s.publisher.Publish(cmd.DeviceID, EventNewCommand, cmd)
	if s.metrics != nil {
		s.metrics.WriteCommandCount(cmd.DeviceID, cmd.Operation)
	}
	s.logger.Info("command accepted",
		"event_id", cmd.EventID,
		"device_id", cmd.DeviceID,
		"operation", cmd.Operation)

	return cmd, nil
}

// RecentCommands returns the most recent commands, newest first.
// A deviceID of 0 means all devices.
func (s *Service) RecentCommands(ctx context.Context, deviceID int64, limit int) ([]Command, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.ListRecentCommands(ctx, deviceID, limit)
}

// Operations returns the movement operations catalog.
func (s *Service) Operations(ctx context.Context) ([]Operation, error) {
	return s.repo.ListOperations(ctx)
}

// Devices returns all registered devices.
func (s *Service) Devices(ctx context.Context) ([]Device, error) {
	return s.repo.ListDevices(ctx)
}

// Device returns a single device by ID.
func (s *Service) Device(ctx context.Context, id int64) (*Device, error) {
	return s.repo.GetDevice(ctx, id)
}

// CreateDevice registers a new device and returns the committed record.
func (s *Service) CreateDevice(ctx context.Context, d *Device) (*Device, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return nil, ErrInvalidName
	}

	id, err := s.repo.CreateDevice(ctx, d)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("device created", "device_id", created.ID, "name", created.Name)
	return created, nil
}

// UpdateDevice modifies an existing device and returns the committed record.
func (s *Service) UpdateDevice(ctx context.Context, d *Device) (*Device, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return nil, ErrInvalidName
	}

	if err := s.repo.UpdateDevice(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.GetDevice(ctx, d.ID)
}

// DeleteDevice removes a device.
func (s *Service) DeleteDevice(ctx context.Context, id int64) error {
	if err := s.repo.DeleteDevice(ctx, id); err != nil {
		return err
	}
	s.logger.Info("device deleted", "device_id", id)
	return nil
}
