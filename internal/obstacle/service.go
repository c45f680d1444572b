package obstacle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mverac/rover-core/internal/infrastructure/logging"
)

// Events published on a device's topic by this service.
const (
	EventNewObstacle   = "new_obstacle"
	EventManualCreated = "manual_obstacle_created"
	EventManualDeleted = "manual_obstacle_deleted"
)

// EventPublisher delivers domain events to the subscribers of a device
// topic. Delivery is best-effort and must never block the caller.
type EventPublisher interface {
	Publish(deviceID int64, event string, data any)
}

// DeviceChecker reports whether a device exists. Satisfied by the
// vehicle repository.
type DeviceChecker interface {
	DeviceExists(ctx context.Context, id int64) (bool, error)
}

// DistanceRecorder mirrors reported obstacle distances into a metrics
// backend. Implementations must not block.
type DistanceRecorder interface {
	RecordObstacleDistance(deviceID int64, code int, distance float64)
}

// Service coordinates sensor reports and manual obstacle markers.
type Service struct {
	repo      Repository
	catalog   *Catalog
	devices   DeviceChecker
	publisher EventPublisher
	metrics   DistanceRecorder
	logger    *logging.Logger
}

// NewService creates an obstacle service. metrics may be nil when no
// telemetry backend is configured.
func NewService(repo Repository, catalog *Catalog, devices DeviceChecker,
	publisher EventPublisher, metrics DistanceRecorder, logger *logging.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		devices:   devices,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("component", "obstacle"),
	}
}

// Report validates, persists and announces a sensor obstacle report.
// The returned Report is the committed record re-read from storage.
func (s *Service) Report(ctx context.Context, deviceID int64, code int, distance *float64, location *string) (*Report, error) {
	if !s.catalog.HasCode(code) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCode, code)
	}
	if distance != nil && *distance < 0 {
		return nil, ErrInvalidDistance
	}
	if location != nil && !ValidLocation(*location) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, *location)
	}

	exists, err := s.devices.DeviceExists(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDeviceNotFound
	}

	now := time.Now().UTC()
	eventID, err := s.repo.SaveReport(ctx, &Report{
		DeviceID: deviceID,
		Code:     code,
		Distance: distance,
		Location: location,
	}, now)
	if err != nil {
		return nil, err
	}

	report, err := s.repo.GetReport(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return &Report{
				EventID:   eventID,
				DeviceID:  deviceID,
				Code:      code,
				Distance:  distance,
				Location:  location,
				Timestamp: now.Format(timeFormat),
			}, nil
		}
		return nil, err
	}

	s.publisher.Publish(report.DeviceID, EventNewObstacle, report)
	if s.metrics != nil && report.Distance != nil {
		s.metrics.RecordObstacleDistance(report.DeviceID, report.Code, *report.Distance)
	}
	s.logger.Info("obstacle reported",
		"event_id", report.EventID,
		"device_id", report.DeviceID,
		"code", report.Code)

	return report, nil
}

// RecentReports returns the most recent sensor reports, newest first.
// A deviceID of 0 means all devices.
func (s *Service) RecentReports(ctx context.Context, deviceID int64, limit int) ([]Report, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.ListRecentReports(ctx, deviceID, limit)
}

// Catalog returns the obstacle classification catalog.
func (s *Service) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	return s.repo.ListCatalog(ctx)
}

// CreateManual validates, persists and announces a manual obstacle
// marker. The returned record is re-read from storage.
func (s *Service) CreateManual(ctx context.Context, m *ManualObstacle) (*ManualObstacle, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return nil, ErrInvalidName
	}
	if m.Location != nil && !ValidLocation(*m.Location) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, *m.Location)
	}

	exists, err := s.devices.DeviceExists(ctx, m.DeviceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDeviceNotFound
	}

	id, err := s.repo.CreateManual(ctx, m)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.GetManual(ctx, id)
	if err != nil {
		if errors.Is(err, ErrManualNotFound) {
			m.ID = id
			return m, nil
		}
		return nil, err
	}

	s.publisher.Publish(created.DeviceID, EventManualCreated, created)
	s.logger.Info("manual obstacle created",
		"obstacle_id", created.ID,
		"device_id", created.DeviceID)

	return created, nil
}

// ListManual returns manual obstacles, newest first.
// A deviceID of 0 means all devices.
func (s *Service) ListManual(ctx context.Context, deviceID int64) ([]ManualObstacle, error) {
	return s.repo.ListManual(ctx, deviceID)
}

// DeleteManual removes a manual obstacle and announces the deleted
// record on its device topic. The record is read before the delete so
// subscribers receive the full payload that was removed.
func (s *Service) DeleteManual(ctx context.Context, id int64) (*ManualObstacle, error) {
	m, err := s.repo.GetManual(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteManual(ctx, id); err != nil {
		return nil, err
	}

	s.publisher.Publish(m.DeviceID, EventManualDeleted, m)
	s.logger.Info("manual obstacle deleted",
		"obstacle_id", m.ID,
		"device_id", m.DeviceID)

	return m, nil
}
