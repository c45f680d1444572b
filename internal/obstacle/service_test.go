package obstacle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mverac/rover-core/internal/infrastructure/logging"
)

type fakeObstacleRepo struct {
	reports map[int64]*Report
	manuals map[int64]*ManualObstacle
	nextID  int64
}

func newFakeObstacleRepo() *fakeObstacleRepo {
	return &fakeObstacleRepo{
		reports: make(map[int64]*Report),
		manuals: make(map[int64]*ManualObstacle),
	}
}

func (f *fakeObstacleRepo) ListCatalog(context.Context) ([]CatalogEntry, error) {
	return []CatalogEntry{
		{Code: 1, Text: "pared"},
		{Code: 2, Text: "objeto movil"},
	}, nil
}

func (f *fakeObstacleRepo) SaveReport(_ context.Context, r *Report, at time.Time) (int64, error) {
	f.nextID++
	f.reports[f.nextID] = &Report{
		EventID:    f.nextID,
		DeviceID:   r.DeviceID,
		Code:       r.Code,
		Text:       "pared",
		Distance:   r.Distance,
		Location:   r.Location,
		DeviceName: "Rover 01",
		Timestamp:  at.Format(timeFormat),
	}
	return f.nextID, nil
}

func (f *fakeObstacleRepo) GetReport(_ context.Context, eventID int64) (*Report, error) {
	r, ok := f.reports[eventID]
	if !ok {
		return nil, ErrReportNotFound
	}
	return r, nil
}

func (f *fakeObstacleRepo) ListRecentReports(_ context.Context, _ int64, _ int) ([]Report, error) {
	return nil, nil
}

func (f *fakeObstacleRepo) CreateManual(_ context.Context, m *ManualObstacle) (int64, error) {
	f.nextID++
	f.manuals[f.nextID] = &ManualObstacle{
		ID:       f.nextID,
		DeviceID: m.DeviceID,
		Name:     m.Name,
		Location: m.Location,
	}
	return f.nextID, nil
}

func (f *fakeObstacleRepo) GetManual(_ context.Context, id int64) (*ManualObstacle, error) {
	m, ok := f.manuals[id]
	if !ok {
		return nil, ErrManualNotFound
	}
	return m, nil
}

func (f *fakeObstacleRepo) ListManual(context.Context, int64) ([]ManualObstacle, error) {
	return nil, nil
}

func (f *fakeObstacleRepo) DeleteManual(_ context.Context, id int64) error {
	if _, ok := f.manuals[id]; !ok {
		return ErrManualNotFound
	}
	delete(f.manuals, id)
	return nil
}

type fakeDevices struct{ known map[int64]bool }

func (f fakeDevices) DeviceExists(_ context.Context, id int64) (bool, error) {
	return f.known[id], nil
}

type recordingPublisher struct {
	deviceIDs []int64
	events    []string
	payloads  []any
}

func (p *recordingPublisher) Publish(deviceID int64, event string, data any) {
	p.deviceIDs = append(p.deviceIDs, deviceID)
	p.events = append(p.events, event)
	p.payloads = append(p.payloads, data)
}

type recordingMetrics struct {
	distances []float64
}

func (m *recordingMetrics) RecordObstacleDistance(_ int64, _ int, distance float64) {
	m.distances = append(m.distances, distance)
}

func newTestService(t *testing.T) (*Service, *fakeObstacleRepo, *recordingPublisher, *recordingMetrics) {
	t.Helper()

	repo := newFakeObstacleRepo()
	catalog := NewCatalog(repo)
	if err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("catalog refresh failed: %v", err)
	}
	pub := &recordingPublisher{}
	metrics := &recordingMetrics{}
	devices := fakeDevices{known: map[int64]bool{1: true}}
	svc := NewService(repo, catalog, devices, pub, metrics, logging.Default())
	return svc, repo, pub, metrics
}

func TestReport(t *testing.T) {
	svc, _, pub, metrics := newTestService(t)

	distance := 18.0
	location := "izquierda"
	report, err := svc.Report(context.Background(), 1, 1, &distance, &location)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if report.Text != "pared" {
		t.Errorf("expected committed record with catalog text, got %+v", report)
	}

	if len(pub.events) != 1 || pub.events[0] != EventNewObstacle {
		t.Fatalf("expected one new_obstacle event, got %v", pub.events)
	}
	if pub.deviceIDs[0] != 1 {
		t.Errorf("expected publish on device 1, got %d", pub.deviceIDs[0])
	}
	if len(metrics.distances) != 1 || metrics.distances[0] != 18.0 {
		t.Errorf("expected distance mirrored to metrics, got %v", metrics.distances)
	}
}

func TestReportValidation(t *testing.T) {
	svc, repo, pub, _ := newTestService(t)
	ctx := context.Background()

	negative := -1.0
	bad := "arriba"

	cases := []struct {
		name     string
		deviceID int64
		code     int
		distance *float64
		location *string
		want     error
	}{
		{"unknown code", 1, 99, nil, nil, ErrUnknownCode},
		{"negative distance", 1, 1, &negative, nil, ErrInvalidDistance},
		{"bad location", 1, 1, nil, &bad, ErrInvalidLocation},
		{"unknown device", 9, 1, nil, nil, ErrDeviceNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Report(ctx, tc.deviceID, tc.code, tc.distance, tc.location)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if len(repo.reports) != 0 {
		t.Error("rejected reports must not be persisted")
	}
	if len(pub.events) != 0 {
		t.Error("rejected reports must not be published")
	}
}

func TestReportWithoutMetrics(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	svc.metrics = nil

	distance := 5.0
	if _, err := svc.Report(context.Background(), 1, 1, &distance, nil); err != nil {
		t.Fatalf("Report without metrics backend failed: %v", err)
	}
}

func TestCreateManualValidation(t *testing.T) {
	svc, _, pub, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateManual(ctx, &ManualObstacle{DeviceID: 1, Name: "  "}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
	bad := "norte"
	if _, err := svc.CreateManual(ctx, &ManualObstacle{DeviceID: 1, Name: "caja", Location: &bad}); !errors.Is(err, ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Error("rejected manual obstacles must not be published")
	}

	created, err := svc.CreateManual(ctx, &ManualObstacle{DeviceID: 1, Name: " caja "})
	if err != nil {
		t.Fatalf("CreateManual failed: %v", err)
	}
	if created.Name != "caja" {
		t.Errorf("expected trimmed name, got %q", created.Name)
	}
	if len(pub.events) != 1 || pub.events[0] != EventManualCreated {
		t.Fatalf("expected manual_obstacle_created event, got %v", pub.events)
	}
}

func TestDeleteManualPublishesRecord(t *testing.T) {
	svc, _, pub, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateManual(ctx, &ManualObstacle{DeviceID: 1, Name: "rampa"})
	if err != nil {
		t.Fatalf("CreateManual failed: %v", err)
	}

	deleted, err := svc.DeleteManual(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeleteManual failed: %v", err)
	}
	if deleted.Name != "rampa" {
		t.Errorf("expected full pre-delete record, got %+v", deleted)
	}

	// Second event is the deletion, carrying the removed record.
	if len(pub.events) != 2 || pub.events[1] != EventManualDeleted {
		t.Fatalf("expected manual_obstacle_deleted event, got %v", pub.events)
	}
	if pub.payloads[1].(*ManualObstacle).ID != created.ID {
		t.Error("deletion event must carry the removed record")
	}

	if _, err := svc.DeleteManual(ctx, created.ID); !errors.Is(err, ErrManualNotFound) {
		t.Errorf("expected ErrManualNotFound on missing obstacle, got %v", err)
	}
}
