package vehicle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mverac/rover-core/internal/infrastructure/logging"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	devices   map[int64]*Device
	commands  map[int64]*Command
	nextID    int64
	saveErr   error
	vanishing bool // simulate the re-read missing the committed row
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		devices:  map[int64]*Device{1: {ID: 1, Name: "Rover 01"}},
		commands: make(map[int64]*Command),
	}
}

func (f *fakeRepo) GetDevice(_ context.Context, id int64) (*Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return d, nil
}

func (f *fakeRepo) ListDevices(context.Context) ([]Device, error) {
	var out []Device
	for _, d := range f.devices {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeRepo) CreateDevice(_ context.Context, d *Device) (int64, error) {
	id := int64(len(f.devices)) + 1
	f.devices[id] = &Device{ID: id, Name: d.Name, Client: d.Client, Description: d.Description}
	return id, nil
}

func (f *fakeRepo) UpdateDevice(_ context.Context, d *Device) error {
	if _, ok := f.devices[d.ID]; !ok {
		return ErrDeviceNotFound
	}
	f.devices[d.ID] = d
	return nil
}

func (f *fakeRepo) DeleteDevice(_ context.Context, id int64) error {
	if _, ok := f.devices[id]; !ok {
		return ErrDeviceNotFound
	}
	delete(f.devices, id)
	return nil
}

func (f *fakeRepo) DeviceExists(_ context.Context, id int64) (bool, error) {
	_, ok := f.devices[id]
	return ok, nil
}

func (f *fakeRepo) ListOperations(context.Context) ([]Operation, error) {
	return []Operation{
		{Code: 1, Text: "adelante"},
		{Code: 2, Text: "atras"},
		{Code: 5, Text: "detener"},
	}, nil
}

func (f *fakeRepo) SaveCommand(_ context.Context, deviceID int64, operation int, at time.Time) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.nextID++
	if !f.vanishing {
		f.commands[f.nextID] = &Command{
			EventID:       f.nextID,
			DeviceID:      deviceID,
			Operation:     operation,
			OperationText: "atras",
			DeviceName:    "Rover 01",
			Timestamp:     at.Format(TimeFormat),
		}
	}
	return f.nextID, nil
}

func (f *fakeRepo) GetCommand(_ context.Context, eventID int64) (*Command, error) {
	cmd, ok := f.commands[eventID]
	if !ok {
		return nil, ErrCommandNotFound
	}
	return cmd, nil
}

func (f *fakeRepo) ListRecentCommands(_ context.Context, _ int64, _ int) ([]Command, error) {
	var out []Command
	for _, cmd := range f.commands {
		out = append(out, *cmd)
	}
	return out, nil
}

// recordingPublisher captures published events for assertions.
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

func newTestService(t *testing.T, repo *fakeRepo) (*Service, *recordingPublisher) {
	t.Helper()

	catalog := NewCatalog(repo)
	if err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("catalog refresh failed: %v", err)
	}
	pub := &recordingPublisher{}
	return NewService(repo, catalog, pub, nil, logging.Default()), pub
}

func TestSendCommand(t *testing.T) {
	repo := newFakeRepo()
	svc, pub := newTestService(t, repo)

	cmd, err := svc.SendCommand(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("SendCommand failed: %v", err)
	}
	if cmd.OperationText != "atras" {
		t.Errorf("expected committed record with catalog text, got %+v", cmd)
	}

	if len(pub.events) != 1 || pub.events[0] != EventNewCommand {
		t.Fatalf("expected one new_command event, got %v", pub.events)
	}
	if pub.deviceIDs[0] != 1 {
		t.Errorf("expected publish on device 1, got %d", pub.deviceIDs[0])
	}
	// The published payload is the re-read record, not the request.
	if pub.payloads[0].(*Command).EventID != cmd.EventID {
		t.Error("published payload is not the committed record")
	}
}

type recordingCommandMetrics struct {
	deviceIDs  []int64
	operations []int
}

func (m *recordingCommandMetrics) WriteCommandCount(deviceID int64, operation int) {
	m.deviceIDs = append(m.deviceIDs, deviceID)
	m.operations = append(m.operations, operation)
}

func TestSendCommandMirrorsMetric(t *testing.T) {
	repo := newFakeRepo()
	catalog := NewCatalog(repo)
	if err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("catalog refresh failed: %v", err)
	}
	metrics := &recordingCommandMetrics{}
	svc := NewService(repo, catalog, &recordingPublisher{}, metrics, logging.Default())

	if _, err := svc.SendCommand(context.Background(), 1, 2); err != nil {
		t.Fatalf("SendCommand failed: %v", err)
	}
	if len(metrics.operations) != 1 || metrics.operations[0] != 2 || metrics.deviceIDs[0] != 1 {
		t.Errorf("expected one mirrored sample for device 1 op 2, got %+v", metrics)
	}

	// Rejected commands never reach the metrics sink.
	if _, err := svc.SendCommand(context.Background(), 1, 42); !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
	if len(metrics.operations) != 1 {
		t.Error("rejected command must not be mirrored")
	}
}

func TestSendCommandUnknownOperation(t *testing.T) {
	repo := newFakeRepo()
	svc, pub := newTestService(t, repo)

	_, err := svc.SendCommand(context.Background(), 1, 42)
	if !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
	if len(repo.commands) != 0 {
		t.Error("rejected command must not be persisted")
	}
	if len(pub.events) != 0 {
		t.Error("rejected command must not be published")
	}
}

func TestSendCommandDeviceNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, pub := newTestService(t, repo)

	_, err := svc.SendCommand(context.Background(), 9, 1)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Error("no event expected for unknown device")
	}
}

func TestSendCommandStorageError(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("disk full")
	svc, pub := newTestService(t, repo)

	if _, err := svc.SendCommand(context.Background(), 1, 1); err == nil {
		t.Fatal("expected storage error")
	}
	if len(pub.events) != 0 {
		t.Error("no event expected on storage failure")
	}
}

func TestSendCommandMissingReread(t *testing.T) {
	repo := newFakeRepo()
	repo.vanishing = true
	svc, pub := newTestService(t, repo)

	// The write committed but the row vanished before the re-read:
	// the call still succeeds, the event is skipped.
	cmd, err := svc.SendCommand(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("SendCommand should succeed when re-read misses: %v", err)
	}
	if cmd.EventID == 0 || cmd.Operation != 5 {
		t.Errorf("expected fallback record, got %+v", cmd)
	}
	if cmd.OperationText != "detener" {
		t.Errorf("fallback record should carry the catalog text, got %q", cmd.OperationText)
	}
	if len(pub.events) != 0 {
		t.Error("no event expected when the committed row cannot be re-read")
	}
}

func TestCreateDeviceValidation(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)

	if _, err := svc.CreateDevice(context.Background(), &Device{Name: "   "}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName for blank name, got %v", err)
	}

	created, err := svc.CreateDevice(context.Background(), &Device{Name: "  Rover 02  "})
	if err != nil {
		t.Fatalf("CreateDevice failed: %v", err)
	}
	if created.Name != "Rover 02" {
		t.Errorf("expected trimmed name, got %q", created.Name)
	}
}
