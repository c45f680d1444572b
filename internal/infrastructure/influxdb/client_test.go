package influxdb

import (
	"errors"
	"testing"

	"github.com/mverac/rover-core/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestWritesOnDisconnectedClientAreNoOps(t *testing.T) {
	c := &Client{}

	// A client that never connected silently drops points; metrics are
	// best-effort and must never panic or block the request path.
	c.RecordObstacleDistance(1, 2, 42.5)
	c.WriteCommandCount(1, 5)
	c.WritePoint("custom", map[string]string{"k": "v"}, map[string]interface{}{"n": 1})
}
