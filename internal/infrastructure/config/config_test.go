package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, "{}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Port != 5500 {
		t.Errorf("expected default port 5500, got %d", cfg.API.Port)
	}
	if cfg.Database.Path != "./data/rovercore.db" {
		t.Errorf("unexpected default database path: %q", cfg.Database.Path)
	}
	if !cfg.Database.WALMode {
		t.Error("expected WAL mode enabled by default")
	}
	if cfg.WebSocket.Path != "/ws" {
		t.Errorf("unexpected default websocket path: %q", cfg.WebSocket.Path)
	}
	if cfg.MQTT.Enabled || cfg.InfluxDB.Enabled {
		t.Error("optional backends must be disabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected default logging config: %+v", cfg.Logging)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
api:
  port: 8080
database:
  path: /var/lib/rover/core.db
mqtt:
  enabled: true
  broker:
    host: broker.local
    port: 8883
    tls: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.API.Port)
	}
	if cfg.Database.Path != "/var/lib/rover/core.db" {
		t.Errorf("unexpected database path: %q", cfg.Database.Path)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker.Host != "broker.local" || !cfg.MQTT.Broker.TLS {
		t.Errorf("unexpected mqtt config: %+v", cfg.MQTT)
	}
	// Untouched sections keep their defaults.
	if cfg.WebSocket.MaxMessageSize != 8192 {
		t.Errorf("expected untouched websocket defaults, got %+v", cfg.WebSocket)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
api:
  port: 8080
`)
	t.Setenv("ROVERCORE_API_PORT", "9000")
	t.Setenv("ROVERCORE_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("ROVERCORE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("expected env override port 9000, got %d", cfg.API.Port)
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("expected env override path, got %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env override level, got %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"bad port", func(c *Config) { c.API.Port = 0 }, "api.port"},
		{"mqtt without host", func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.Broker.Host = ""
		}, "mqtt.broker.host"},
		{"bad qos", func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.QoS = 3
		}, "mqtt.qos"},
		{"influxdb without url", func(c *Config) { c.InfluxDB.Enabled = true }, "influxdb.url"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
