package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/mverac/rover-core/internal/infrastructure/config"
)

func testMQTTConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "broker.local",
			Port:     1883,
			ClientID: "rovercore-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
	}
}

func TestBuildClientOptions(t *testing.T) {
	opts := buildClientOptions(testMQTTConfig())

	if len(opts.Servers) != 1 {
		t.Fatalf("expected 1 broker, got %d", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://broker.local:1883" {
		t.Errorf("unexpected broker URL: %q", got)
	}
	if opts.ClientID != "rovercore-test" {
		t.Errorf("unexpected client id: %q", opts.ClientID)
	}
	if opts.Username != "" {
		t.Errorf("expected no credentials, got username %q", opts.Username)
	}
	if !opts.AutoReconnect || !opts.ConnectRetry {
		t.Error("expected auto-reconnect enabled")
	}
}

func TestBuildClientOptionsTLS(t *testing.T) {
	cfg := testMQTTConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883
	cfg.Auth = config.MQTTAuthConfig{Username: "rover", Password: "secret"}

	opts := buildClientOptions(cfg)

	if got := opts.Servers[0].String(); got != "ssl://broker.local:8883" {
		t.Errorf("unexpected broker URL: %q", got)
	}
	if opts.TLSConfig == nil {
		t.Error("expected TLS config when broker TLS is enabled")
	}
	if opts.Username != "rover" || opts.Password != "secret" {
		t.Error("expected credentials applied")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testMQTTConfig())
	configureLWT(opts, "rovercore-test")

	if !opts.WillEnabled {
		t.Fatal("expected will enabled")
	}
	if opts.WillTopic != "rover/system/status" {
		t.Errorf("unexpected will topic: %q", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("expected retained will")
	}

	var payload map[string]string
	if err := json.Unmarshal(opts.WillPayload, &payload); err != nil {
		t.Fatalf("will payload is not valid JSON: %v", err)
	}
	if payload["status"] != "offline" || payload["client_id"] != "rovercore-test" {
		t.Errorf("unexpected will payload: %v", payload)
	}
	if payload["reason"] != "unexpected_disconnect" {
		t.Errorf("unexpected will reason: %q", payload["reason"])
	}
}

func TestStatusPayloads(t *testing.T) {
	var online, offline map[string]string

	if err := json.Unmarshal([]byte(buildOnlinePayload("c1")), &online); err != nil {
		t.Fatalf("online payload is not valid JSON: %v", err)
	}
	if online["status"] != "online" || online["client_id"] != "c1" {
		t.Errorf("unexpected online payload: %v", online)
	}

	if err := json.Unmarshal([]byte(buildOfflinePayload("c1")), &offline); err != nil {
		t.Fatalf("offline payload is not valid JSON: %v", err)
	}
	if offline["status"] != "offline" || offline["reason"] != "graceful_shutdown" {
		t.Errorf("unexpected offline payload: %v", offline)
	}
}
