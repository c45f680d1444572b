package mqtt

import "testing"

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"obstacle telemetry", topics.TelemetryObstacle(), "rover/telemetry/obstacle"},
		{"per-device obstacle", topics.TelemetryObstacleFor(3), "rover/telemetry/obstacle/3"},
		{"all obstacle telemetry", topics.AllObstacleTelemetry(), "rover/telemetry/obstacle/#"},
		{"system status", topics.SystemStatus(), "rover/system/status"},
		{"all topics", topics.AllTopics(), "rover/#"},
	}

	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}
