package api

import (
	"context"
	"encoding/json"

	"github.com/mverac/rover-core/internal/infrastructure/mqtt"
)

// obstacleTelemetry is the payload rovers publish on
// rover/telemetry/obstacle. It mirrors the HTTP report body.
type obstacleTelemetry struct {
	DeviceID int64    `json:"id_dispositivo"`
	Code     int      `json:"status_obstaculo"`
	Distance *float64 `json:"distancia"`
	Location *string  `json:"ubicacion"`
}

// subscribeObstacleTelemetry routes MQTT obstacle detections through
// the same report pipeline as HTTP submissions, so persistence and
// WebSocket fan-out behave identically regardless of transport.
func (s *Server) subscribeObstacleTelemetry() error {
	if s.mqtt == nil {
		return nil // MQTT not configured; rovers report via HTTP only
	}

	topic := mqtt.Topics{}.AllObstacleTelemetry()
	s.logger.Info("subscribing to obstacle telemetry", "topic", topic)

	return s.mqtt.Subscribe(topic, 1, func(t string, payload []byte) error {
		var msg obstacleTelemetry
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Warn("failed to parse obstacle telemetry", "topic", t, "error", err)
			return nil
		}
		if msg.DeviceID <= 0 {
			s.logger.Warn("obstacle telemetry missing device id", "topic", t)
			return nil
		}

		// The MQTT handler runs outside any HTTP request, so use a
		// background context for the write.
		if _, err := s.obstacles.Report(context.Background(), msg.DeviceID, msg.Code, msg.Distance, msg.Location); err != nil {
			s.logger.Warn("obstacle telemetry rejected",
				"device_id", msg.DeviceID, "code", msg.Code, "error", err)
		}
		return nil
	})
}
