package mqtt

import "fmt"

// Topic prefixes for the rover fleet.
// Scheme: rover/{category}/{subject}
const (
	// TopicPrefix is the base for all fleet topics.
	TopicPrefix = "rover"

	// TopicPrefixTelemetry is the base for sensor telemetry from rovers.
	TopicPrefixTelemetry = "rover/telemetry"

	// TopicPrefixSystem is the base for backend status topics.
	TopicPrefixSystem = "rover/system"
)

// Topics provides builders for fleet MQTT topics. Using these helpers
// keeps topic naming consistent across the codebase.
type Topics struct{}

// TelemetryObstacle returns the topic rovers publish obstacle
// detections to.
//
// Example: rover/telemetry/obstacle
func (Topics) TelemetryObstacle() string {
	return fmt.Sprintf("%s/obstacle", TopicPrefixTelemetry)
}

// TelemetryObstacleFor returns the per-device obstacle topic.
//
// Example: rover/telemetry/obstacle/3
func (Topics) TelemetryObstacleFor(deviceID int64) string {
	return fmt.Sprintf("%s/obstacle/%d", TopicPrefixTelemetry, deviceID)
}

// AllObstacleTelemetry returns a pattern matching obstacle telemetry
// from every rover, with or without a device suffix.
//
// Pattern: rover/telemetry/obstacle/#
func (Topics) AllObstacleTelemetry() string {
	return fmt.Sprintf("%s/obstacle/#", TopicPrefixTelemetry)
}

// SystemStatus returns the backend status topic. The backend publishes
// retained online/offline payloads here, including via LWT on crash.
//
// Example: rover/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllTopics returns a pattern matching all fleet topics.
// Use with caution, this receives all traffic.
//
// Pattern: rover/#
func (Topics) AllTopics() string {
	return "rover/#"
}
