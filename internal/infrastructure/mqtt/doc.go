// Package mqtt wraps paho.mqtt.golang for the optional rover telemetry
// ingest.
//
// Rovers with an onboard broker connection publish obstacle detections
// to rover/telemetry/obstacle (optionally suffixed with a device ID)
// instead of calling the HTTP API. The backend subscribes to that
// hierarchy and feeds detections through the same report pipeline as
// HTTP submissions, so persistence and event fan-out behave
// identically.
//
// The backend also maintains a retained online/offline payload on
// rover/system/status, with a Last Will for crash detection.
package mqtt
