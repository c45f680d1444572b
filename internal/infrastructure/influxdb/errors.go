package influxdb

import "errors"

var (
	// ErrDisabled is returned when connecting while the sink is disabled.
	ErrDisabled = errors.New("influxdb is disabled in configuration")

	// ErrConnectionFailed is returned when the initial connection fails.
	ErrConnectionFailed = errors.New("influxdb connection failed")

	// ErrNotConnected is returned when an operation requires an active connection.
	ErrNotConnected = errors.New("influxdb client not connected")
)
