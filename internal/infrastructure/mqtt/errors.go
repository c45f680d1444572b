package mqtt

import "errors"

var (
	// ErrConnectionFailed is returned when the initial broker connection fails.
	ErrConnectionFailed = errors.New("mqtt connection failed")

	// ErrNotConnected is returned when an operation requires an active connection.
	ErrNotConnected = errors.New("mqtt client not connected")

	// ErrPublishFailed is returned when a publish does not complete.
	ErrPublishFailed = errors.New("mqtt publish failed")

	// ErrSubscribeFailed is returned when a subscription does not complete.
	ErrSubscribeFailed = errors.New("mqtt subscribe failed")

	// ErrUnsubscribeFailed is returned when an unsubscribe does not complete.
	ErrUnsubscribeFailed = errors.New("mqtt unsubscribe failed")

	// ErrInvalidTopic is returned for empty topic strings.
	ErrInvalidTopic = errors.New("mqtt topic cannot be empty")

	// ErrInvalidQoS is returned for QoS levels outside 0-2.
	ErrInvalidQoS = errors.New("mqtt qos must be 0, 1, or 2")
)
