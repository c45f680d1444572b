package obstacle

import "errors"

var (
	// ErrReportNotFound is returned when a report event ID does not exist.
	ErrReportNotFound = errors.New("obstacle report not found")

	// ErrManualNotFound is returned when a manual obstacle ID does not exist.
	ErrManualNotFound = errors.New("manual obstacle not found")

	// ErrUnknownCode is returned when a report references a
	// classification code absent from the catalog.
	ErrUnknownCode = errors.New("unknown obstacle code")

	// ErrInvalidLocation is returned when a sensor position is outside
	// the accepted set.
	ErrInvalidLocation = errors.New("invalid sensor location")

	// ErrInvalidDistance is returned when a reported distance is negative.
	ErrInvalidDistance = errors.New("distance cannot be negative")

	// ErrInvalidName is returned when a manual obstacle name is empty.
	ErrInvalidName = errors.New("obstacle name cannot be empty")

	// ErrDeviceNotFound is returned when the referenced device does not exist.
	ErrDeviceNotFound = errors.New("device not found")
)
