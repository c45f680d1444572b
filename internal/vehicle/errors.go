package vehicle

import "errors"

var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDeviceExists is returned when creating a device whose name is taken.
	ErrDeviceExists = errors.New("device already exists")

	// ErrCommandNotFound is returned when a command ID does not exist.
	ErrCommandNotFound = errors.New("command not found")

	// ErrUnknownOperation is returned when a command references an
	// operation code absent from the catalog.
	ErrUnknownOperation = errors.New("unknown operation code")

	// ErrInvalidName is returned when a device name is empty.
	ErrInvalidName = errors.New("device name cannot be empty")
)
