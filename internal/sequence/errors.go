package sequence

import "errors"

var (
	// ErrNotFound is returned when a sequence ID does not exist.
	ErrNotFound = errors.New("sequence not found")

	// ErrExecutionNotFound is returned when an execution ID does not exist.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrInvalidName is returned when a sequence name is empty.
	ErrInvalidName = errors.New("sequence name cannot be empty")

	// ErrNoMoves is returned when a sequence has no operations.
	ErrNoMoves = errors.New("sequence must contain at least one operation")

	// ErrUnknownOperation is returned when a sequence references an
	// operation code absent from the catalog.
	ErrUnknownOperation = errors.New("unknown operation code")

	// ErrInvalidStatus is returned when an execution state is outside
	// the accepted set.
	ErrInvalidStatus = errors.New("invalid execution status")

	// ErrDeviceNotFound is returned when the referenced device does not exist.
	ErrDeviceNotFound = errors.New("device not found")
)
