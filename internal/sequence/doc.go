// Package sequence manages named movement sequences and their
// executions. A sequence is an ordered list of catalog operations owned
// by a device; an execution tracks one run of a sequence through the
// pendiente/progreso/completado/cancelado/fallido lifecycle.
//
// Execution events never trust a caller-supplied device: the device is
// always resolved by joining the execution to its owning sequence.
package sequence
