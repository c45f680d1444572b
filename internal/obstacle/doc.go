// Package obstacle manages obstacle detection data: the classification
// catalog, the sensor report history, and operator-placed manual
// obstacle markers.
//
// Like movement commands, every write is re-read by its assigned ID and
// the committed record is what gets announced on the device topic.
// Deletions announce the record as it existed before removal.
package obstacle
