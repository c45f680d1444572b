// Package vehicle manages the rover fleet: the device registry, the
// movement operations catalog, and the command history.
//
// Commands follow a strict write-then-announce flow. A command is
// validated against the catalog, committed to the history, re-read by
// its assigned event ID, and only then announced on the owning
// device's topic. Subscribers therefore always receive the committed
// record, never the request payload.
package vehicle
