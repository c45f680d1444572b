// Package api implements the HTTP REST API and WebSocket server for
// Rover Core.
//
// This package provides:
//   - REST endpoints for movement commands, obstacle reports, manual
//     obstacles, sequences, executions and device administration
//   - A WebSocket hub with per-device topics for real-time event
//     distribution: clients subscribe to a rover and receive every
//     committed write for that rover as it happens
//   - Middleware stack (request ID, logging, recovery, CORS, body caps)
//   - Optional MQTT obstacle telemetry ingest feeding the same report
//     pipeline as HTTP
//
// Every response uses the {status, message, data} envelope, and every
// announced event carries the record as re-read from storage after the
// commit. The server follows the same lifecycle pattern as the
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// All methods are safe for concurrent use from multiple goroutines.
package api
