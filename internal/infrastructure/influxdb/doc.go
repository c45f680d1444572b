// Package influxdb wraps the InfluxDB v2 client for the optional
// telemetry metrics sink.
//
// When enabled, obstacle distance samples and command counters are
// mirrored into InfluxDB alongside the SQLite history, giving the
// fleet dashboard time-series queries without loading the primary
// database. Writes are batched and non-blocking; a failed sink never
// affects request handling.
package influxdb
