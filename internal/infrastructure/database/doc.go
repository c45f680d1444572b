// Package database provides SQLite connection management for Rover Core.
//
// It wraps database/sql with WAL-mode configuration, embedded SQL
// migrations, health checks, and lifecycle management. SQLite is the
// single durable store: devices, operation and obstacle catalogs,
// command and obstacle history, sequences, and executions all live here.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "./data/rovercore.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
