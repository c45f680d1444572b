// Rover Core - fleet backend for remote-controlled exploration rovers.
//
// This is the main entry point for the Rover Core service. It exposes
// the REST API, the WebSocket event stream, and the optional MQTT
// telemetry ingest over a single SQLite-backed core.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mverac/rover-core/migrations"

	"github.com/mverac/rover-core/internal/api"
	"github.com/mverac/rover-core/internal/infrastructure/config"
	"github.com/mverac/rover-core/internal/infrastructure/database"
	"github.com/mverac/rover-core/internal/infrastructure/influxdb"
	"github.com/mverac/rover-core/internal/infrastructure/logging"
	"github.com/mverac/rover-core/internal/infrastructure/mqtt"
	"github.com/mverac/rover-core/internal/obstacle"
	"github.com/mverac/rover-core/internal/sequence"
	"github.com/mverac/rover-core/internal/vehicle"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// defaultConfigPath is used when ROVERCORE_CONFIG is not set.
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Rover Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories and catalog caches
	vehicleRepo := vehicle.NewSQLiteRepository(db.DB)
	obstacleRepo := obstacle.NewSQLiteRepository(db.DB)
	sequenceRepo := sequence.NewSQLiteRepository(db.DB)

	operationCatalog := vehicle.NewCatalog(vehicleRepo)
	if err := operationCatalog.Refresh(ctx); err != nil {
		return fmt.Errorf("loading operations catalog: %w", err)
	}
	obstacleCatalog := obstacle.NewCatalog(obstacleRepo)
	if err := obstacleCatalog.Refresh(ctx); err != nil {
		return fmt.Errorf("loading obstacle catalog: %w", err)
	}

	// Connect to MQTT broker (optional telemetry ingest)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional metrics sink)
	var influxClient *influxdb.Client
	var metrics obstacle.DistanceRecorder
	var commandMetrics vehicle.CommandRecorder
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		metrics = influxClient
		commandMetrics = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// The hub is shared: the server owns the WebSocket side, the domain
	// services publish committed records through it.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	vehicleSvc := vehicle.NewService(vehicleRepo, operationCatalog, hub, commandMetrics, log)
	obstacleSvc := obstacle.NewService(obstacleRepo, obstacleCatalog, vehicleRepo, hub, metrics, log)
	sequenceSvc := sequence.NewService(sequenceRepo, operationCatalog, vehicleRepo, hub, log)

	server, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log,
		DB:          db,
		Vehicles:    vehicleSvc,
		Obstacles:   obstacleSvc,
		Sequences:   sequenceSvc,
		MQTT:        mqttClient,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses the ROVERCORE_CONFIG environment variable if set.
func getConfigPath() string {
	if path := os.Getenv("ROVERCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// Optional components may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
