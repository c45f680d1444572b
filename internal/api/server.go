package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mverac/rover-core/internal/infrastructure/config"
	"github.com/mverac/rover-core/internal/infrastructure/database"
	"github.com/mverac/rover-core/internal/infrastructure/logging"
	"github.com/mverac/rover-core/internal/infrastructure/mqtt"
	"github.com/mverac/rover-core/internal/obstacle"
	"github.com/mverac/rover-core/internal/sequence"
	"github.com/mverac/rover-core/internal/vehicle"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Logger    *logging.Logger
	DB        *database.DB
	Vehicles  *vehicle.Service
	Obstacles *obstacle.Service
	Sequences *sequence.Service
	MQTT      *mqtt.Client // optional: obstacle telemetry ingest
	// ExternalHub lets the caller share one hub between the server and
	// the domain services, which need it for event publication.
	ExternalHub *Hub
	Version     string
}

// Server is the HTTP API and WebSocket server for Rover Core.
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	db        *database.DB
	vehicles  *vehicle.Service
	obstacles *obstacle.Service
	sequences *sequence.Service
	mqtt      *mqtt.Client
	version   string

	server      *http.Server
	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc
}

// New creates a new API server with the given dependencies.
// The server is not started until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Vehicles == nil || deps.Obstacles == nil || deps.Sequences == nil {
		return nil, fmt.Errorf("domain services are required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		db:        deps.DB,
		vehicles:  deps.Vehicles,
		obstacles: deps.Obstacles,
		sequences: deps.Sequences,
		mqtt:      deps.MQTT,
		version:   deps.Version,
	}

	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub (unless an external one was injected),
// subscribes to obstacle telemetry when MQTT is configured, and
// launches the HTTP listener in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	if err := s.subscribeObstacleTelemetry(); err != nil {
		s.logger.Warn("failed to subscribe to obstacle telemetry", "error", err)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Hub returns the event hub, creating it lazily when Start has not run
// yet. Callers wire it into the domain services as their publisher.
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	return s.hub
}

// Close gracefully shuts down the API server, waiting up to ten
// seconds for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
