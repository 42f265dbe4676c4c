package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/lumen-core/internal/auth"
	"github.com/nerrad567/lumen-core/internal/daemon"
	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
	"github.com/nerrad567/lumen-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// ConnectionChecker reports the state of an optional upstream connection.
type ConnectionChecker interface {
	IsConnected() bool
}

// DBStatser exposes connection pool statistics.
type DBStatser interface {
	Stats() sql.DBStats
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Manager *daemon.Manager
	Auth    *auth.Authenticator

	// Hub is optional; when nil the server creates its own. Callers that
	// register the hub as a device event sink before Start pass it here.
	Hub *Hub

	// MQTT and DB are optional and only feed the metrics endpoint.
	MQTT ConnectionChecker
	DB   DBStatser

	Version string
}

// Server is the HTTP API server of lumend.
//
// It manages the HTTP listener, routes, middleware, WebSocket hub and the
// DNS-SD advertisement. The server is created with New() and started with
// Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	manager   *daemon.Manager
	auth      *auth.Authenticator
	mqtt      ConnectionChecker
	db        DBStatser
	version   string
	started   time.Time
	tickets   *ticketStore
	server    *http.Server
	listener  net.Listener
	hub       *Hub
	advertise *advertiser
	cancel    context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Manager == nil {
		return nil, fmt.Errorf("device manager is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("authenticator is required")
	}

	hub := deps.Hub
	if hub == nil {
		hub = NewHub(deps.WS, deps.Logger)
	}

	return &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		logger:  deps.Logger,
		manager: deps.Manager,
		auth:    deps.Auth,
		mqtt:    deps.MQTT,
		db:      deps.DB,
		version: deps.Version,
		started: time.Now(),
		tickets: newTicketStore(),
		hub:     hub,
	}, nil
}

// Hub returns the WebSocket hub, for registration as a device event sink.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub and ticket cleanup, binds the listener,
// serves in a background goroutine and, when enabled, advertises the
// API over DNS-SD. The server can be stopped with Close().
//
// Returns:
//   - error: If the listener cannot be bound
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)
	go s.tickets.cleanLoop(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("binding API listener: %w", err)
	}
	s.listener = ln

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", ln.Addr().String(),
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ServeTLS(ln, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", ln.Addr().String())
			err = s.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	if s.cfg.MDNS.Enabled {
		port := ln.Addr().(*net.TCPAddr).Port
		adv, err := startAdvertiser(s.cfg.MDNS, port, s.version)
		if err != nil {
			// The API still serves; only discovery is lost.
			s.logger.Warn("mDNS advertisement failed", "error", err)
		} else {
			s.advertise = adv
			s.logger.Info("mDNS advertisement started", "service", adv.service, "port", port)
		}
	}

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.advertise != nil {
		s.advertise.shutdown()
		s.advertise = nil
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

// HealthCheck verifies the API server is running and responsive.
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
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
