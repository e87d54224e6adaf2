package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownTimeout bounds graceful shutdown of the metrics listener.
const shutdownTimeout = 5 * time.Second

// Logger is the logging interface used by the server.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Server serves /metrics, /healthz and the /live cycle feed.
type Server struct {
	addr     string
	logger   Logger
	hub      *Hub
	server   *http.Server
	listener net.Listener
}

// NewServer creates a telemetry server for addr (e.g. ":9102").
func NewServer(addr string, logger Logger) *Server {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Server{addr: addr, logger: logger, hub: NewHub(logger)}
}

// Live returns the hub behind /live. Register it as a cycle sink.
func (s *Server) Live() *Hub {
	return s.hub
}

// Handler returns the router serving the telemetry endpoints.
// The /live route is mounted only when live is non-nil.
func Handler(live *Hub) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if live != nil {
		r.Method(http.MethodGet, "/live", live)
	}
	return r
}

// Start binds the listener and serves in the background.
// Bind errors are returned synchronously.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("binding telemetry listener %s: %w", s.addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           Handler(s.hub),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("telemetry server listening", "address", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("telemetry server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Close shuts the server down gracefully.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	// Shutdown does not track hijacked connections.
	s.hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down telemetry server: %w", err)
	}
	return nil
}
