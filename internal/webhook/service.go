package webhook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ShutdownTimeout bounds Stop when the caller's context has no deadline.
const ShutdownTimeout = 5 * time.Second

// Subscriber registers a callback for topics on the remote server.
// Implemented by *gateway.Client.
type Subscriber interface {
	Subscribe(ctx context.Context, callbackURL string, topics []string) error
}

// Logger is the logging interface used by the service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config holds the listener settings.
type Config struct {
	// Addr is the local listen address, e.g. "0.0.0.0:8090".
	Addr string

	// PathSuffix prefixes every route and must end with "/". Default: "/".
	PathSuffix string

	// CallbackURL is the address the remote server posts deliveries to.
	CallbackURL string
}

// Service owns the webhook subscription and the local listener.
type Service struct {
	addr        string
	suffix      string
	callbackURL string

	subscriber Subscriber
	queue      *Queue
	logger     Logger

	mu         sync.RWMutex
	subscribed map[string]struct{}
	server     *http.Server
	listener   net.Listener
}

// New creates a service that pushes deliveries onto queue.
func New(cfg Config, subscriber Subscriber, queue *Queue) *Service {
	suffix := cfg.PathSuffix
	if suffix == "" {
		suffix = "/"
	}
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	if !strings.HasSuffix(suffix, "/") {
		suffix += "/"
	}

	return &Service{
		addr:        cfg.Addr,
		suffix:      suffix,
		callbackURL: cfg.CallbackURL,
		subscriber:  subscriber,
		queue:       queue,
		logger:      noopLogger{},
		subscribed:  make(map[string]struct{}),
	}
}

// SetLogger sets the logger. Call before Setup.
func (s *Service) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Queue returns the queue deliveries are pushed onto.
func (s *Service) Queue() *Queue {
	return s.queue
}

// Setup subscribes topics in one request, then starts the listener.
//
// A failed subscription is logged and does not prevent the listener from
// starting; deliveries for those topics will simply never arrive. Only a
// listener bind failure is returned.
func (s *Service) Setup(ctx context.Context, topics []string) error {
	s.mu.Lock()
	for _, t := range topics {
		s.subscribed[t] = struct{}{}
	}
	s.mu.Unlock()

	if err := s.subscriber.Subscribe(ctx, s.callbackURL, topics); err != nil {
		s.logger.Warn("webhook subscription failed, no deliveries will arrive for these topics",
			"topics", topics,
			"callback_url", s.callbackURL,
			"error", err,
		)
	} else {
		s.logger.Info("webhook subscription registered", "topics", topics, "callback_url", s.callbackURL)
	}

	return s.listen()
}

func (s *Service) listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("binding webhook listener %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	s.mu.Lock()
	s.listener = ln
	s.server = srv
	s.mu.Unlock()

	s.logger.Info("webhook listener started", "address", ln.Addr().String(), "path_suffix", s.suffix)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("webhook listener error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listener address, or "" before Setup.
func (s *Service) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop stops accepting connections and waits for in-flight deliveries,
// bounded by ctx or ShutdownTimeout, whichever ends first.
// Safe to call before Setup and more than once.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	s.logger.Info("webhook listener shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down webhook listener: %w", err)
	}
	return nil
}

func (s *Service) isSubscribed(topic string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.subscribed[topic]
	return ok
}
