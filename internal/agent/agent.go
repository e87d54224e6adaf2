package agent

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/cycle"
	"github.com/nerrad567/gray-logic-edge/internal/datapoint"
	"github.com/nerrad567/gray-logic-edge/internal/gateway"
	"github.com/nerrad567/gray-logic-edge/internal/heartbeat"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-edge/internal/reconcile"
	"github.com/nerrad567/gray-logic-edge/internal/telemetry"
	"github.com/nerrad567/gray-logic-edge/internal/webhook"
)

// webhookStopTimeout bounds the listener shutdown during teardown.
const webhookStopTimeout = 5 * time.Second

// Gateway is the subset of the remote server API the agent drives.
// Implemented by *gateway.Client.
type Gateway interface {
	ServerStatus(ctx context.Context) error
	DefineApp(ctx context.Context, description string) error
	RegisterDataPoints(ctx context.Context, category string, defs []datapoint.Definition) (datapoint.FQNMap, error)
	RegisterApp(ctx context.Context) error
	CheckProvisionStatus(ctx context.Context) (gateway.ProvisionStatus, error)
	Read(ctx context.Context, topics []string) ([]gateway.Value, error)
	ReadAdvanced(ctx context.Context, topics []string) ([]gateway.AdvancedValue, error)
	Write(ctx context.Context, values []gateway.WriteValue) error
	SendHeartbeat(ctx context.Context, up bool) error
}

// WebhookService is the push channel. Implemented by *webhook.Service.
type WebhookService interface {
	Setup(ctx context.Context, topics []string) error
	Stop(ctx context.Context) error
	Queue() *webhook.Queue
}

// Sources names the external topics sampled every cycle.
type Sources struct {
	CPU         string
	Memory      string
	Temperature string
}

func (s Sources) topics() []string {
	return []string{s.CPU, s.Memory, s.Temperature}
}

// Config holds the agent timings and defaults.
type Config struct {
	// AppDescription is sent when defining the application.
	AppDescription string

	// RetryPeriod separates server liveness and provisioning attempts.
	RetryPeriod time.Duration

	// MaxRetries caps the server liveness attempts.
	MaxRetries int

	// ProvisionMaxRetries caps provisioning checks. Zero waits indefinitely.
	ProvisionMaxRetries int

	// CoreDelay is waited once after channel setup.
	CoreDelay time.Duration

	// HeartbeatPeriod is used until the initial read succeeds.
	HeartbeatPeriod time.Duration

	// SteadyHeartbeatPeriod is used once the agent is running.
	SteadyHeartbeatPeriod time.Duration

	// Defaults are registered as the config point defaults and apply until
	// the server says otherwise.
	Defaults reconcile.Parameters

	Sources Sources
}

// Deps are the collaborators injected into the agent.
type Deps struct {
	Gateway Gateway

	// Webhook selects push mode when non-nil.
	Webhook WebhookService

	// StatusPublisher optionally mirrors the heartbeat flag.
	StatusPublisher heartbeat.StatusPublisher

	// Sinks receive a report after every cycle.
	Sinks []cycle.Sink

	Logger *logging.Logger
}

// Agent runs the bootstrap sequence and the metrics loop.
type Agent struct {
	cfg  Config
	deps Deps
	log  *logging.Logger

	state atomic.Int32

	names      *datapoint.Names
	monitor    *heartbeat.Monitor
	reconciler *reconcile.Reconciler
	stats      Statistics

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an agent.
func New(cfg Config, deps Deps) *Agent {
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	a := &Agent{
		cfg:   cfg,
		deps:  deps,
		log:   log,
		now:   time.Now,
		sleep: sleepContext,
	}
	a.setState(StateAwaitingServer)
	return a
}

// State returns the current bootstrap state.
func (a *Agent) State() State {
	return State(a.state.Load())
}

// Statistics returns a copy of the run statistics.
// Only meaningful once Run has returned.
func (a *Agent) Statistics() Statistics {
	return a.stats
}

func (a *Agent) setState(s State) {
	a.state.Store(int32(s))
	telemetry.BootstrapState.Set(float64(s))
	a.log.Debug("agent state changed", "state", s.String())
}

// Run bootstraps the agent and runs the metrics loop until ctx is cancelled.
// It returns nil after cancellation, ErrNothingToDo when registration accepted
// no points, and a wrapped setup error otherwise. Background services are
// always stopped before Run returns.
func (a *Agent) Run(ctx context.Context) (err error) {
	defer a.teardown()
	defer func() {
		if err != nil && !errors.Is(err, ErrNothingToDo) {
			a.setState(StateAborted)
		}
	}()

	if err := a.bootstrap(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	a.setState(StateRunning)
	a.log.Info("agent running",
		"period", a.reconciler.Parameters().Period,
		"restart_interval", a.reconciler.Parameters().RestartInterval,
		"push_mode", a.reconciler.PushMode(),
	)
	a.loop(ctx)
	return nil
}

func (a *Agent) teardown() {
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.deps.Webhook != nil {
		ctx, cancel := context.WithTimeout(context.Background(), webhookStopTimeout)
		defer cancel()
		if err := a.deps.Webhook.Stop(ctx); err != nil {
			a.log.Warn("webhook shutdown failed", "error", err)
		}
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
