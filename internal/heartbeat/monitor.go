package heartbeat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/telemetry"
)

// defaultPeriod is used when New is given a non-positive period.
const defaultPeriod = 10 * time.Second

// Sender delivers one heartbeat. Implemented by *gateway.Client.
type Sender interface {
	SendHeartbeat(ctx context.Context, up bool) error
}

// StatusPublisher mirrors the liveness flag to a secondary channel such as
// an MQTT status topic. Optional.
type StatusPublisher interface {
	PublishStatus(up bool) error
}

// Logger is the logging interface used by the monitor.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Monitor sends periodic heartbeats in the background.
//
// Thread Safety:
//   - ChangePeriod, ChangeState, IsUp and Period are lock-free and safe from any goroutine.
//   - Start must be called at most once; Stop any number of times.
type Monitor struct {
	sender    Sender
	publisher StatusPublisher

	up     atomic.Bool
	period atomic.Int64

	cancel   context.CancelFunc
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	mu       sync.Mutex // guards cancel

	logger Logger
}

// New creates a stopped monitor that reports down until ChangeState(true).
func New(sender Sender, period time.Duration) *Monitor {
	if period <= 0 {
		period = defaultPeriod
	}
	m := &Monitor{
		sender: sender,
		done:   make(chan struct{}),
		logger: noopLogger{},
	}
	m.period.Store(int64(period))
	return m
}

// SetLogger sets the logger. Call before Start.
func (m *Monitor) SetLogger(logger Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// SetPublisher installs the status mirror. Call before Start.
func (m *Monitor) SetPublisher(p StatusPublisher) {
	m.publisher = p
}

// Start launches the heartbeat goroutine. It exits when ctx is cancelled or
// Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go m.loop(loopCtx)
}

// Stop ends the heartbeat goroutine and waits for it. An in-flight send is
// cancelled rather than awaited. Safe to call before Start, after the
// goroutine already exited, and more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)

		m.mu.Lock()
		if m.cancel != nil {
			m.cancel()
		}
		m.mu.Unlock()

		m.wg.Wait()
	})
}

// ChangePeriod sets the interval used from the next beat on.
// Non-positive values are ignored.
func (m *Monitor) ChangePeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	m.period.Store(int64(d))
}

// ChangeState sets the reported liveness flag.
func (m *Monitor) ChangeState(up bool) {
	m.up.Store(up)
	telemetry.SetHeartbeatUp(up)
}

// IsUp returns the flag the next beat will report.
func (m *Monitor) IsUp() bool {
	return m.up.Load()
}

// Period returns the current interval.
func (m *Monitor) Period() time.Duration {
	return time.Duration(m.period.Load())
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()

	for {
		m.beat(ctx)

		timer := time.NewTimer(m.Period())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-m.done:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// beat sends one heartbeat. Failures are logged and counted, never fatal.
func (m *Monitor) beat(ctx context.Context) {
	up := m.up.Load()

	if err := m.sender.SendHeartbeat(ctx, up); err != nil {
		telemetry.HeartbeatSends.WithLabelValues("error").Inc()
		if ctx.Err() == nil {
			m.logger.Warn("heartbeat failed", "up", up, "error", err)
		}
	} else {
		telemetry.HeartbeatSends.WithLabelValues("ok").Inc()
		m.logger.Debug("heartbeat sent", "up", up)
	}

	if m.publisher != nil {
		if err := m.publisher.PublishStatus(up); err != nil {
			m.logger.Debug("status mirror publish failed", "error", err)
		}
	}
}
