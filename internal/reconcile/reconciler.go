package reconcile

import (
	"context"
	"math"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/datapoint"
	"github.com/nerrad567/gray-logic-edge/internal/gateway"
	"github.com/nerrad567/gray-logic-edge/internal/telemetry"
	"github.com/nerrad567/gray-logic-edge/internal/webhook"
)

// Reader reads current values. Implemented by *gateway.Client.
type Reader interface {
	Read(ctx context.Context, topics []string) ([]gateway.Value, error)
}

// Drainer yields every pending pushed message. Implemented by *webhook.Queue.
type Drainer interface {
	Drain() []webhook.Message
}

// Logger is the logging interface used by the reconciler.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Reconciler derives the operating parameters once per cycle.
type Reconciler struct {
	names  *datapoint.Names
	reader Reader
	queue  Drainer
	cache  *Cache
	params Parameters
	logger Logger
}

// New creates a reconciler starting from initial parameters.
// A non-nil queue selects push mode; otherwise each Reconcile polls reader.
func New(names *datapoint.Names, reader Reader, queue Drainer, initial Parameters) *Reconciler {
	return &Reconciler{
		names:  names,
		reader: reader,
		queue:  queue,
		cache:  NewCache(),
		params: initial,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger.
func (r *Reconciler) SetLogger(logger Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// PushMode reports whether updates come from the webhook queue.
func (r *Reconciler) PushMode() bool {
	return r.queue != nil
}

// Parameters returns the parameters currently in force.
func (r *Reconciler) Parameters() Parameters {
	return r.params
}

// Cache exposes the underlying cache for inspection.
func (r *Reconciler) Cache() *Cache {
	return r.cache
}

// Seed applies values from the initial read. Non-configuration topics are
// ignored.
func (r *Reconciler) Seed(values []gateway.Value) Parameters {
	r.applyValues(values)
	return r.params
}

// Reconcile folds any new configuration values into the parameters and
// returns the result. It never fails: a failed poll or an empty queue
// leaves the previous parameters in place.
func (r *Reconciler) Reconcile(ctx context.Context) Parameters {
	if r.PushMode() {
		r.drain()
	} else {
		r.poll(ctx)
	}
	telemetry.OperatingPeriod.Set(r.params.Period.Seconds())
	return r.params
}

func (r *Reconciler) drain() {
	msgs := r.queue.Drain()
	if len(msgs) == 0 {
		return
	}
	telemetry.QueueDrained.Add(float64(len(msgs)))

	applied := 0
	for _, msg := range msgs {
		var (
			value float64
			ts    time.Time
			ok    bool
		)
		switch m := msg.(type) {
		case webhook.SimpleMessage:
			value, ok = gateway.Sample{Value: m.Value}.Float()
			ts = m.Timestamp
		case webhook.AdvancedMessage:
			var latest gateway.Sample
			history := gateway.AdvancedValue{Topic: m.Topic, Datapoints: m.Datapoints}
			if latest, ok = history.Latest(); ok {
				value, ok = latest.Float()
				ts = latest.Timestamp
			}
		}
		if r.store(msg.MessageTopic(), value, ts, ok) {
			applied++
		}
	}

	r.logger.Debug("webhook queue drained", "messages", len(msgs), "applied", applied)
	if applied > 0 {
		r.recompute()
	}
}

func (r *Reconciler) poll(ctx context.Context) {
	values, err := r.reader.Read(ctx, r.names.ConfigTopics())
	if err != nil {
		r.logger.Warn("configuration poll failed, keeping previous parameters", "error", err)
		return
	}
	r.applyValues(values)
}

func (r *Reconciler) applyValues(values []gateway.Value) {
	applied := 0
	for _, v := range values {
		if _, isConfig := r.names.ConfigByFQN(v.Topic); !isConfig {
			continue
		}
		f, ok := v.Float()
		if r.store(v.Topic, f, v.Timestamp, ok) {
			applied++
		}
	}
	if applied > 0 {
		r.recompute()
	}
}

// store routes one value into the cache. Unknown topics and values that are
// not finite numbers are logged and dropped.
func (r *Reconciler) store(topic string, value float64, ts time.Time, ok bool) bool {
	if _, isConfig := r.names.ConfigByFQN(topic); !isConfig {
		r.logger.Warn("discarding update for unknown topic", "topic", topic)
		return false
	}
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		r.logger.Warn("discarding non-numeric configuration value", "topic", topic)
		return false
	}
	r.cache.Set(topic, value, ts)
	return true
}

func (r *Reconciler) recompute() {
	next := r.params
	if e, ok := r.cache.Get(r.names.Config(datapoint.RunningPeriod)); ok {
		next.Period = ClampPeriod(e.Value)
	}
	if e, ok := r.cache.Get(r.names.Config(datapoint.RestartInterval)); ok {
		next.RestartInterval = ClampRestartInterval(e.Value)
	}
	if next != r.params {
		r.logger.Debug("operating parameters changed",
			"period", next.Period,
			"restart_interval", next.RestartInterval,
		)
	}
	r.params = next
}
