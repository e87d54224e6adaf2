package telemetry

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nerrad567/gray-logic-edge/internal/gateway"
)

const namespace = "edgeagent"

var (
	// CyclesTotal counts metrics cycles by outcome ("ok", "failed").
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of metrics cycles",
		},
		[]string{"outcome"},
	)

	// CycleFailures counts failed cycle stages ("sample", "write", "panic").
	CycleFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_failures_total",
			Help:      "Total number of metrics cycle failures by stage",
		},
		[]string{"stage"},
	)

	// CycleDuration tracks the wall time of one cycle, excluding the sleep.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a metrics cycle in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// HeartbeatSends counts heartbeat requests by result ("ok", "error").
	HeartbeatSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heartbeat_sends_total",
			Help:      "Total number of heartbeat requests",
		},
		[]string{"result"},
	)

	// HeartbeatUp mirrors the reported liveness flag.
	HeartbeatUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heartbeat_up",
			Help:      "1 when the agent reports itself up",
		},
	)

	// WebhookMessages counts deliveries accepted by the webhook listener by kind.
	WebhookMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_messages_total",
			Help:      "Total number of webhook messages queued",
		},
		[]string{"kind"},
	)

	// QueueDrained counts messages consumed from the webhook queue.
	QueueDrained = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_queue_drained_total",
			Help:      "Total number of webhook messages drained by the reconciler",
		},
	)

	// OperatingPeriod is the running period currently in force.
	OperatingPeriod = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "operating_period_seconds",
			Help:      "Current metrics cycle period in seconds",
		},
	)

	// BootstrapState is the ordinal of the current bootstrap state.
	BootstrapState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bootstrap_state",
			Help:      "Current bootstrap state ordinal",
		},
	)

	// GatewayRequests counts remote requests by operation and outcome.
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Total number of remote server requests",
		},
		[]string{"op", "outcome"},
	)

	// GatewayLatency tracks remote request latency by operation.
	GatewayLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Remote server request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// ObserveGatewayRequest records one remote request. Its signature matches
// gateway.Observer.
func ObserveGatewayRequest(op string, status int, err error, elapsed time.Duration) {
	GatewayRequests.WithLabelValues(op, requestOutcome(status, err)).Inc()
	GatewayLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// requestOutcome buckets a result into a low-cardinality label.
func requestOutcome(status int, err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gateway.ErrTransport):
		return "transport"
	case errors.Is(err, gateway.ErrDecode):
		return "decode"
	case status != 0:
		return strconv.Itoa(status/100) + "xx"
	default:
		return "error"
	}
}

// SetHeartbeatUp updates the liveness gauge.
func SetHeartbeatUp(up bool) {
	if up {
		HeartbeatUp.Set(1)
		return
	}
	HeartbeatUp.Set(0)
}
