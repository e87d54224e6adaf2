// Package cycle defines the per-cycle report the metrics loop hands to its
// sinks (journal, MQTT mirror, InfluxDB).
package cycle

import (
	"context"
	"time"
)

// Outcome classifies how a metrics cycle ended.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeSampleFailed Outcome = "sample_failed"
	OutcomeWriteFailed  Outcome = "write_failed"
	OutcomePanic        Outcome = "panic"
)

// Gauge is a tracked value with its running extremes.
type Gauge struct {
	Current float64 `json:"current"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Reset sets min and max to v.
func (g *Gauge) Reset(v float64) {
	g.Current, g.Min, g.Max = v, v, v
}

// Observe records v and widens min/max.
func (g *Gauge) Observe(v float64) {
	g.Current = v
	if v < g.Min {
		g.Min = v
	}
	if v > g.Max {
		g.Max = v
	}
}

// Report is a snapshot of one completed cycle.
type Report struct {
	At          time.Time     `json:"at"`
	Outcome     Outcome       `json:"outcome"`
	RunCounter  uint64        `json:"runCounter"`
	FailCount   uint32        `json:"failCount"`
	CPU         Gauge         `json:"cpu"`
	Memory      Gauge         `json:"memory"`
	Temperature float64       `json:"temperature"`
	Period      time.Duration `json:"-"`
	Error       string        `json:"error,omitempty"`
}

// Sink receives every cycle report. Implementations must not block for long;
// the metrics loop calls them inline.
type Sink interface {
	Record(ctx context.Context, r Report) error
}
