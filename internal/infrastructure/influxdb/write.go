package influxdb

import (
	"context"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-edge/internal/cycle"
)

// Measurement is the name cycle points are written under.
const Measurement = "edge_agent_cycle"

// Record implements cycle.Sink. The write is queued, not awaited.
func (c *Client) Record(_ context.Context, r cycle.Report) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	c.writeAPI.WritePoint(cyclePoint(c.app, r))
	return nil
}

// cyclePoint converts a report into a line-protocol point.
func cyclePoint(app string, r cycle.Report) *write.Point {
	return write.NewPoint(
		Measurement,
		map[string]string{
			"app":     app,
			"outcome": string(r.Outcome),
		},
		map[string]any{
			"run_counter":    r.RunCounter,
			"fail_count":     int64(r.FailCount),
			"cpu":            r.CPU.Current,
			"cpu_min":        r.CPU.Min,
			"cpu_max":        r.CPU.Max,
			"memory":         r.Memory.Current,
			"memory_min":     r.Memory.Min,
			"memory_max":     r.Memory.Max,
			"temperature":    r.Temperature,
			"period_seconds": int64(r.Period.Seconds()),
		},
		r.At,
	)
}
