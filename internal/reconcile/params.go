package reconcile

import (
	"math"
	"time"
)

// Valid ranges for the operating parameters.
const (
	MinPeriod          = 1 * time.Second
	MaxPeriod          = 60 * time.Second
	MinRestartInterval = 1 * time.Minute
	MaxRestartInterval = 1440 * time.Minute
)

// Parameters are the operating parameters in force for a cycle.
type Parameters struct {
	// Period is the metrics cycle cadence, within [1s, 60s].
	Period time.Duration

	// RestartInterval is how often statistics reset, within [1m, 1440m].
	RestartInterval time.Duration
}

// NewParameters builds clamped parameters from raw seconds and minutes.
func NewParameters(periodSeconds, restartMinutes float64) Parameters {
	return Parameters{
		Period:          ClampPeriod(periodSeconds),
		RestartInterval: ClampRestartInterval(restartMinutes),
	}
}

// ClampPeriod rounds seconds to a whole second and clamps it into [1, 60].
func ClampPeriod(seconds float64) time.Duration {
	return time.Duration(clamp(seconds, 1, 60)) * time.Second
}

// ClampRestartInterval rounds minutes to a whole minute and clamps it into [1, 1440].
func ClampRestartInterval(minutes float64) time.Duration {
	return time.Duration(clamp(minutes, 1, 1440)) * time.Minute
}

func clamp(v, lo, hi float64) int64 {
	v = math.Round(v)
	switch {
	case math.IsNaN(v), v < lo:
		return int64(lo)
	case v > hi:
		return int64(hi)
	default:
		return int64(v)
	}
}
