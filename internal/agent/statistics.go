package agent

import (
	"math"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/cycle"
	"github.com/nerrad567/gray-logic-edge/internal/datapoint"
	"github.com/nerrad567/gray-logic-edge/internal/gateway"
)

// Statistics are the running values published every cycle.
// Owned by the metrics loop.
type Statistics struct {
	RunCounter  uint64
	FailCount   uint32
	CPU         cycle.Gauge
	Memory      cycle.Gauge
	Temperature float64
	LastResetAt time.Time
	// GaugesStale is set when a reset happened without a sample. The next
	// good sample collapses min/max onto itself.
	GaugesStale bool
}

// resetDue reports whether interval has elapsed since the last reset.
// A zero LastResetAt is always due.
func (s *Statistics) resetDue(now time.Time, interval time.Duration) bool {
	return s.LastResetAt.IsZero() || now.Sub(s.LastResetAt) >= interval
}

// resetCounters restarts the run window. Min/max collapse on the next
// good sample.
func (s *Statistics) resetCounters(now time.Time) {
	s.RunCounter = 1
	s.FailCount = 0
	s.LastResetAt = now
	s.GaugesStale = true
}

// observe folds a good sample into the gauges.
func (s *Statistics) observe(cpu, memory float64) {
	if s.GaugesStale {
		s.CPU.Reset(cpu)
		s.Memory.Reset(memory)
		s.GaugesStale = false
		return
	}
	s.CPU.Observe(cpu)
	s.Memory.Observe(memory)
}

// seed restores statistics from the values read at startup so counters
// continue across restarts. With no prior run on record the statistics stay
// zero and the first cycle resets them.
func (s *Statistics) seed(names *datapoint.Names, values []gateway.Value, now time.Time) {
	byTopic := make(map[string]float64, len(values))
	for _, v := range values {
		if f, ok := v.Float(); ok {
			byTopic[v.Topic] = f
		}
	}
	get := func(id datapoint.Metric) float64 { return byTopic[names.Metric(id)] }

	runs := get(datapoint.RunCounter)
	if math.IsNaN(runs) || runs < 1 {
		return
	}

	s.RunCounter = clampUint64(runs)
	if s.RunCounter < math.MaxUint64 {
		s.RunCounter++
	}
	s.FailCount = clampUint32(get(datapoint.FailCount))
	s.CPU = cycle.Gauge{Current: get(datapoint.CPUUsage), Min: get(datapoint.CPUUsageMin), Max: get(datapoint.CPUUsageMax)}
	s.Memory = cycle.Gauge{Current: get(datapoint.MemoryUsage), Min: get(datapoint.MemoryUsageMin), Max: get(datapoint.MemoryUsageMax)}
	s.Temperature = get(datapoint.CPUTemperature)
	s.LastResetAt = now
}

// clampUint64 converts a server-supplied float, saturating outside the
// uint64 range. NaN maps to zero.
func clampUint64(f float64) uint64 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(f)
}

func clampUint32(f float64) uint32 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(f)
}

// writeBatch assembles the ten published values, each stamped now.
func (s *Statistics) writeBatch(names *datapoint.Names, now time.Time) []gateway.WriteValue {
	sample := func(id datapoint.Metric, v any) gateway.WriteValue {
		return gateway.WriteValue{
			Topic:  names.Metric(id),
			Sample: gateway.Sample{Value: v, Timestamp: now, Quality: datapoint.QualityGood},
		}
	}
	return []gateway.WriteValue{
		sample(datapoint.RunCounter, s.RunCounter),
		sample(datapoint.LastRun, now.UTC().Format(time.RFC3339)),
		sample(datapoint.CPUUsage, s.CPU.Current),
		sample(datapoint.CPUUsageMin, s.CPU.Min),
		sample(datapoint.CPUUsageMax, s.CPU.Max),
		sample(datapoint.MemoryUsage, s.Memory.Current),
		sample(datapoint.MemoryUsageMin, s.Memory.Min),
		sample(datapoint.MemoryUsageMax, s.Memory.Max),
		sample(datapoint.CPUTemperature, s.Temperature),
		sample(datapoint.FailCount, s.FailCount),
	}
}
