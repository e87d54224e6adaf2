package datapoint

import "fmt"

// Metric identifies a value the agent writes every cycle.
type Metric int

// Metrics in batch-write order.
const (
	RunCounter Metric = iota
	LastRun
	CPUUsage
	CPUUsageMin
	CPUUsageMax
	MemoryUsage
	MemoryUsageMin
	MemoryUsageMax
	CPUTemperature
	FailCount

	metricCount
)

var metricTopics = [metricCount]string{
	RunCounter:     "runcounter",
	LastRun:        "lastrun",
	CPUUsage:       "cpuusage",
	CPUUsageMin:    "cpuusagemin",
	CPUUsageMax:    "cpuusagemax",
	MemoryUsage:    "memoryusage",
	MemoryUsageMin: "memoryusagemin",
	MemoryUsageMax: "memoryusagemax",
	CPUTemperature: "cputemperature",
	FailCount:      "failcount",
}

// Topic returns the local topic name.
func (m Metric) Topic() string {
	if m < 0 || m >= metricCount {
		return fmt.Sprintf("metric(%d)", int(m))
	}
	return metricTopics[m]
}

// String implements fmt.Stringer.
func (m Metric) String() string { return m.Topic() }

// AllMetrics returns every Metric in batch-write order.
func AllMetrics() []Metric {
	out := make([]Metric, 0, metricCount)
	for m := Metric(0); m < metricCount; m++ {
		out = append(out, m)
	}
	return out
}

// ConfigParam identifies an operating parameter the agent reads.
type ConfigParam int

// Configuration parameters.
const (
	RunningPeriod ConfigParam = iota
	RestartInterval

	configCount
)

var configTopics = [configCount]string{
	RunningPeriod:   "configrunningperiod",
	RestartInterval: "configrestartinterval",
}

// Topic returns the local topic name.
func (c ConfigParam) Topic() string {
	if c < 0 || c >= configCount {
		return fmt.Sprintf("config(%d)", int(c))
	}
	return configTopics[c]
}

// String implements fmt.Stringer.
func (c ConfigParam) String() string { return c.Topic() }

// AllConfigParams returns every ConfigParam.
func AllConfigParams() []ConfigParam {
	return []ConfigParam{RunningPeriod, RestartInterval}
}

// FQNMap maps local topic names to the fully-qualified names assigned by the
// server at registration. It is built once and treated as read-only.
type FQNMap map[string]string

// Merge returns a new map holding the entries of m and other.
// Entries in other win on conflicting keys.
func (m FQNMap) Merge(other FQNMap) FQNMap {
	out := make(FQNMap, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Topics returns every fully-qualified name in the map.
func (m FQNMap) Topics() []string {
	out := make([]string, 0, len(m))
	for _, fqn := range m {
		out = append(out, fqn)
	}
	return out
}

// Names is the resolved FQN table for every Metric and ConfigParam.
// A Names value only exists if every identifier was registered.
type Names struct {
	metrics [metricCount]string
	config  [configCount]string
}

// Resolve checks that every Metric and ConfigParam has a fully-qualified
// name in m and returns the lookup table.
//
// Returns ErrNotRegistered naming the first missing topic.
func Resolve(m FQNMap) (*Names, error) {
	n := &Names{}

	for id := Metric(0); id < metricCount; id++ {
		fqn, ok := m[id.Topic()]
		if !ok || fqn == "" {
			return nil, fmt.Errorf("%w: %s", ErrNotRegistered, id.Topic())
		}
		n.metrics[id] = fqn
	}
	for id := ConfigParam(0); id < configCount; id++ {
		fqn, ok := m[id.Topic()]
		if !ok || fqn == "" {
			return nil, fmt.Errorf("%w: %s", ErrNotRegistered, id.Topic())
		}
		n.config[id] = fqn
	}
	return n, nil
}

// Metric returns the fully-qualified name of a metric.
func (n *Names) Metric(id Metric) string { return n.metrics[id] }

// Config returns the fully-qualified name of a configuration parameter.
func (n *Names) Config(id ConfigParam) string { return n.config[id] }

// ConfigTopics returns the fully-qualified names of both configuration parameters.
func (n *Names) ConfigTopics() []string {
	return []string{n.config[RunningPeriod], n.config[RestartInterval]}
}

// ConfigByFQN maps a fully-qualified name back to its ConfigParam.
func (n *Names) ConfigByFQN(fqn string) (ConfigParam, bool) {
	for id := ConfigParam(0); id < configCount; id++ {
		if n.config[id] == fqn {
			return id, true
		}
	}
	return 0, false
}

// MetricByFQN maps a fully-qualified name back to its Metric.
func (n *Names) MetricByFQN(fqn string) (Metric, bool) {
	for id := Metric(0); id < metricCount; id++ {
		if n.metrics[id] == fqn {
			return id, true
		}
	}
	return 0, false
}

// AllTopics returns the fully-qualified name of every registered identifier,
// configuration parameters first.
func (n *Names) AllTopics() []string {
	out := make([]string, 0, int(configCount)+int(metricCount))
	out = append(out, n.config[:]...)
	out = append(out, n.metrics[:]...)
	return out
}
