package mqtt

import "fmt"

// DefaultTopicPrefix is used when the configured prefix is empty.
const DefaultTopicPrefix = "edgeagent"

// Topics builds the topics for one application identity.
type Topics struct {
	Prefix string
	App    string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// Metrics returns the cycle report topic.
//
// Example: edgeagent/press-7/metrics
func (t Topics) Metrics() string {
	return fmt.Sprintf("%s/%s/metrics", t.prefix(), t.App)
}

// Status returns the liveness topic, also used for the LWT.
//
// Example: edgeagent/press-7/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/%s/status", t.prefix(), t.App)
}
