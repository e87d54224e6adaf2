package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gray-logic-edge/internal/cycle"
)

// Publisher is the subset of Client the mirror needs.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
}

// Mirror republishes cycle reports and the liveness flag.
// It implements cycle.Sink and heartbeat.StatusPublisher.
type Mirror struct {
	pub      Publisher
	topics   Topics
	clientID string
}

// NewMirror creates a mirror publishing through client.
func NewMirror(client *Client) *Mirror {
	return &Mirror{pub: client, topics: client.Topics(), clientID: client.cfg.Broker.ClientID}
}

type metricsPayload struct {
	cycle.Report
	PeriodSeconds int64 `json:"periodSeconds"`
}

// Record publishes the report to the metrics topic.
func (m *Mirror) Record(_ context.Context, r cycle.Report) error {
	payload, err := json.Marshal(metricsPayload{Report: r, PeriodSeconds: int64(r.Period.Seconds())})
	if err != nil {
		return fmt.Errorf("encoding cycle report: %w", err)
	}
	return m.pub.PublishRetained(m.topics.Metrics(), payload)
}

// PublishStatus publishes "up" or "down" to the status topic.
func (m *Mirror) PublishStatus(up bool) error {
	status := StatusDown
	if up {
		status = StatusUp
	}
	return m.pub.PublishRetained(m.topics.Status(), buildStatusPayload(status, m.clientID, ""))
}
