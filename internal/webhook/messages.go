package webhook

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/datapoint"
	"github.com/nerrad567/gray-logic-edge/internal/gateway"
)

// Message is a pushed delivery: SimpleMessage or AdvancedMessage.
type Message interface {
	// MessageTopic returns the fully-qualified topic the message is for.
	MessageTopic() string

	sealed()
}

// SimpleMessage carries one value for one topic.
type SimpleMessage struct {
	Topic     string            `json:"topic"`
	Value     any               `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Quality   datapoint.Quality `json:"quality"`
}

// MessageTopic implements Message.
func (m SimpleMessage) MessageTopic() string { return m.Topic }

func (SimpleMessage) sealed() {}

// AdvancedMessage carries a sample history for one topic.
type AdvancedMessage struct {
	Topic      string           `json:"topic"`
	Datapoints []gateway.Sample `json:"datapoints"`
}

// MessageTopic implements Message.
func (m AdvancedMessage) MessageTopic() string { return m.Topic }

func (AdvancedMessage) sealed() {}

// decodeOneOrMany decodes body as a single T or a JSON array of T.
func decodeOneOrMany[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var many []T
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return nil, err
		}
		return many, nil
	}

	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}
