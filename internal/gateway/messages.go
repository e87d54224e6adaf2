package gateway

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/datapoint"
)

// Sample is one timestamped value as exchanged with the server.
type Sample struct {
	Value     any               `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Quality   datapoint.Quality `json:"quality"`
}

// Float converts the sample value to float64.
// Numbers, numeric strings and booleans convert; anything else reports false.
func (s Sample) Float() (float64, bool) {
	return toFloat(s.Value)
}

// Value is the read result for one topic.
type Value struct {
	Topic string `json:"topic"`
	Sample
}

// AdvancedValue is the read-advanced result for one topic. The server may
// return several samples per topic, oldest first.
type AdvancedValue struct {
	Topic      string   `json:"topic"`
	Datapoints []Sample `json:"datapoints"`
}

// Latest returns the newest sample.
func (v AdvancedValue) Latest() (Sample, bool) {
	if len(v.Datapoints) == 0 {
		return Sample{}, false
	}
	latest := v.Datapoints[0]
	for _, s := range v.Datapoints[1:] {
		if !s.Timestamp.Before(latest.Timestamp) {
			latest = s
		}
	}
	return latest, true
}

// WriteValue is one entry of a batch write.
type WriteValue struct {
	Topic string `json:"topic"`
	Sample
}

// ProvisionStatus is the server's view of this application's provisioning.
type ProvisionStatus struct {
	Provisioned bool   `json:"provisioned"`
	State       string `json:"state,omitempty"`
}

// AppDefinition is the body of the define-app request.
type AppDefinition struct {
	Name        string `json:"appName"`
	Description string `json:"description,omitempty"`
}

type topicsRequest struct {
	Topics []string `json:"topics"`
}

type registerRequest struct {
	Datapoints []datapoint.Definition `json:"datapoints"`
}

type writeRequest struct {
	Datapoints []WriteValue `json:"datapoints"`
}

type heartbeatRequest struct {
	IsUp bool `json:"isUp"`
}

type subscriptionRequest struct {
	CallbackURL string   `json:"callbackUrl"`
	Topics      []string `json:"topics"`
}

// registrationEnvelope wraps registration results. Content is itself a
// JSON document and needs a second decode.
type registrationEnvelope struct {
	Status  string `json:"status"`
	Content string `json:"content"`
}

// registrationEntry is the per-point result, positionally matching the request.
type registrationEntry struct {
	FQN    string   `json:"fqn"`
	Errors []string `json:"errors,omitempty"`
}

// failureBody is the error document the server sends with non-2xx statuses.
type failureBody struct {
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
