package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nerrad567/gray-logic-edge/internal/datapoint"
)

// Operation names, used in errors and instrumentation.
const (
	OpServerStatus   = "server-status"
	OpDefineApp      = "define-app"
	OpRegisterPoints = "register-data-points"
	OpRegisterApp    = "register-app"
	OpHeartbeat      = "send-heartbeat"
	OpProvisionCheck = "check-provision-status"
	OpRead           = "read"
	OpReadAdvanced   = "read-advanced"
	OpWrite          = "write"
	OpSubscribe      = "subscribe"
)

// ServerStatus checks that the server is reachable and answering.
func (c *Client) ServerStatus(ctx context.Context) error {
	return c.do(ctx, OpServerStatus, http.MethodGet, "/status", nil, nil)
}

// DefineApp declares the application identity and its defaults.
func (c *Client) DefineApp(ctx context.Context, description string) error {
	body := AppDefinition{Name: c.appName, Description: description}
	return c.do(ctx, OpDefineApp, http.MethodPut, c.appPath("app-creator", c.appName, "defaults"), body, nil)
}

// RegisterDataPoints registers a batch of definitions under a category and
// returns the fully-qualified names the server assigned.
//
// Results match the request positionally. A point the server rejected has no
// FQN in the response and is left out of the returned map; that is not an
// error for the batch.
//
// Parameters:
//   - ctx: Context for cancellation
//   - category: Registration category (datapoint.CategoryConfig or CategoryGeneral)
//   - defs: Definitions to register
//
// Returns:
//   - datapoint.FQNMap: topic → FQN for every accepted point
//   - error: *Error if the request failed or the envelope could not be decoded
func (c *Client) RegisterDataPoints(ctx context.Context, category string, defs []datapoint.Definition) (datapoint.FQNMap, error) {
	if len(defs) == 0 {
		return datapoint.FQNMap{}, nil
	}

	var envelope registrationEnvelope
	path := c.appPath("app-creator", c.appName, "datapoint", category)
	if err := c.do(ctx, OpRegisterPoints, http.MethodPut, path, registerRequest{Datapoints: defs}, &envelope); err != nil {
		return nil, err
	}

	var entries []registrationEntry
	if err := json.Unmarshal([]byte(envelope.Content), &entries); err != nil {
		return nil, decodeError(OpRegisterPoints, http.StatusOK, fmt.Errorf("decoding content: %w", err))
	}

	fqns := make(datapoint.FQNMap, len(entries))
	for i, entry := range entries {
		if i >= len(defs) {
			break
		}
		topic := defs[i].Topic()
		if entry.FQN == "" {
			c.logger.Warn("data point rejected by server",
				"topic", topic,
				"category", category,
				"errors", entry.Errors,
			)
			continue
		}
		fqns[topic] = entry.FQN
	}

	return fqns, nil
}

// RegisterApp completes registration of the application as a whole.
func (c *Client) RegisterApp(ctx context.Context) error {
	return c.do(ctx, OpRegisterApp, http.MethodPost, c.appPath("app-registration", c.appName), struct{}{}, nil)
}

// SendHeartbeat reports liveness. up is false while the agent is degraded.
func (c *Client) SendHeartbeat(ctx context.Context, up bool) error {
	return c.do(ctx, OpHeartbeat, http.MethodPut, c.appPath("app-provision", c.appName), heartbeatRequest{IsUp: up}, nil)
}

// CheckProvisionStatus asks whether the server has provisioned this app.
func (c *Client) CheckProvisionStatus(ctx context.Context) (ProvisionStatus, error) {
	var status ProvisionStatus
	err := c.do(ctx, OpProvisionCheck, http.MethodGet, c.appPath("app-provision", c.appName), nil, &status)
	return status, err
}

// Read returns the latest value of each topic.
func (c *Client) Read(ctx context.Context, topics []string) ([]Value, error) {
	var values []Value
	if err := c.do(ctx, OpRead, http.MethodPost, "/message/read", topicsRequest{Topics: topics}, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// ReadAdvanced returns the sample history of each topic.
func (c *Client) ReadAdvanced(ctx context.Context, topics []string) ([]AdvancedValue, error) {
	var values []AdvancedValue
	if err := c.do(ctx, OpReadAdvanced, http.MethodPost, "/message/read-advanced", topicsRequest{Topics: topics}, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// Write publishes a batch of values.
func (c *Client) Write(ctx context.Context, values []WriteValue) error {
	return c.do(ctx, OpWrite, http.MethodPost, "/message/write", writeRequest{Datapoints: values}, nil)
}

// Subscribe asks the server to push updates for topics to callbackURL.
// All topics go in one request.
func (c *Client) Subscribe(ctx context.Context, callbackURL string, topics []string) error {
	body := subscriptionRequest{CallbackURL: callbackURL, Topics: topics}
	return c.do(ctx, OpSubscribe, http.MethodPost, c.appPath("message", "subscription", c.appName), body, nil)
}
