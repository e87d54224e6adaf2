package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/cycle"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled:     true,
		TopicPrefix: "edgeagent",
		Broker:      config.MQTTBrokerConfig{Host: "broker.local", Port: 8883, TLS: true, ClientID: "edge-1"},
		Auth:        config.MQTTAuthConfig{Username: "edge", Password: "pw"},
		QoS:         1,
		Reconnect:   config.MQTTReconnectConfig{InitialDelay: 2, MaxDelay: 30},
	}
}

// fakePublisher records retained publishes.
type fakePublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) PublishRetained(topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return f.err
}

// =============================================================================
// Topics and options
// =============================================================================

func TestTopics(t *testing.T) {
	tests := []struct {
		topics      Topics
		wantMetrics string
		wantStatus  string
	}{
		{Topics{Prefix: "edgeagent", App: "press-7"}, "edgeagent/press-7/metrics", "edgeagent/press-7/status"},
		{Topics{App: "a"}, "edgeagent/a/metrics", "edgeagent/a/status"},
		{Topics{Prefix: "site/north", App: "a"}, "site/north/a/metrics", "site/north/a/status"},
	}
	for _, tt := range tests {
		if got := tt.topics.Metrics(); got != tt.wantMetrics {
			t.Errorf("Metrics() = %q, want %q", got, tt.wantMetrics)
		}
		if got := tt.topics.Status(); got != tt.wantStatus {
			t.Errorf("Status() = %q, want %q", got, tt.wantStatus)
		}
	}
}

func TestBuildClientOptions(t *testing.T) {
	opts := buildClientOptions(testConfig())

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://broker.local:8883" {
		t.Errorf("Servers = %v, want ssl://broker.local:8883", opts.Servers)
	}
	if opts.ClientID != "edge-1" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "edge" || opts.Password != "pw" {
		t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS config not applied")
	}
	if !opts.AutoReconnect || opts.MaxReconnectInterval != 30*time.Second {
		t.Errorf("reconnect = %v / %v", opts.AutoReconnect, opts.MaxReconnectInterval)
	}
}

func TestBuildClientOptions_PlainNoAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = false
	cfg.Broker.Port = 1883
	cfg.Auth = config.MQTTAuthConfig{}

	opts := buildClientOptions(cfg)
	if opts.Servers[0].String() != "tcp://broker.local:1883" {
		t.Errorf("Servers[0] = %v", opts.Servers[0])
	}
	if opts.Username != "" {
		t.Errorf("Username = %q, want empty", opts.Username)
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, Topics{Prefix: "edgeagent", App: "press-7"}, "edge-1")

	if !opts.WillEnabled || !opts.WillRetained {
		t.Error("LWT must be enabled and retained")
	}
	if opts.WillTopic != "edgeagent/press-7/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}

	var payload statusPayload
	if err := json.Unmarshal(opts.WillPayload, &payload); err != nil {
		t.Fatalf("WillPayload not JSON: %v", err)
	}
	if payload.Status != StatusOffline || payload.Reason != "unexpected_disconnect" {
		t.Errorf("WillPayload = %+v", payload)
	}
}

// =============================================================================
// Client without a broker
// =============================================================================

func TestPublish_Validation(t *testing.T) {
	c := newClient(testConfig(), "press-7")

	tests := []struct {
		name  string
		topic string
		qos   byte
		want  error
	}{
		{"empty topic", "", 1, ErrInvalidTopic},
		{"invalid qos", "t", 3, ErrInvalidQoS},
		{"not connected", "t", 1, ErrNotConnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Publish(tt.topic, []byte("x"), tt.qos, false); !errors.Is(err, tt.want) {
				t.Errorf("Publish() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPublish_PayloadTooLarge(t *testing.T) {
	c := newClient(testConfig(), "press-7")
	err := c.Publish("t", make([]byte, maxPayloadSize+1), 0, false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := newClient(testConfig(), "press-7")
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestClose_Nil(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}
}

// =============================================================================
// Mirror
// =============================================================================

func TestMirror_Record(t *testing.T) {
	pub := &fakePublisher{}
	m := &Mirror{pub: pub, topics: Topics{Prefix: "edgeagent", App: "press-7"}, clientID: "edge-1"}

	r := cycle.Report{
		Outcome:    cycle.OutcomeOK,
		RunCounter: 12,
		CPU:        cycle.Gauge{Current: 30, Min: 10, Max: 50},
		Period:     5 * time.Second,
	}
	if err := m.Record(context.Background(), r); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if pub.topics[0] != "edgeagent/press-7/metrics" {
		t.Errorf("topic = %q", pub.topics[0])
	}
	var got map[string]any
	if err := json.Unmarshal(pub.payloads[0], &got); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if got["runCounter"] != 12.0 || got["periodSeconds"] != 5.0 || got["outcome"] != "ok" {
		t.Errorf("payload = %s", pub.payloads[0])
	}
}

func TestMirror_PublishStatus(t *testing.T) {
	pub := &fakePublisher{}
	m := &Mirror{pub: pub, topics: Topics{App: "press-7"}, clientID: "edge-1"}

	if err := m.PublishStatus(true); err != nil {
		t.Fatalf("PublishStatus(true) error = %v", err)
	}
	if err := m.PublishStatus(false); err != nil {
		t.Fatalf("PublishStatus(false) error = %v", err)
	}

	for i, want := range []string{StatusUp, StatusDown} {
		var p statusPayload
		if err := json.Unmarshal(pub.payloads[i], &p); err != nil {
			t.Fatal(err)
		}
		if p.Status != want || p.ClientID != "edge-1" {
			t.Errorf("payload[%d] = %+v, want status %q", i, p, want)
		}
		if pub.topics[i] != "edgeagent/press-7/status" {
			t.Errorf("topic[%d] = %q", i, pub.topics[i])
		}
	}
}

func TestMirror_PropagatesError(t *testing.T) {
	pub := &fakePublisher{err: ErrNotConnected}
	m := &Mirror{pub: pub, topics: Topics{App: "a"}}
	if err := m.PublishStatus(true); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishStatus() error = %v, want ErrNotConnected", err)
	}
}
