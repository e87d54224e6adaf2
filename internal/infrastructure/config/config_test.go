package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  base_url: "http://10.0.0.5:8080"
  path_prefix: "/api/v2/"
app:
  name: "line-3-agent"
retry:
  period: 2
  max_retries: 10
webhook:
  enabled: true
  port: 9000
  path_suffix: "/hooks/"
  callback_url: "http://10.0.0.9:9000/hooks/"
database:
  path: "/tmp/test.db"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "line-3-agent" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "line-3-agent")
	}
	if got := cfg.ServerURL(); got != "http://10.0.0.5:8080/api/v2" {
		t.Errorf("ServerURL() = %q, want %q", got, "http://10.0.0.5:8080/api/v2")
	}
	if !cfg.Webhook.Enabled {
		t.Error("Webhook.Enabled = false, want true")
	}
	if cfg.Retry.MaxRetries != 10 {
		t.Errorf("Retry.MaxRetries = %d, want 10", cfg.Retry.MaxRetries)
	}
	// Untouched sections keep their defaults.
	if cfg.Heartbeat.SteadyPeriod != 30 {
		t.Errorf("Heartbeat.SteadyPeriod = %d, want 30", cfg.Heartbeat.SteadyPeriod)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
app:
  name: ""
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error for empty app.name, got nil")
	}
	if !strings.Contains(err.Error(), "app.name") {
		t.Errorf("Load() error = %v, want mention of app.name", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(_ *Config) {},
			wantErr: false,
		},
		{
			name:    "relative server url",
			mutate:  func(c *Config) { c.Server.BaseURL = "localhost:8080" },
			wantErr: true,
		},
		{
			name:    "app name with slash",
			mutate:  func(c *Config) { c.App.Name = "a/b" },
			wantErr: true,
		},
		{
			name:    "zero max retries",
			mutate:  func(c *Config) { c.Retry.MaxRetries = 0 },
			wantErr: true,
		},
		{
			name:    "negative provision cap",
			mutate:  func(c *Config) { c.Retry.ProvisionMaxRetries = -1 },
			wantErr: true,
		},
		{
			name: "webhook without callback",
			mutate: func(c *Config) {
				c.Webhook.Enabled = true
				c.Webhook.CallbackURL = ""
			},
			wantErr: true,
		},
		{
			name: "webhook suffix without trailing slash",
			mutate: func(c *Config) {
				c.Webhook.Enabled = true
				c.Webhook.CallbackURL = "http://h:1/x"
				c.Webhook.PathSuffix = "/x"
			},
			wantErr: true,
		},
		{
			name:    "missing source topic",
			mutate:  func(c *Config) { c.Metrics.CPUTemperatureTopic = "" },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name: "influxdb enabled without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := defaultConfig()
	cfg.Retry.Period = 3
	cfg.Retry.CoreDelay = 7
	cfg.Server.RequestTimeout = 12
	cfg.Heartbeat.DefaultPeriod = 4
	cfg.Heartbeat.SteadyPeriod = 40

	if got := cfg.GetRetryPeriod(); got != 3*time.Second {
		t.Errorf("GetRetryPeriod() = %v, want 3s", got)
	}
	if got := cfg.GetCoreDelay(); got != 7*time.Second {
		t.Errorf("GetCoreDelay() = %v, want 7s", got)
	}
	if got := cfg.GetRequestTimeout(); got != 12*time.Second {
		t.Errorf("GetRequestTimeout() = %v, want 12s", got)
	}
	initial, steady := cfg.GetHeartbeatPeriods()
	if initial != 4*time.Second || steady != 40*time.Second {
		t.Errorf("GetHeartbeatPeriods() = (%v, %v), want (4s, 40s)", initial, steady)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("EDGEAGENT_SERVER_URL", "https://iih.example.com")
	t.Setenv("EDGEAGENT_SERVER_USERNAME", "edge")
	t.Setenv("EDGEAGENT_SERVER_PASSWORD", "secret")
	t.Setenv("EDGEAGENT_APP_NAME", "press-7")
	t.Setenv("EDGEAGENT_WEBHOOK_ENABLED", "true")
	t.Setenv("EDGEAGENT_WEBHOOK_CALLBACK_URL", "http://edge:8090/webhook/")
	t.Setenv("EDGEAGENT_INFLUXDB_TOKEN", "influx-token")
	t.Setenv("EDGEAGENT_LOG_LEVEL", "trace")

	applyEnvOverrides(cfg)

	if cfg.Server.BaseURL != "https://iih.example.com" {
		t.Errorf("Server.BaseURL = %q, want %q", cfg.Server.BaseURL, "https://iih.example.com")
	}
	if cfg.Server.Username != "edge" || cfg.Server.Password != "secret" {
		t.Errorf("Server credentials = %q/%q, want edge/secret", cfg.Server.Username, cfg.Server.Password)
	}
	if cfg.App.Name != "press-7" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "press-7")
	}
	if !cfg.Webhook.Enabled {
		t.Error("Webhook.Enabled = false, want true")
	}
	if cfg.Webhook.CallbackURL != "http://edge:8090/webhook/" {
		t.Errorf("Webhook.CallbackURL = %q", cfg.Webhook.CallbackURL)
	}
	if cfg.InfluxDB.Token != "influx-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "influx-token")
	}
	if cfg.Logging.Level != "trace" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "trace")
	}
}

func TestApplyEnvOverrides_InvalidBoolIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("EDGEAGENT_WEBHOOK_ENABLED", "maybe")

	applyEnvOverrides(cfg)

	if cfg.Webhook.Enabled {
		t.Error("Webhook.Enabled = true, want default false for unparsable value")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Retry.MaxRetries != 24 {
		t.Errorf("defaultConfig Retry.MaxRetries = %d, want 24", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.ProvisionMaxRetries != 0 {
		t.Errorf("defaultConfig Retry.ProvisionMaxRetries = %d, want 0 (unbounded)", cfg.Retry.ProvisionMaxRetries)
	}
	if cfg.Webhook.Enabled {
		t.Error("defaultConfig should poll, not use webhooks")
	}
	if cfg.WebhookAddr() != "0.0.0.0:8090" {
		t.Errorf("WebhookAddr() = %q, want %q", cfg.WebhookAddr(), "0.0.0.0:8090")
	}
}
