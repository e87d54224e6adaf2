package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Gray Logic Edge Agent.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	App       AppConfig       `yaml:"app"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Retry     RetryConfig     `yaml:"retry"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains the remote REST server connection settings.
type ServerConfig struct {
	// BaseURL is the scheme and authority of the remote server (e.g. "http://10.0.0.5:8080").
	BaseURL string `yaml:"base_url"`

	// PathPrefix is prepended to every remote path (e.g. "/api/v1").
	PathPrefix string `yaml:"path_prefix"`

	// Username and Password enable HTTP basic auth when Username is non-empty.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// RequestTimeout bounds a single request (seconds).
	RequestTimeout int `yaml:"request_timeout"`
}

// AppConfig identifies this process to the remote server.
type AppConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// HeartbeatConfig contains liveness reporting periods (seconds).
type HeartbeatConfig struct {
	// DefaultPeriod is used from monitor start until the initial read succeeds.
	DefaultPeriod int `yaml:"default_period"`

	// SteadyPeriod is used once the agent is running.
	SteadyPeriod int `yaml:"steady_period"`
}

// RetryConfig contains startup wait settings.
type RetryConfig struct {
	// Period is the delay between attempts (seconds).
	Period int `yaml:"period"`

	// MaxRetries caps the server availability wait.
	MaxRetries int `yaml:"max_retries"`

	// ProvisionMaxRetries caps the provisioning wait. 0 means wait indefinitely.
	ProvisionMaxRetries int `yaml:"provision_max_retries"`

	// CoreDelay is the one-shot settle delay after registration (seconds).
	CoreDelay int `yaml:"core_delay"`
}

// WebhookConfig contains push-delivery settings.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`

	// PathSuffix prefixes every local route, e.g. "/webhook/" gives "/webhook/test".
	PathSuffix string `yaml:"path_suffix"`

	// CallbackURL is the address the remote server delivers to.
	// It must reach this listener, including PathSuffix.
	CallbackURL string `yaml:"callback_url"`
}

// MetricsConfig contains the metrics loop settings.
type MetricsConfig struct {
	// Source topics read via read-advanced each cycle. These are
	// fully-qualified names owned by the remote server.
	CPUTotalTopic       string `yaml:"cpu_total_topic"`
	MemoryTotalTopic    string `yaml:"memory_total_topic"`
	CPUTemperatureTopic string `yaml:"cpu_temperature_topic"`

	// DefaultPeriod is the initial running period (seconds).
	DefaultPeriod int `yaml:"default_period"`

	// DefaultRestartInterval is the initial statistics reset interval (minutes).
	DefaultRestartInterval int `yaml:"default_restart_interval"`
}

// DatabaseConfig contains SQLite cycle journal settings.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// Retention is the number of journal rows kept. 0 keeps everything.
	Retention int `yaml:"retention"`
}

// MQTTConfig contains MQTT mirror settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// TelemetryConfig contains the Prometheus endpoint settings.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: EDGEAGENT_SECTION_KEY
// For example: EDGEAGENT_SERVER_URL, EDGEAGENT_WEBHOOK_ENABLED
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        "http://127.0.0.1:8080",
			PathPrefix:     "/api/v1",
			RequestTimeout: 10,
		},
		App: AppConfig{
			Name:        "edgeagent",
			Description: "Gray Logic edge metrics agent",
		},
		Heartbeat: HeartbeatConfig{
			DefaultPeriod: 10,
			SteadyPeriod:  30,
		},
		Retry: RetryConfig{
			Period:     5,
			MaxRetries: 24,
			CoreDelay:  5,
		},
		Webhook: WebhookConfig{
			Enabled:    false,
			Host:       "0.0.0.0",
			Port:       8090,
			PathSuffix: "/webhook/",
		},
		Metrics: MetricsConfig{
			CPUTotalTopic:          "system/cpu/total",
			MemoryTotalTopic:       "system/memory/total",
			CPUTemperatureTopic:    "system/cpu/temperature",
			DefaultPeriod:          5,
			DefaultRestartInterval: 60,
		},
		Database: DatabaseConfig{
			Enabled:     true,
			Path:        "./data/edgeagent.db",
			WALMode:     true,
			BusyTimeout: 5,
			Retention:   10000,
		},
		MQTT: MQTTConfig{
			TopicPrefix: "edgeagent",
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "edgeagent",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Telemetry: TelemetryConfig{
			Listen: ":9102",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: EDGEAGENT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("EDGEAGENT_SERVER_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("EDGEAGENT_SERVER_PREFIX"); v != "" {
		cfg.Server.PathPrefix = v
	}
	if v := os.Getenv("EDGEAGENT_SERVER_USERNAME"); v != "" {
		cfg.Server.Username = v
	}
	if v := os.Getenv("EDGEAGENT_SERVER_PASSWORD"); v != "" {
		cfg.Server.Password = v
	}

	// App
	if v := os.Getenv("EDGEAGENT_APP_NAME"); v != "" {
		cfg.App.Name = v
	}

	// Webhook
	if v := os.Getenv("EDGEAGENT_WEBHOOK_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Webhook.Enabled = enabled
		}
	}
	if v := os.Getenv("EDGEAGENT_WEBHOOK_CALLBACK_URL"); v != "" {
		cfg.Webhook.CallbackURL = v
	}

	// MQTT
	if v := os.Getenv("EDGEAGENT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("EDGEAGENT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("EDGEAGENT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "server.base_url must be an absolute URL")
	}
	if c.Server.RequestTimeout < 1 {
		errs = append(errs, "server.request_timeout must be at least 1 second")
	}

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	} else if strings.ContainsAny(c.App.Name, "/?# ") {
		errs = append(errs, "app.name must not contain '/', '?', '#' or spaces")
	}

	if c.Heartbeat.DefaultPeriod < 1 || c.Heartbeat.SteadyPeriod < 1 {
		errs = append(errs, "heartbeat periods must be at least 1 second")
	}

	if c.Retry.Period < 1 {
		errs = append(errs, "retry.period must be at least 1 second")
	}
	if c.Retry.MaxRetries < 1 {
		errs = append(errs, "retry.max_retries must be at least 1")
	}
	if c.Retry.ProvisionMaxRetries < 0 {
		errs = append(errs, "retry.provision_max_retries must not be negative")
	}
	if c.Retry.CoreDelay < 0 {
		errs = append(errs, "retry.core_delay must not be negative")
	}

	if c.Webhook.Enabled {
		if c.Webhook.Port < 1 || c.Webhook.Port > 65535 {
			errs = append(errs, "webhook.port must be between 1 and 65535")
		}
		if c.Webhook.CallbackURL == "" {
			errs = append(errs, "webhook.callback_url is required when webhook is enabled")
		}
		if !strings.HasPrefix(c.Webhook.PathSuffix, "/") || !strings.HasSuffix(c.Webhook.PathSuffix, "/") {
			errs = append(errs, "webhook.path_suffix must start and end with '/'")
		}
	}

	if c.Metrics.CPUTotalTopic == "" || c.Metrics.MemoryTotalTopic == "" || c.Metrics.CPUTemperatureTopic == "" {
		errs = append(errs, "metrics source topics are required")
	}

	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the journal is enabled")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.Telemetry.Enabled && c.Telemetry.Listen == "" {
		errs = append(errs, "telemetry.listen is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ServerURL returns the base URL joined with the path prefix, without a trailing slash.
func (c *Config) ServerURL() string {
	return strings.TrimRight(c.Server.BaseURL, "/") + "/" + strings.Trim(c.Server.PathPrefix, "/")
}

// GetRequestTimeout returns the remote request timeout as a Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// GetRetryPeriod returns the startup retry period as a Duration.
func (c *Config) GetRetryPeriod() time.Duration {
	return time.Duration(c.Retry.Period) * time.Second
}

// GetCoreDelay returns the post-registration settle delay as a Duration.
func (c *Config) GetCoreDelay() time.Duration {
	return time.Duration(c.Retry.CoreDelay) * time.Second
}

// GetHeartbeatPeriods returns the default and steady-state heartbeat periods.
func (c *Config) GetHeartbeatPeriods() (initial, steady time.Duration) {
	return time.Duration(c.Heartbeat.DefaultPeriod) * time.Second,
		time.Duration(c.Heartbeat.SteadyPeriod) * time.Second
}

// WebhookAddr returns the host:port the webhook listener binds to.
func (c *Config) WebhookAddr() string {
	return fmt.Sprintf("%s:%d", c.Webhook.Host, c.Webhook.Port)
}
