// Gray Logic Edge Agent
//
// Long-running edge process that registers its data points with a remote
// industrial server, keeps its running period and restart interval in sync
// by polling or webhook push, and republishes system metrics every cycle
// while reporting liveness through a heartbeat.
//
// Optional local sinks mirror each cycle to a SQLite journal, an MQTT
// broker and InfluxDB. Prometheus metrics and a live WebSocket cycle feed
// are served on telemetry.listen.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/gray-logic-edge/internal/agent"
	"github.com/nerrad567/gray-logic-edge/internal/cycle"
	"github.com/nerrad567/gray-logic-edge/internal/gateway"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-edge/internal/journal"
	"github.com/nerrad567/gray-logic-edge/internal/reconcile"
	"github.com/nerrad567/gray-logic-edge/internal/telemetry"
	"github.com/nerrad567/gray-logic-edge/internal/webhook"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
//
// Returns:
//   - error: nil on clean shutdown or when nothing was registered,
//     otherwise the setup failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Gray Logic Edge Agent",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, cfg.App.Name, version)
	log.Info("configuration loaded",
		"path", configPath,
		"server", cfg.ServerURL(),
		"webhook", cfg.Webhook.Enabled,
	)

	var live *telemetry.Hub
	if cfg.Telemetry.Enabled {
		srv := telemetry.NewServer(cfg.Telemetry.Listen, log)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("starting telemetry server: %w", err)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing telemetry server", "error", closeErr)
			}
		}()
		live = srv.Live()
	}

	sinks, closeSinks, err := openSinks(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()
	if live != nil {
		sinks.reports = append(sinks.reports, live)
	}

	gw := gateway.New(gateway.Config{
		BaseURL:  cfg.ServerURL(),
		AppName:  cfg.App.Name,
		Username: cfg.Server.Username,
		Password: cfg.Server.Password,
		Timeout:  cfg.GetRequestTimeout(),
	})
	gw.SetLogger(log)
	gw.SetObserver(telemetry.ObserveGatewayRequest)

	deps := agent.Deps{
		Gateway: gw,
		Sinks:   sinks.reports,
		Logger:  log,
	}
	if sinks.status != nil {
		deps.StatusPublisher = sinks.status
	}
	if cfg.Webhook.Enabled {
		svc := webhook.New(webhook.Config{
			Addr:        cfg.WebhookAddr(),
			PathSuffix:  cfg.Webhook.PathSuffix,
			CallbackURL: cfg.Webhook.CallbackURL,
		}, gw, webhook.NewQueue())
		svc.SetLogger(log)
		deps.Webhook = svc
	}

	a := agent.New(agentConfig(cfg), deps)
	err = a.Run(ctx)
	switch {
	case errors.Is(err, agent.ErrNothingToDo):
		log.Info("no data points registered, nothing to do")
		return nil
	case err != nil:
		log.Critical("agent aborted", "state", a.State().String(), "error", err)
		return err
	}

	log.Info("Gray Logic Edge Agent stopped")
	return nil
}

// agentConfig maps the loaded configuration onto the agent's settings.
func agentConfig(cfg *config.Config) agent.Config {
	initial, steady := cfg.GetHeartbeatPeriods()
	return agent.Config{
		AppDescription:        cfg.App.Description,
		RetryPeriod:           cfg.GetRetryPeriod(),
		MaxRetries:            cfg.Retry.MaxRetries,
		ProvisionMaxRetries:   cfg.Retry.ProvisionMaxRetries,
		CoreDelay:             cfg.GetCoreDelay(),
		HeartbeatPeriod:       initial,
		SteadyHeartbeatPeriod: steady,
		Defaults: reconcile.NewParameters(
			float64(cfg.Metrics.DefaultPeriod),
			float64(cfg.Metrics.DefaultRestartInterval),
		),
		Sources: agent.Sources{
			CPU:         cfg.Metrics.CPUTotalTopic,
			Memory:      cfg.Metrics.MemoryTotalTopic,
			Temperature: cfg.Metrics.CPUTemperatureTopic,
		},
	}
}

// sinkSet holds the enabled cycle sinks.
type sinkSet struct {
	reports []cycle.Sink
	status  *mqtt.Mirror
}

// openSinks connects the optional local sinks. The returned close function
// releases whatever was opened, in reverse order.
func openSinks(ctx context.Context, cfg *config.Config, log *logging.Logger) (sinkSet, func(), error) {
	var (
		set     sinkSet
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.Enabled {
		db, err := database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			closeAll()
			return sinkSet{}, nil, fmt.Errorf("opening database: %w", err)
		}
		closers = append(closers, func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		})

		store, err := journal.Open(ctx, db, cfg.Database.Retention)
		if err != nil {
			closeAll()
			return sinkSet{}, nil, fmt.Errorf("opening journal: %w", err)
		}
		set.reports = append(set.reports, store)
		log.Info("cycle journal enabled", "path", db.Path(), "retention", cfg.Database.Retention)
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT, cfg.App.Name)
		if err != nil {
			closeAll()
			return sinkSet{}, nil, fmt.Errorf("connecting to MQTT: %w", err)
		}
		client.SetLogger(log)
		closers = append(closers, func() {
			log.Info("disconnecting from MQTT")
			if closeErr := client.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		})

		mirror := mqtt.NewMirror(client)
		set.reports = append(set.reports, mirror)
		set.status = mirror
		log.Info("MQTT mirror enabled",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"topic", client.Topics().Metrics(),
		)
	}

	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(cfg.InfluxDB, cfg.App.Name)
		if err != nil {
			closeAll()
			return sinkSet{}, nil, fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		closers = append(closers, func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		})
		set.reports = append(set.reports, influxClient)
		log.Info("InfluxDB sink enabled",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	return set, closeAll, nil
}

// getConfigPath returns the configuration file path.
// Uses EDGEAGENT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("EDGEAGENT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
