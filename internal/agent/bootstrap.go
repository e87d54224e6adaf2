package agent

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-edge/internal/datapoint"
	"github.com/nerrad567/gray-logic-edge/internal/heartbeat"
	"github.com/nerrad567/gray-logic-edge/internal/reconcile"
	"github.com/nerrad567/gray-logic-edge/internal/webhook"
)

func (a *Agent) bootstrap(ctx context.Context) error {
	a.setState(StateAwaitingServer)
	if err := a.awaitServer(ctx); err != nil {
		return err
	}

	a.setState(StateRegistering)
	names, err := a.register(ctx)
	if err != nil {
		return err
	}
	a.names = names

	a.setState(StateAwaitingChannelSetup)
	var queue reconcile.Drainer
	if a.deps.Webhook != nil {
		if err := a.deps.Webhook.Setup(ctx, names.ConfigTopics()); err != nil {
			return fmt.Errorf("setting up webhook: %w", err)
		}
		queue = a.deps.Webhook.Queue()
	} else {
		a.log.Info("webhook disabled, polling configuration")
	}
	a.reconciler = reconcile.New(names, a.deps.Gateway, queue, a.cfg.Defaults)
	a.reconciler.SetLogger(a.log)

	a.setState(StateAwaitingCoreDelay)
	if err := a.sleep(ctx, a.cfg.CoreDelay); err != nil {
		return err
	}

	a.setState(StateHeartbeatStarted)
	a.monitor = heartbeat.New(a.deps.Gateway, a.cfg.HeartbeatPeriod)
	a.monitor.SetLogger(a.log)
	if a.deps.StatusPublisher != nil {
		a.monitor.SetPublisher(a.deps.StatusPublisher)
	}
	a.monitor.ChangeState(false)
	a.monitor.Start(ctx)

	a.setState(StateAwaitingProvisioning)
	if err := a.awaitProvisioning(ctx); err != nil {
		return err
	}

	a.setState(StateInitialRead)
	return a.initialRead(ctx)
}

// awaitServer polls server liveness up to MaxRetries times.
func (a *Agent) awaitServer(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= a.cfg.MaxRetries; attempt++ {
		lastErr = a.deps.Gateway.ServerStatus(ctx)
		if lastErr == nil {
			a.log.Info("server is up", "attempt", attempt)
			return nil
		}
		a.log.Warn("server not reachable",
			"attempt", attempt,
			"max_retries", a.cfg.MaxRetries,
			"error", lastErr,
		)
		if attempt == a.cfg.MaxRetries {
			break
		}
		if err := a.sleep(ctx, a.cfg.RetryPeriod); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrServerUnavailable, a.cfg.MaxRetries, lastErr)
}

// register defines the application, registers both point categories and
// resolves the returned names.
func (a *Agent) register(ctx context.Context) (*datapoint.Names, error) {
	gw := a.deps.Gateway

	if err := gw.DefineApp(ctx, a.cfg.AppDescription); err != nil {
		return nil, fmt.Errorf("defining app: %w", err)
	}

	configDefs, err := datapoint.ConfigDefinitions(
		int(a.cfg.Defaults.Period.Seconds()),
		int(a.cfg.Defaults.RestartInterval.Minutes()),
	)
	if err != nil {
		return nil, fmt.Errorf("building config definitions: %w", err)
	}
	configMap, err := gw.RegisterDataPoints(ctx, datapoint.CategoryConfig, configDefs)
	if err != nil {
		return nil, fmt.Errorf("registering config points: %w", err)
	}

	generalDefs, err := datapoint.GeneralDefinitions()
	if err != nil {
		return nil, fmt.Errorf("building general definitions: %w", err)
	}
	generalMap, err := gw.RegisterDataPoints(ctx, datapoint.CategoryGeneral, generalDefs)
	if err != nil {
		return nil, fmt.Errorf("registering general points: %w", err)
	}

	if err := gw.RegisterApp(ctx); err != nil {
		return nil, fmt.Errorf("registering app: %w", err)
	}

	if len(configMap) == 0 && len(generalMap) == 0 {
		return nil, ErrNothingToDo
	}

	a.log.Info("data points registered",
		"config", len(configMap),
		"general", len(generalMap),
	)

	names, err := datapoint.Resolve(configMap.Merge(generalMap))
	if err != nil {
		return nil, fmt.Errorf("resolving registered names: %w", err)
	}
	return names, nil
}

// awaitProvisioning polls until the server reports the app provisioned.
func (a *Agent) awaitProvisioning(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		status, err := a.deps.Gateway.CheckProvisionStatus(ctx)
		switch {
		case err != nil:
			a.log.Warn("provisioning check failed", "attempt", attempt, "error", err)
		case status.Provisioned:
			a.log.Info("app provisioned", "attempt", attempt)
			return nil
		default:
			a.log.Debug("app not provisioned yet", "attempt", attempt, "state", status.State)
		}

		if a.cfg.ProvisionMaxRetries > 0 && attempt >= a.cfg.ProvisionMaxRetries {
			return fmt.Errorf("%w after %d attempts", ErrProvisioningTimeout, attempt)
		}
		if err := a.sleep(ctx, a.cfg.RetryPeriod); err != nil {
			return err
		}
	}
}

// initialRead seeds statistics and parameters from the server's current values.
func (a *Agent) initialRead(ctx context.Context) error {
	values, err := a.deps.Gateway.Read(ctx, a.names.AllTopics())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInitialRead, err)
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: no values returned", ErrInitialRead)
	}

	a.stats.seed(a.names, values, a.now())
	params := a.reconciler.Seed(values)

	a.monitor.ChangeState(true)
	a.monitor.ChangePeriod(a.cfg.SteadyHeartbeatPeriod)

	a.log.Info("initial values read",
		"values", len(values),
		"run_counter", a.stats.RunCounter,
		"fail_count", a.stats.FailCount,
		"period", params.Period,
	)
	return nil
}

var _ reconcile.Drainer = (*webhook.Queue)(nil)
