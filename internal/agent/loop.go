package agent

import (
	"context"
	"fmt"
	"math"

	"github.com/nerrad567/gray-logic-edge/internal/cycle"
	"github.com/nerrad567/gray-logic-edge/internal/gateway"
	"github.com/nerrad567/gray-logic-edge/internal/telemetry"
)

// loop runs cycles at the reconciled period until ctx is cancelled.
func (a *Agent) loop(ctx context.Context) {
	for {
		report := a.runCycle(ctx)
		if ctx.Err() != nil {
			return
		}
		a.publish(ctx, report)

		if err := a.sleep(ctx, report.Period); err != nil {
			return
		}
	}
}

// runCycle executes one cycle. Panics are recovered and counted; the
// returned report always carries the period to wait before the next cycle.
func (a *Agent) runCycle(ctx context.Context) (report cycle.Report) {
	start := a.now()
	report.At = start
	report.Period = a.reconciler.Parameters().Period

	defer func() {
		if r := recover(); r != nil {
			a.stats.FailCount++
			a.monitor.ChangeState(false)
			telemetry.CycleFailures.WithLabelValues("panic").Inc()
			a.log.Error("metrics cycle panicked", "panic", r)
			report.Outcome = cycle.OutcomePanic
			report.Error = fmt.Sprint(r)
		}
		a.fillReport(&report)
		telemetry.CyclesTotal.WithLabelValues(string(report.Outcome)).Inc()
		telemetry.CycleDuration.Observe(a.now().Sub(start).Seconds())
	}()

	params := a.reconciler.Reconcile(ctx)
	report.Period = params.Period
	report.Outcome = cycle.OutcomeOK

	resetDue := a.stats.resetDue(start, params.RestartInterval)

	cpu, memory, temp, err := a.sample(ctx)
	if resetDue {
		a.log.Info("resetting run statistics", "restart_interval", params.RestartInterval)
		a.stats.resetCounters(start)
	}
	if err != nil {
		a.stats.FailCount++
		a.monitor.ChangeState(false)
		telemetry.CycleFailures.WithLabelValues("sample").Inc()
		a.log.Warn("metrics sample failed, reusing previous values", "error", err)
		report.Outcome = cycle.OutcomeSampleFailed
		report.Error = err.Error()
	} else {
		a.stats.Temperature = temp
		a.stats.observe(cpu, memory)
	}

	batch := a.stats.writeBatch(a.names, a.now())
	report.RunCounter = a.stats.RunCounter
	if err := a.deps.Gateway.Write(ctx, batch); err != nil {
		a.monitor.ChangeState(false)
		telemetry.CycleFailures.WithLabelValues("write").Inc()
		a.log.Warn("writing metrics failed", "error", err)
		report.Outcome = cycle.OutcomeWriteFailed
		report.Error = err.Error()
		return report
	}

	a.stats.RunCounter++
	if report.Outcome == cycle.OutcomeOK {
		a.monitor.ChangeState(true)
	}
	a.log.Trace("metrics written",
		"run_counter", report.RunCounter,
		"cpu", a.stats.CPU.Current,
		"memory", a.stats.Memory.Current,
		"temperature", a.stats.Temperature,
	)
	return report
}

// sample reads the three source topics in one advanced read.
func (a *Agent) sample(ctx context.Context) (cpu, memory, temp float64, err error) {
	values, err := a.deps.Gateway.ReadAdvanced(ctx, a.cfg.Sources.topics())
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %w", ErrSample, err)
	}

	latest := make(map[string]float64, len(values))
	for _, v := range values {
		s, ok := v.Latest()
		if !ok {
			continue
		}
		if f, ok := s.Float(); ok {
			latest[v.Topic] = f
		}
	}

	get := func(topic string) (float64, error) {
		f, ok := latest[topic]
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: no finite value for %q", ErrSample, topic)
		}
		return f, nil
	}
	if cpu, err = get(a.cfg.Sources.CPU); err != nil {
		return 0, 0, 0, err
	}
	if memory, err = get(a.cfg.Sources.Memory); err != nil {
		return 0, 0, 0, err
	}
	if temp, err = get(a.cfg.Sources.Temperature); err != nil {
		return 0, 0, 0, err
	}
	return cpu, memory, temp, nil
}

// fillReport copies the statistics that every report carries. RunCounter
// is the value sent in this cycle's write.
func (a *Agent) fillReport(r *cycle.Report) {
	if r.RunCounter == 0 {
		r.RunCounter = a.stats.RunCounter
	}
	r.FailCount = a.stats.FailCount
	r.CPU = a.stats.CPU
	r.Memory = a.stats.Memory
	r.Temperature = a.stats.Temperature
}

// publish hands the report to every sink. Sink failures are logged only.
func (a *Agent) publish(ctx context.Context, r cycle.Report) {
	for _, sink := range a.deps.Sinks {
		if err := sink.Record(ctx, r); err != nil {
			a.log.Warn("recording cycle report failed",
				"sink", fmt.Sprintf("%T", sink),
				"error", err,
			)
		}
	}
}

var _ Gateway = (*gateway.Client)(nil)
