package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// Full setup step names, in execution order.
const (
	StepGrantCapabilities    = "grant_capabilities"
	StepPersistBootFlag      = "persist_boot_flag"
	StepLaunchService        = "launch_service"
	StepWaitService          = "wait_service"
	StepRegisterInputControl = "register_input_control"
	StepWaitInputBound       = "wait_input_bound"
	StepReadIdentity         = "read_identity"
)

type StepResult struct {
	Step     string        `json:"step"`
	OK       bool          `json:"ok"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

type SetupReport struct {
	TriggerID  string
	Steps      []StepResult
	Grants     interfaces.GrantBatchResult
	Identity   interfaces.RemoteIdentity
	StartedAt  time.Time
	FinishedAt time.Time
}

// Step returns the result of the named step.
func (r SetupReport) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Failed lists the steps that did not succeed.
func (r SetupReport) Failed() []string {
	var failed []string
	for _, s := range r.Steps {
		if !s.OK {
			failed = append(failed, s.Step)
		}
	}
	return failed
}

type grantJSON struct {
	Permission string `json:"permission"`
	Succeeded  bool   `json:"succeeded"`
	ExitCode   int    `json:"exit_code"`
	Error      string `json:"error,omitempty"`
}

func (r SetupReport) MarshalJSON() ([]byte, error) {
	all := r.Grants.All()
	grants := make([]grantJSON, 0, len(all))
	for _, g := range all {
		entry := grantJSON{Permission: string(g.Permission), Succeeded: g.Succeeded, ExitCode: g.ExitCode}
		if g.Err != nil {
			entry.Error = g.Err.Error()
		}
		grants = append(grants, entry)
	}

	return json.Marshal(struct {
		TriggerID  string       `json:"trigger_id"`
		Identity   string       `json:"identity"`
		Steps      []StepResult `json:"steps"`
		Grants     []grantJSON  `json:"grants"`
		StartedAt  time.Time    `json:"started_at"`
		FinishedAt time.Time    `json:"finished_at"`
	}{r.TriggerID, r.Identity.String(), r.Steps, grants, r.StartedAt, r.FinishedAt})
}

// FullSetup provisions the endpoint end to end. It always returns a report;
// Identity is the engine's identity, IdentityPending or IdentityError.
func (o *Orchestrator) FullSetup(ctx context.Context, triggerID string) SetupReport {
	report := SetupReport{TriggerID: triggerID, StartedAt: time.Now()}
	log := o.log.With(slog.String("triggerID", triggerID))

	run := func(step string, fn func() error) bool {
		start := time.Now()
		err := fn()
		res := StepResult{Step: step, OK: err == nil, Err: err, Duration: time.Since(start)}
		if err != nil {
			res.Error = err.Error()
			o.deps.Metrics.ObserveStepFailure(step)
			log.Warn("Setup step failed", slog.String("step", step), "err", err)
		} else {
			log.Debug("Setup step done", slog.String("step", step), slog.Duration("duration", res.Duration))
		}
		report.Steps = append(report.Steps, res)
		return res.OK
	}

	run(StepGrantCapabilities, func() error {
		report.Grants = o.GrantCapabilities(ctx)
		if failed := len(report.Grants.Failed()); failed > 0 {
			return fmt.Errorf("%w: %d of %d grants failed", interfaces.ErrCommandFailed, failed, len(report.Grants.All()))
		}
		return nil
	})

	run(StepPersistBootFlag, func() error {
		return o.EnableStartOnBoot(ctx)
	})

	run(StepLaunchService, func() error {
		return o.deps.Launcher.Start(ctx)
	})

	run(StepWaitService, func() error {
		return o.deps.ServiceWait.WaitFor(ctx, "service running", o.deps.Launcher.Running)
	})

	registered := run(StepRegisterInputControl, func() error {
		if running, err := o.deps.Launcher.Running(ctx); err != nil || !running {
			return fmt.Errorf("%w: registration skipped", interfaces.ErrServiceNotRunning)
		}
		return o.registerInput(ctx)
	})

	run(StepWaitInputBound, func() error {
		if !registered {
			return fmt.Errorf("%w: input control was not registered", interfaces.ErrNotReady)
		}
		return o.waitBound(ctx)
	})

	run(StepReadIdentity, func() error {
		report.Identity = o.GetIdentity(ctx)
		if report.Identity == interfaces.IdentityError {
			return fmt.Errorf("%w: identity read failed", interfaces.ErrEngineNotReady)
		}
		return nil
	})

	report.FinishedAt = time.Now()
	log.Info("Full setup complete",
		slog.String("identity", report.Identity.String()),
		slog.Int("grantsFailed", len(report.Grants.Failed())),
		slog.Any("failedSteps", report.Failed()),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))

	o.publish(ctx, report)
	return report
}

// publish stores the report in the configured sink. Failures are only logged.
func (o *Orchestrator) publish(ctx context.Context, report SetupReport) {
	if o.deps.Reports == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		o.log.Error("Failed to encode setup report", "err", err)
		return
	}

	id, err := o.deps.Reports.Store(ctx, data)
	if err != nil {
		o.log.Warn("Failed to publish setup report",
			slog.String("sink", o.deps.Reports.Name()),
			"err", err)
		return
	}
	o.log.Info("Published setup report",
		slog.String("sink", o.deps.Reports.Name()),
		slog.String("reportID", id.String()))
}
