package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

const (
	ValueOK     = "ok"
	ValueFailed = "failed"
)

// Result is the caller-facing outcome of one trigger.
type Result struct {
	TriggerID string
	Command   interfaces.Command
	// Value is the identity for FullSetup and GetIdentity, ValueOK or
	// ValueFailed otherwise.
	Value  string
	Err    error
	Report *SetupReport
	Grants *interfaces.GrantBatchResult
}

// OK reports whether the trigger fully succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Dispatch ensures static initialization and runs the trigger's operation.
func (o *Orchestrator) Dispatch(ctx context.Context, t interfaces.Trigger) Result {
	start := time.Now()
	log := o.log.With(slog.String("triggerID", t.ID), slog.String("command", t.Command.String()))
	log.Info("Dispatching trigger")

	if err := o.init.Ensure(ctx); err != nil {
		log.Warn("Static configuration incomplete, continuing", "err", err)
	}

	res := Result{TriggerID: t.ID, Command: t.Command}

	switch t.Command {
	case interfaces.CommandFullSetup:
		report := o.FullSetup(ctx, t.ID)
		res.Report = &report
		res.Grants = &report.Grants
		res.Value = report.Identity.String()
		if report.Identity == interfaces.IdentityError {
			res.Err = fmt.Errorf("%w: identity unavailable", interfaces.ErrEngineNotReady)
		}

	case interfaces.CommandEnableInputControl:
		res.setErr(o.EnableInputControl(ctx))

	case interfaces.CommandEnableStartOnBoot:
		res.setErr(o.EnableStartOnBoot(ctx))

	case interfaces.CommandStartService:
		res.setErr(o.StartService(ctx))

	case interfaces.CommandGetIdentity:
		id := o.GetIdentity(ctx)
		res.Value = id.String()
		if id == interfaces.IdentityError {
			res.Err = fmt.Errorf("%w: identity unavailable", interfaces.ErrEngineNotReady)
		}

	case interfaces.CommandGrantCapabilities:
		batch := o.GrantCapabilities(ctx)
		res.Grants = &batch
		if failed := len(batch.Failed()); failed > 0 {
			res.setErr(fmt.Errorf("%w: %d of %d grants failed", interfaces.ErrCommandFailed, failed, len(batch.All())))
		} else {
			res.setErr(nil)
		}

	case interfaces.CommandSetCredential:
		res.setErr(o.SetCredential(ctx, t.Param(interfaces.ParamCredential)))

	case interfaces.CommandSetDeviceName:
		res.setErr(o.SetDeviceName(ctx, t.Param(interfaces.ParamDeviceName)))

	default:
		res.Value = ValueFailed
		res.Err = fmt.Errorf("%w: %d", interfaces.ErrUnknownCommand, int(t.Command))
	}

	o.deps.Metrics.ObserveTrigger(t.Command, res.OK())
	log.Info("Trigger finished",
		slog.String("value", res.Value),
		slog.Duration("duration", time.Since(start)),
		"err", res.Err)
	return res
}

func (r *Result) setErr(err error) {
	r.Err = err
	if err != nil {
		r.Value = ValueFailed
	} else {
		r.Value = ValueOK
	}
}
