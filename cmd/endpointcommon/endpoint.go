// Package endpointcommon assembles an endpoint from a deployment profile.
// It is shared by the agent daemon and the one-shot provision CLI.
package endpointcommon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cleverty/endpoint-provisioner/engine"
	"github.com/cleverty/endpoint-provisioner/executor"
	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/cleverty/endpoint-provisioner/metrics"
	"github.com/cleverty/endpoint-provisioner/netcheck"
	"github.com/cleverty/endpoint-provisioner/orchestrator"
	"github.com/cleverty/endpoint-provisioner/platform/android"
	"github.com/cleverty/endpoint-provisioner/platform/systemd"
	"github.com/cleverty/endpoint-provisioner/profile"
	"github.com/cleverty/endpoint-provisioner/readiness"
	"github.com/cleverty/endpoint-provisioner/reports"
	"github.com/cleverty/endpoint-provisioner/secrets"
	"github.com/cleverty/endpoint-provisioner/status"
	"github.com/cleverty/endpoint-provisioner/storage"
)

// Endpoint bundles the components built from one profile.
type Endpoint struct {
	Profile      *profile.Profile
	Orchestrator *orchestrator.Orchestrator
	Status       *status.Facade
	Checker      *netcheck.Checker

	closers []func() error
}

type platformPorts struct {
	launcher   interfaces.ServiceLauncher
	controller engine.Controller
	input      interfaces.InputControl
	capture    interfaces.CaptureProbe
	granter    orchestrator.Granter
	close      func() error
}

// Build wires an endpoint. rec may be nil.
func Build(ctx context.Context, p *profile.Profile, log *slog.Logger, rec *metrics.Recorder) (*Endpoint, error) {
	credential, err := secrets.NewResolver(log).Resolve(ctx, p.DefaultCredential)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default credential: %w", err)
	}

	exec := executor.NewRootExecutor(executor.RootConfig{
		Shell:        p.Executor.Shell,
		ShellArgs:    p.Executor.ShellArgs,
		CommandAsArg: p.Executor.CommandAsArg,
		Timeout:      p.Timeouts.Command,
	}, log)

	store, err := storage.NewConfigStoreFor(p.Store, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	ep := &Endpoint{Profile: p, closers: []func() error{store.Close}}

	var sink interfaces.ReportSink
	if len(p.Reports) > 0 {
		sink, err = reports.NewMultiSink(p.Reports, log)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to set up report sinks: %w", err), ep.Close())
		}
	}

	ports, err := buildPlatform(p, exec, log)
	if err != nil {
		return nil, errors.Join(err, ep.Close())
	}
	if ports.close != nil {
		ep.closers = append(ep.closers, ports.close)
	}

	controller := ports.controller
	if p.Engine.StartCommand != "" || p.Engine.RestartCommand != "" {
		controller = &engine.CommandController{
			Exec:           exec,
			StartCommand:   p.Engine.StartCommand,
			RestartCommand: p.Engine.RestartCommand,
		}
	}
	rc := engine.NewConfigDir(p.Engine.ConfigDir, p.Engine.AppName, controller, log)

	serviceWait, bindingWait := buildWaiters(p, log)

	orch, err := orchestrator.New(orchestrator.Config{
		Static:      p.Static(credential),
		Permissions: p.PermissionList(),
	}, orchestrator.Deps{
		Granter:     ports.granter,
		Store:       store,
		Engine:      rc,
		Launcher:    ports.launcher,
		Input:       ports.input,
		ServiceWait: serviceWait,
		BindingWait: bindingWait,
		Reports:     sink,
		Metrics:     rec,
	}, log)
	if err != nil {
		return nil, errors.Join(err, ep.Close())
	}

	ep.Orchestrator = orch
	ep.Status = &status.Facade{
		Launcher:     ports.launcher,
		Capture:      ports.capture,
		Input:        ports.input,
		Engine:       rc,
		ProbeTimeout: p.Timeouts.Probe,
		Log:          log,
	}
	ep.Checker = netcheck.NewChecker("", 0, log)

	return ep, nil
}

func buildPlatform(p *profile.Profile, exec interfaces.PrivilegedExecutor, log *slog.Logger) (*platformPorts, error) {
	switch p.Launcher {
	case profile.LauncherAndroid:
		launcher, err := android.NewLauncher(exec, p.Package, p.Service, p.StartAction, log)
		if err != nil {
			return nil, err
		}
		input, err := android.NewInputControl(exec, p.Package, p.InputService, p.Timeouts.InputSettle, log)
		if err != nil {
			return nil, err
		}
		granter, err := executor.NewGranter(exec, p.Package, log)
		if err != nil {
			return nil, err
		}
		return &platformPorts{
			launcher:   launcher,
			controller: launcher,
			input:      input,
			capture:    android.NewCaptureProbe(exec, p.Package, launcher, log),
			granter:    granter,
		}, nil

	case profile.LauncherSystemd:
		launcher, err := systemd.NewLauncher(p.SystemdUnit, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to systemd: %w", err)
		}
		return &platformPorts{
			launcher:   launcher,
			controller: launcher,
			input:      &systemd.InputControl{Launcher: launcher},
			capture:    &systemd.CaptureProbe{Launcher: launcher},
			granter:    systemd.Granter{},
			close:      launcher.Close,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown launcher %q", profile.ErrInvalidProfile, p.Launcher)
	}
}

func buildWaiters(p *profile.Profile, log *slog.Logger) (interfaces.Waiter, interfaces.Waiter) {
	if p.Readiness == profile.ReadinessFixed {
		return readiness.FixedDelay{Delay: p.Timeouts.ServiceDelay}, readiness.FixedDelay{Delay: p.Timeouts.BindingDelay}
	}
	return readiness.NewPoller(p.Timeouts.Service, log), readiness.NewPoller(p.Timeouts.Binding, log)
}

// CheckServers resolves the profile's server addresses.
func (e *Endpoint) CheckServers(ctx context.Context) []netcheck.Result {
	return e.Checker.Check(ctx, e.Profile.Servers.List())
}

func (e *Endpoint) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c())
	}
	e.closers = nil
	return errors.Join(errs...)
}
