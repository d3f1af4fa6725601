package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cleverty/endpoint-provisioner/engine"
	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/cleverty/endpoint-provisioner/metrics"
	"github.com/cleverty/endpoint-provisioner/storage"
)

// Granter runs capability grants. *executor.Granter implements it.
type Granter interface {
	GrantAll(ctx context.Context, perms []interfaces.CapabilityPermission) interfaces.GrantBatchResult
	AllowBackgroundCapture(ctx context.Context) interfaces.GrantResult
}

// Config parameterizes one deployment.
type Config struct {
	Static      StaticConfig
	Permissions []interfaces.CapabilityPermission
}

// Deps are the ports the orchestrator drives. Reports and Metrics are optional.
type Deps struct {
	Granter     Granter
	Store       interfaces.ConfigStore
	Engine      interfaces.RemoteConfig
	Launcher    interfaces.ServiceLauncher
	Input       interfaces.InputControl
	ServiceWait interfaces.Waiter
	BindingWait interfaces.Waiter
	Reports     interfaces.ReportSink
	Metrics     *metrics.Recorder
}

func (d Deps) validate() error {
	var missing []string
	if d.Granter == nil {
		missing = append(missing, "Granter")
	}
	if d.Store == nil {
		missing = append(missing, "Store")
	}
	if d.Engine == nil {
		missing = append(missing, "Engine")
	}
	if d.Launcher == nil {
		missing = append(missing, "Launcher")
	}
	if d.Input == nil {
		missing = append(missing, "Input")
	}
	if d.ServiceWait == nil {
		missing = append(missing, "ServiceWait")
	}
	if d.BindingWait == nil {
		missing = append(missing, "BindingWait")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing dependencies: %s", strings.Join(missing, ", "))
	}
	return nil
}

type Orchestrator struct {
	cfg  Config
	deps Deps
	init *Initializer
	log  *slog.Logger

	// inputMu serializes input-control registration.
	inputMu sync.Mutex
}

func New(cfg Config, deps Deps, log *slog.Logger) (*Orchestrator, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if len(cfg.Permissions) == 0 {
		cfg.Permissions = interfaces.DefaultPermissions
	}
	return &Orchestrator{
		cfg:  cfg,
		deps: deps,
		init: NewInitializer(cfg.Static, deps.Engine, deps.Metrics, log),
		log:  log,
	}, nil
}

func (o *Orchestrator) Initializer() *Initializer {
	return o.init
}

// GrantCapabilities runs the configured permission batch and the extra
// elevated operations.
func (o *Orchestrator) GrantCapabilities(ctx context.Context) interfaces.GrantBatchResult {
	batch := o.deps.Granter.GrantAll(ctx, o.cfg.Permissions)
	o.deps.Metrics.ObserveGrants(batch)

	for _, r := range batch.All() {
		if !r.Succeeded {
			o.log.Warn("Capability grant failed",
				slog.String("permission", string(r.Permission)),
				slog.Int("exitCode", r.ExitCode),
				"err", r.Err)
		}
	}
	return batch
}

func (o *Orchestrator) EnableStartOnBoot(ctx context.Context) error {
	if err := storage.SetBootFlag(ctx, o.deps.Store, true); err != nil {
		o.log.Error("Failed to persist boot flag", slog.String("store", o.deps.Store.Name()), "err", err)
		return err
	}
	o.log.Info("Start on boot enabled")
	return nil
}

// StartService allows background capture and launches the service. Both are
// attempted. It does not wait for the service to come up.
func (o *Orchestrator) StartService(ctx context.Context) error {
	var errs []error

	if r := o.deps.Granter.AllowBackgroundCapture(ctx); !r.Succeeded {
		o.log.Warn("Failed to allow background capture", "err", r.Err)
		errs = append(errs, fmt.Errorf("allow background capture: %w", r.Err))
	}
	if err := o.deps.Launcher.Start(ctx); err != nil {
		o.log.Error("Failed to start service", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// EnableInputControl registers input control from a clean state and waits
// for the binding. Concurrent calls are serialized.
func (o *Orchestrator) EnableInputControl(ctx context.Context) error {
	if err := o.registerInput(ctx); err != nil {
		return err
	}
	return o.waitBound(ctx)
}

func (o *Orchestrator) registerInput(ctx context.Context) error {
	o.inputMu.Lock()
	defer o.inputMu.Unlock()

	if err := o.deps.Input.Register(ctx); err != nil {
		o.log.Error("Failed to register input control", "err", err)
		return err
	}
	return nil
}

func (o *Orchestrator) waitBound(ctx context.Context) error {
	err := o.deps.BindingWait.WaitFor(ctx, "input control bound", o.deps.Input.Bound)
	if err != nil {
		o.log.Warn("Input control not bound", "err", err)
	}
	return err
}

// GetIdentity is read-only.
func (o *Orchestrator) GetIdentity(ctx context.Context) interfaces.RemoteIdentity {
	id := engine.ReadIdentity(ctx, o.deps.Engine)
	o.log.Info("Remote identity", slog.String("identity", id.String()))
	return id
}

func (o *Orchestrator) SetCredential(ctx context.Context, value string) error {
	if value == "" {
		o.log.Error("Set credential called without a credential")
		return fmt.Errorf("%w: empty credential", interfaces.ErrInvalidInput)
	}
	if err := o.deps.Engine.SetCredential(ctx, value); err != nil {
		o.log.Error("Failed to set credential", "err", err)
		return err
	}
	o.log.Info("Permanent credential set")
	return nil
}

// SetDeviceName writes the synced device name and restarts the connection
// once so the backend sees it.
func (o *Orchestrator) SetDeviceName(ctx context.Context, name string) error {
	if name == "" {
		o.log.Error("Set device name called without a name")
		return fmt.Errorf("%w: empty device name", interfaces.ErrInvalidInput)
	}
	if err := o.deps.Engine.SetOption(ctx, interfaces.OptionPresetDeviceName, name); err != nil {
		o.log.Error("Failed to set device name", slog.String("name", name), "err", err)
		return err
	}
	if err := o.deps.Engine.RestartConnection(ctx); err != nil {
		o.log.Error("Failed to restart connection after renaming", "err", err)
		return err
	}
	o.log.Info("Device name set", slog.String("name", name))
	return nil
}

// Boot starts the service when the boot flag is set. The agent calls it once
// at startup.
func (o *Orchestrator) Boot(ctx context.Context) error {
	enabled, err := storage.BootFlag(ctx, o.deps.Store)
	if err != nil {
		o.log.Error("Failed to read boot flag", "err", err)
		return err
	}
	if !enabled {
		o.log.Info("Start on boot disabled")
		return nil
	}

	if err := o.init.Ensure(ctx); err != nil {
		o.log.Warn("Starting service without complete static configuration", "err", err)
	}
	return o.StartService(ctx)
}
