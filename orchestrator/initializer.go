package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/cleverty/endpoint-provisioner/metrics"
	"go.uber.org/atomic"
)

// Initializer applies a StaticConfig to the engine at most once.
type Initializer struct {
	cfg     StaticConfig
	engine  interfaces.RemoteConfig
	metrics *metrics.Recorder
	log     *slog.Logger

	mu   sync.Mutex
	done atomic.Bool
}

func NewInitializer(cfg StaticConfig, engine interfaces.RemoteConfig, rec *metrics.Recorder, log *slog.Logger) *Initializer {
	return &Initializer{cfg: cfg, engine: engine, metrics: rec, log: log}
}

func (i *Initializer) Initialized() bool {
	return i.done.Load()
}

// Ensure applies the static configuration unless that already happened.
// Once it has succeeded further calls make no engine calls.
func (i *Initializer) Ensure(ctx context.Context) error {
	if i.done.Load() {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.done.Load() {
		return nil
	}

	var errs []error
	for _, opt := range i.cfg.Options() {
		if err := i.engine.SetLocalOption(ctx, opt.Key, opt.Value); err != nil {
			errs = append(errs, fmt.Errorf("set %s: %w", opt.Key, err))
		}
	}
	if i.cfg.DefaultCredential != "" {
		if err := i.engine.SetCredential(ctx, i.cfg.DefaultCredential); err != nil {
			errs = append(errs, fmt.Errorf("set default credential: %w", err))
		}
	}
	if i.cfg.DefaultDeviceName != "" {
		if err := i.engine.SetOption(ctx, interfaces.OptionPresetDeviceName, i.cfg.DefaultDeviceName); err != nil {
			errs = append(errs, fmt.Errorf("set default device name: %w", err))
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		i.log.Error("Failed to apply static configuration", "err", err)
		return err
	}

	i.done.Store(true)
	i.metrics.SetInitialized(true)
	i.log.Info("Static configuration applied",
		slog.String("rendezvousServer", i.cfg.RendezvousServer),
		slog.String("approveMode", string(i.cfg.ApproveMode)))
	return nil
}
