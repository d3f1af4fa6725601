package systemd

import (
	"context"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// InputControl on Linux needs no registration. The engine injects input
// itself, so input is available whenever the unit is active.
type InputControl struct {
	Launcher interfaces.ServiceLauncher
}

var _ interfaces.InputControl = (*InputControl)(nil)

func (c *InputControl) Register(ctx context.Context) error { return nil }

func (c *InputControl) Clear(ctx context.Context) error { return nil }

func (c *InputControl) Bound(ctx context.Context) (bool, error) {
	return c.Launcher.Running(ctx)
}

// CaptureProbe reports capture ready while the unit is active; the engine
// grabs the display without a consent step.
type CaptureProbe struct {
	Launcher interfaces.ServiceLauncher
}

var _ interfaces.CaptureProbe = (*CaptureProbe)(nil)

func (p *CaptureProbe) CaptureReady(ctx context.Context) (bool, error) {
	return p.Launcher.Running(ctx)
}

// Granter stands in for runtime permission grants, which Linux hosts do not
// have. Every requested permission is reported as granted.
type Granter struct{}

func (Granter) GrantAll(ctx context.Context, perms []interfaces.CapabilityPermission) interfaces.GrantBatchResult {
	batch := interfaces.GrantBatchResult{Results: make([]interfaces.GrantResult, 0, len(perms))}
	for _, perm := range perms {
		batch.Results = append(batch.Results, interfaces.GrantResult{Permission: perm, Succeeded: true})
	}
	return batch
}

func (Granter) AllowBackgroundCapture(ctx context.Context) interfaces.GrantResult {
	return interfaces.GrantResult{Permission: "PROJECT_MEDIA", Succeeded: true}
}
