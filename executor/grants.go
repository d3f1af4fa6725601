package executor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// Synthetic batch entries for elevated operations that are not runtime permissions.
const (
	OpBatteryWhitelist  interfaces.CapabilityPermission = "op:deviceidle-whitelist"
	OpOverlay           interfaces.CapabilityPermission = "op:appops-SYSTEM_ALERT_WINDOW"
	OpBackgroundCapture interfaces.CapabilityPermission = "op:appops-PROJECT_MEDIA"
)

// Granter grants capabilities to one package through a privileged executor.
type Granter struct {
	exec interfaces.PrivilegedExecutor
	pkg  string
	log  *slog.Logger
}

// NewGranter creates a Granter for pkg. It fails if pkg is not a valid application ID.
func NewGranter(exec interfaces.PrivilegedExecutor, pkg string, log *slog.Logger) (*Granter, error) {
	if err := ValidatePackageName(pkg); err != nil {
		return nil, err
	}
	return &Granter{exec: exec, pkg: pkg, log: log}, nil
}

// Package returns the package the granter acts on.
func (g *Granter) Package() string {
	return g.pkg
}

// Grant attempts every permission exactly once, in order, and returns one
// result per permission. A failing or timed-out entry never stops the batch.
func (g *Granter) Grant(ctx context.Context, perms []interfaces.CapabilityPermission) interfaces.GrantBatchResult {
	batch := interfaces.GrantBatchResult{Results: make([]interfaces.GrantResult, 0, len(perms))}

	g.log.Info("Granting permissions", "package", g.pkg, "count", len(perms))
	for _, perm := range perms {
		if err := validatePermission(perm); err != nil {
			g.log.Error("Refusing to grant permission", "permission", perm, "err", err)
			batch.Results = append(batch.Results, interfaces.GrantResult{
				Permission: perm,
				ExitCode:   -1,
				Err:        err,
			})
			continue
		}

		res := g.exec.Run(ctx, grantCommand(g.pkg, perm))
		batch.Results = append(batch.Results, toGrantResult(perm, res))
	}

	failed := batch.Failed()
	if len(failed) > 0 {
		g.log.Warn("Some permissions were not granted",
			"package", g.pkg,
			"granted", batch.Len()-len(failed),
			"failed", len(failed),
			slog.Duration("duration", totalDuration(batch)))
	} else {
		g.log.Info("All permissions granted",
			"package", g.pkg,
			"count", batch.Len(),
			slog.Duration("duration", totalDuration(batch)))
	}
	return batch
}

// WhitelistBatteryOptimization exempts the package from battery optimization.
func (g *Granter) WhitelistBatteryOptimization(ctx context.Context) interfaces.GrantResult {
	return toGrantResult(OpBatteryWhitelist, g.exec.Run(ctx, deviceIdleWhitelistCommand(g.pkg)))
}

// AllowOverlay grants the overlay app-op.
func (g *Granter) AllowOverlay(ctx context.Context) interfaces.GrantResult {
	return toGrantResult(OpOverlay, g.exec.Run(ctx, appOpsAllowCommand(g.pkg, "SYSTEM_ALERT_WINDOW")))
}

// AllowBackgroundCapture lets the package start screen capture without the
// interactive consent dialog.
func (g *Granter) AllowBackgroundCapture(ctx context.Context) interfaces.GrantResult {
	return toGrantResult(OpBackgroundCapture, g.exec.Run(ctx, appOpsAllowCommand(g.pkg, "PROJECT_MEDIA")))
}

// GrantAll runs the permission batch followed by the battery, overlay and
// capture operations, which are returned in the batch's Operations.
func (g *Granter) GrantAll(ctx context.Context, perms []interfaces.CapabilityPermission) interfaces.GrantBatchResult {
	batch := g.Grant(ctx, perms)
	batch.Operations = []interfaces.GrantResult{
		g.WhitelistBatteryOptimization(ctx),
		g.AllowOverlay(ctx),
		g.AllowBackgroundCapture(ctx),
	}
	return batch
}

func toGrantResult(perm interfaces.CapabilityPermission, res interfaces.ExecResult) interfaces.GrantResult {
	gr := interfaces.GrantResult{
		Permission: perm,
		Succeeded:  res.OK() || alreadyApplied(res),
		ExitCode:   res.ExitCode,
		Duration:   res.Duration,
	}
	if !gr.Succeeded {
		gr.Err = res.Err
		if gr.Err == nil {
			gr.Err = interfaces.ErrCommandFailed
		}
	}
	return gr
}

// alreadyApplied treats "already granted/whitelisted" reports from a
// non-zero exit as success so re-invocation stays idempotent.
func alreadyApplied(res interfaces.ExecResult) bool {
	if res.ExitCode <= 0 {
		return false
	}
	out := strings.ToLower(res.Stdout + "\n" + res.Stderr)
	return strings.Contains(out, "already granted") || strings.Contains(out, "already whitelisted")
}

// totalDuration sums the time spent on all entries of a batch.
func totalDuration(batch interfaces.GrantBatchResult) time.Duration {
	var d time.Duration
	for _, r := range batch.Results {
		d += r.Duration
	}
	return d
}
