package android

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// CaptureProbe reports screen capture as ready once the PROJECT_MEDIA app-op
// is allowed and the service process is alive.
type CaptureProbe struct {
	exec     interfaces.PrivilegedExecutor
	pkg      string
	launcher interfaces.ServiceLauncher
	log      *slog.Logger
}

var _ interfaces.CaptureProbe = (*CaptureProbe)(nil)

func NewCaptureProbe(exec interfaces.PrivilegedExecutor, pkg string, launcher interfaces.ServiceLauncher, log *slog.Logger) *CaptureProbe {
	return &CaptureProbe{exec: exec, pkg: pkg, launcher: launcher, log: log}
}

func (p *CaptureProbe) CaptureReady(ctx context.Context) (bool, error) {
	res := p.exec.Run(ctx, "appops get "+p.pkg+" PROJECT_MEDIA")
	if !res.OK() {
		return false, res.Err
	}
	// Output looks like "PROJECT_MEDIA: allow; time=+1h2m ago".
	if !strings.Contains(strings.ToLower(res.Stdout), ": allow") {
		return false, nil
	}
	return p.launcher.Running(ctx)
}
