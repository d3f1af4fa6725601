package android

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cleverty/endpoint-provisioner/executor"
	"github.com/cleverty/endpoint-provisioner/interfaces"
)

const (
	DefaultService      = "com.carriez.flutter_hbb.MainService"
	DefaultStartAction  = "INIT_MEDIA_PROJECTION_AND_SERVICE"
	DefaultInputService = "com.carriez.flutter_hbb.InputService"
)

// Launcher starts the background service as a foreground service.
type Launcher struct {
	exec    interfaces.PrivilegedExecutor
	pkg     string
	service string
	action  string
	log     *slog.Logger
}

var _ interfaces.ServiceLauncher = (*Launcher)(nil)

func NewLauncher(exec interfaces.PrivilegedExecutor, pkg, service, action string, log *slog.Logger) (*Launcher, error) {
	if err := executor.ValidatePackageName(pkg); err != nil {
		return nil, err
	}
	if err := validateComponentPart(service); err != nil {
		return nil, err
	}
	if action != "" {
		if err := validateComponentPart(action); err != nil {
			return nil, err
		}
	}
	return &Launcher{exec: exec, pkg: pkg, service: service, action: action, log: log}, nil
}

func (l *Launcher) component() string {
	return l.pkg + "/" + l.service
}

func (l *Launcher) Start(ctx context.Context) error {
	command := "am start-foreground-service -n " + l.component()
	if l.action != "" {
		command += " -a " + l.action
	}

	res := l.exec.Run(ctx, command)
	if !res.OK() {
		l.log.Warn("Failed to start service",
			slog.String("component", l.component()),
			slog.Int("exitCode", res.ExitCode),
			slog.String("stderr", res.Stderr),
			"err", res.Err)
		return fmt.Errorf("start %s: %w", l.component(), res.Err)
	}
	// am reports some failures on stdout with exit code 0.
	if strings.Contains(res.Stdout, "Error:") {
		return fmt.Errorf("start %s: %w: %s", l.component(), interfaces.ErrCommandFailed, strings.TrimSpace(res.Stdout))
	}

	l.log.Info("Started service", slog.String("component", l.component()))
	return nil
}

// Restart stops the service, ignoring a failed stop, and starts it again.
func (l *Launcher) Restart(ctx context.Context) error {
	res := l.exec.Run(ctx, "am stopservice -n "+l.component())
	if !res.OK() {
		l.log.Debug("Stop before restart failed", slog.String("component", l.component()), "err", res.Err)
	}
	return l.Start(ctx)
}

func (l *Launcher) Running(ctx context.Context) (bool, error) {
	res := l.exec.Run(ctx, "pidof "+l.pkg)
	if res.ExitCode == 1 && strings.TrimSpace(res.Stdout) == "" {
		return false, nil
	}
	if !res.OK() {
		return false, res.Err
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}
