package interfaces

import (
	"context"
	"time"
)

// ExecResult describes one elevated command execution.
type ExecResult struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	// Err is set when the command could not run, timed out or exited non-zero.
	Err error
}

// OK reports whether the command ran to completion with exit code 0.
func (r ExecResult) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// PrivilegedExecutor runs shell commands in an elevated context.
// Every call is bounded by the executor's own timeout.
type PrivilegedExecutor interface {
	Run(ctx context.Context, command string) ExecResult
}

// RemoteConfig is the narrow interface into the remote-access engine.
type RemoteConfig interface {
	// SetOption writes a synced option. It takes effect after RestartConnection.
	SetOption(ctx context.Context, key OptionKey, value string) error
	GetOption(ctx context.Context, key OptionKey) (string, error)

	// SetLocalOption writes a device-scoped option, effective immediately.
	SetLocalOption(ctx context.Context, key OptionKey, value string) error
	GetLocalOption(ctx context.Context, key OptionKey) (string, error)

	SetCredential(ctx context.Context, value string) error

	// GetIdentity returns "" when no identity is assigned yet.
	GetIdentity(ctx context.Context) (string, error)

	StartNetworkService(ctx context.Context) error
	RestartConnection(ctx context.Context) error
}

// ServiceLauncher controls the lifecycle of the background service process.
type ServiceLauncher interface {
	Start(ctx context.Context) error
	Restart(ctx context.Context) error
	Running(ctx context.Context) (bool, error)
}

// InputControl manages the accessibility-style input-control registration.
type InputControl interface {
	// Register clears any existing registration and registers the input-control service.
	Register(ctx context.Context) error
	Clear(ctx context.Context) error
	Bound(ctx context.Context) (bool, error)
}

// CaptureProbe reports whether screen capture is ready.
type CaptureProbe interface {
	CaptureReady(ctx context.Context) (bool, error)
}

// Condition is polled by a Waiter.
type Condition func(ctx context.Context) (bool, error)

// Waiter blocks until cond holds or its bounded wait elapses (ErrNotReady).
type Waiter interface {
	WaitFor(ctx context.Context, name string, cond Condition) error
}
