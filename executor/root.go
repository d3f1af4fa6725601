package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/go-cmd/cmd"
)

const (
	// DefaultCommandTimeout bounds a single elevated command.
	DefaultCommandTimeout = 15 * time.Second

	// maxOutputBytes is the maximum number of bytes kept per output stream.
	maxOutputBytes = 64 * 1024

	// stopGrace is how long a timed-out command may take to exit after SIGTERM.
	stopGrace = 2 * time.Second
)

// RootConfig configures how elevated shells are spawned.
type RootConfig struct {
	// Shell is the elevating binary. Defaults to "su".
	Shell string

	// ShellArgs are passed to Shell before the command.
	ShellArgs []string

	// CommandAsArg appends the command as the last argument (sh -c style)
	// instead of writing it to the shell's stdin followed by "exit".
	CommandAsArg bool

	// Timeout bounds each command. Defaults to DefaultCommandTimeout.
	Timeout time.Duration
}

// RootExecutor implements interfaces.PrivilegedExecutor by spawning one
// elevated shell per command.
type RootExecutor struct {
	cfg RootConfig
	log *slog.Logger
}

// NewRootExecutor creates an executor, filling in defaults for unset fields.
func NewRootExecutor(cfg RootConfig, log *slog.Logger) *RootExecutor {
	if cfg.Shell == "" {
		cfg.Shell = "su"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCommandTimeout
	}
	return &RootExecutor{cfg: cfg, log: log}
}

// Run executes command in an elevated shell and waits at most the configured
// timeout. A timed-out command is stopped and reported with exit code -1.
func (e *RootExecutor) Run(ctx context.Context, command string) interfaces.ExecResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	e.log.Debug("Executing elevated command", "command", command)

	args := append([]string{}, e.cfg.ShellArgs...)
	if e.cfg.CommandAsArg {
		args = append(args, command)
	}

	c := cmd.NewCmdOptions(cmd.Options{Buffered: true}, e.cfg.Shell, args...)
	var statusChan <-chan cmd.Status
	if e.cfg.CommandAsArg {
		statusChan = c.Start()
	} else {
		statusChan = c.StartWithStdin(strings.NewReader(command + "\nexit\n"))
	}

	select {
	case status := <-statusChan:
		return e.result(command, status, time.Since(start))
	case <-ctx.Done():
		if err := c.Stop(); err != nil {
			e.log.Debug("Failed to stop command", "command", command, "err", err)
		}
		select {
		case <-c.Done():
		case <-time.After(stopGrace):
		}
		status := c.Status()
		e.log.Warn("Elevated command timed out",
			"command", command,
			slog.Duration("timeout", e.cfg.Timeout))
		return interfaces.ExecResult{
			Command:  command,
			ExitCode: -1,
			Stdout:   joinLimited(status.Stdout),
			Stderr:   joinLimited(status.Stderr),
			Duration: time.Since(start),
			Err:      fmt.Errorf("%w after %s", interfaces.ErrCommandTimeout, e.cfg.Timeout),
		}
	}
}

func (e *RootExecutor) result(command string, status cmd.Status, elapsed time.Duration) interfaces.ExecResult {
	res := interfaces.ExecResult{
		Command:  command,
		ExitCode: status.Exit,
		Stdout:   joinLimited(status.Stdout),
		Stderr:   joinLimited(status.Stderr),
		Duration: elapsed,
	}

	switch {
	case status.Error != nil:
		res.Err = fmt.Errorf("could not run %s: %w", e.cfg.Shell, status.Error)
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
		e.log.Error("Failed to execute command", "command", command, "err", status.Error)
	case status.Exit != 0:
		res.Err = fmt.Errorf("%w: exit code %d", interfaces.ErrCommandFailed, status.Exit)
		e.log.Warn("Command failed", "command", command, "exitCode", status.Exit, "stderr", res.Stderr)
	default:
		e.log.Debug("Command succeeded", "command", command, slog.Duration("duration", elapsed))
	}
	return res
}

// joinLimited joins buffered output lines, truncating at maxOutputBytes.
func joinLimited(lines []string) string {
	out := strings.Join(lines, "\n")
	if len(out) > maxOutputBytes {
		return out[:maxOutputBytes] + "\n[output truncated]"
	}
	return out
}
