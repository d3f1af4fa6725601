package executor

import (
	"context"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockExecutor mocks the PrivilegedExecutor interface
type MockExecutor struct {
	mock.Mock
}

// Run mocks the Run method
func (m *MockExecutor) Run(ctx context.Context, command string) interfaces.ExecResult {
	args := m.Called(ctx, command)
	return args.Get(0).(interfaces.ExecResult)
}

// Succeeded is a convenience ExecResult for a command that exited 0.
func Succeeded(command, stdout string) interfaces.ExecResult {
	return interfaces.ExecResult{Command: command, Stdout: stdout}
}

// Failed is a convenience ExecResult for a command that exited with code.
func Failed(command string, code int, stderr string) interfaces.ExecResult {
	return interfaces.ExecResult{
		Command:  command,
		ExitCode: code,
		Stderr:   stderr,
		Err:      interfaces.ErrCommandFailed,
	}
}
