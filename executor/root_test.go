package executor

import (
	"context"
	"testing"
	"time"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/stretchr/testify/assert"
)

func TestRootExecutor_StdinScript(t *testing.T) {
	e := NewRootExecutor(RootConfig{Shell: "sh", Timeout: 5 * time.Second}, testLogger())

	res := e.Run(context.Background(), "echo granted")
	assert.True(t, res.OK())
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "granted", res.Stdout)
}

func TestRootExecutor_CommandAsArg(t *testing.T) {
	e := NewRootExecutor(RootConfig{
		Shell:        "sh",
		ShellArgs:    []string{"-c"},
		CommandAsArg: true,
		Timeout:      5 * time.Second,
	}, testLogger())

	res := e.Run(context.Background(), "echo one; echo two")
	assert.True(t, res.OK())
	assert.Equal(t, "one\ntwo", res.Stdout)
}

func TestRootExecutor_NonZeroExit(t *testing.T) {
	e := NewRootExecutor(RootConfig{Shell: "sh", Timeout: 5 * time.Second}, testLogger())

	res := e.Run(context.Background(), "echo denied >&2; exit 3")
	assert.False(t, res.OK())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "denied", res.Stderr)
	assert.ErrorIs(t, res.Err, interfaces.ErrCommandFailed)
}

func TestRootExecutor_Timeout(t *testing.T) {
	e := NewRootExecutor(RootConfig{Shell: "sh", Timeout: 100 * time.Millisecond}, testLogger())

	start := time.Now()
	res := e.Run(context.Background(), "sleep 10")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, res.OK())
	assert.Equal(t, -1, res.ExitCode)
	assert.ErrorIs(t, res.Err, interfaces.ErrCommandTimeout)
}

func TestRootExecutor_MissingShell(t *testing.T) {
	e := NewRootExecutor(RootConfig{Shell: "/nonexistent/su", Timeout: time.Second}, testLogger())

	res := e.Run(context.Background(), "true")
	assert.False(t, res.OK())
	assert.Error(t, res.Err)
	assert.NotEqual(t, 0, res.ExitCode)
}

func TestJoinLimited(t *testing.T) {
	long := make([]byte, maxOutputBytes+10)
	for i := range long {
		long[i] = 'a'
	}
	out := joinLimited([]string{string(long)})
	assert.Contains(t, out, "[output truncated]")
	assert.Equal(t, "a\nb", joinLimited([]string{"a", "b"}))
}
