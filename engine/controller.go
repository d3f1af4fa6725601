package engine

import (
	"context"
	"fmt"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// CommandController runs fixed elevated commands to start and restart the
// engine, for hosts where no ServiceLauncher manages it.
type CommandController struct {
	Exec           interfaces.PrivilegedExecutor
	StartCommand   string
	RestartCommand string
}

func (c *CommandController) Start(ctx context.Context) error {
	return c.run(ctx, c.StartCommand)
}

func (c *CommandController) Restart(ctx context.Context) error {
	return c.run(ctx, c.RestartCommand)
}

func (c *CommandController) run(ctx context.Context, command string) error {
	if command == "" {
		return fmt.Errorf("%w: no command configured", interfaces.ErrEngineNotReady)
	}
	res := c.Exec.Run(ctx, command)
	if !res.OK() {
		return res.Err
	}
	return nil
}
