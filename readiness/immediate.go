package readiness

import (
	"context"
	"fmt"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// Immediate evaluates the condition exactly once. It keeps tests free of
// timing.
type Immediate struct{}

func (Immediate) WaitFor(ctx context.Context, name string, cond interfaces.Condition) error {
	ok, err := cond(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", interfaces.ErrNotReady, name, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrNotReady, name)
	}
	return nil
}
