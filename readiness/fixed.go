package readiness

import (
	"context"
	"fmt"
	"time"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

const (
	LegacyServiceDelay = 2 * time.Second
	LegacyBindingDelay = time.Second
)

// FixedDelay sleeps Delay and reports ready without consulting the condition.
type FixedDelay struct {
	Delay time.Duration
}

var _ interfaces.Waiter = FixedDelay{}

func (f FixedDelay) WaitFor(ctx context.Context, name string, _ interfaces.Condition) error {
	timer := time.NewTimer(f.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", interfaces.ErrNotReady, name, ctx.Err())
	case <-timer.C:
		return nil
	}
}
