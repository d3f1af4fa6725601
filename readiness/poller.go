package readiness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cleverty/endpoint-provisioner/interfaces"
)

const (
	DefaultServiceTimeout = 10 * time.Second
	DefaultBindingTimeout = 5 * time.Second

	DefaultInitialInterval = 100 * time.Millisecond
	DefaultMaxInterval     = time.Second
)

var errConditionFalse = errors.New("condition false")

// Poller is a Waiter bounded by Timeout.
type Poller struct {
	Timeout         time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Log             *slog.Logger
}

var _ interfaces.Waiter = (*Poller)(nil)

func NewPoller(timeout time.Duration, log *slog.Logger) *Poller {
	return &Poller{
		Timeout:         timeout,
		InitialInterval: DefaultInitialInterval,
		MaxInterval:     DefaultMaxInterval,
		Log:             log,
	}
}

// WaitFor returns nil as soon as cond holds. Otherwise it returns an error
// wrapping ErrNotReady and, when available, the last error cond returned.
func (p *Poller) WaitFor(ctx context.Context, name string, cond interfaces.Condition) error {
	start := time.Now()
	waitCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.InitialInterval),
		backoff.WithMaxInterval(p.MaxInterval),
		backoff.WithMaxElapsedTime(0),
	)

	var lastErr error
	attempts := 0
	op := func() error {
		attempts++
		ok, err := cond(waitCtx)
		if err != nil {
			lastErr = err
			return err
		}
		if !ok {
			return errConditionFalse
		}
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(b, waitCtx))
	if err == nil {
		p.logger().Debug("Condition ready",
			slog.String("condition", name),
			slog.Int("attempts", attempts),
			slog.Duration("duration", time.Since(start)))
		return nil
	}

	p.logger().Warn("Condition not ready",
		slog.String("condition", name),
		slog.Int("attempts", attempts),
		slog.Duration("timeout", p.Timeout),
		"err", lastErr)

	if lastErr != nil {
		return fmt.Errorf("%w: %s after %s: %w", interfaces.ErrNotReady, name, p.Timeout, lastErr)
	}
	return fmt.Errorf("%w: %s after %s", interfaces.ErrNotReady, name, p.Timeout)
}

func (p *Poller) logger() *slog.Logger {
	if p.Log == nil {
		return slog.Default()
	}
	return p.Log
}
