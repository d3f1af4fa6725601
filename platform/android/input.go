package android

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/cleverty/endpoint-provisioner/executor"
	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// DefaultSettleDelay separates clearing and re-adding the registration so the
// accessibility manager observes the unbind.
const DefaultSettleDelay = 100 * time.Millisecond

const (
	settingEnabledServices = "enabled_accessibility_services"
	settingEnabled         = "accessibility_enabled"
)

var componentPartPattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// InputControl registers the input-control accessibility service through
// secure settings.
type InputControl struct {
	exec   interfaces.PrivilegedExecutor
	pkg    string
	svc    string
	settle time.Duration
	log    *slog.Logger
}

var _ interfaces.InputControl = (*InputControl)(nil)

func NewInputControl(exec interfaces.PrivilegedExecutor, pkg, inputService string, settle time.Duration, log *slog.Logger) (*InputControl, error) {
	if err := executor.ValidatePackageName(pkg); err != nil {
		return nil, err
	}
	if err := validateComponentPart(inputService); err != nil {
		return nil, err
	}
	return &InputControl{exec: exec, pkg: pkg, svc: inputService, settle: settle, log: log}, nil
}

// Component is the flattened component name written to secure settings.
func (c *InputControl) Component() string {
	return c.pkg + "/" + c.svc
}

// Register replaces any registration with exactly one entry for our component.
// Other accessibility services are dropped, matching a device-owner managed
// endpoint.
func (c *InputControl) Register(ctx context.Context) error {
	if err := c.Clear(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(c.settle)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
	}

	if err := c.put(ctx, settingEnabledServices, c.Component()); err != nil {
		return err
	}
	if err := c.put(ctx, settingEnabled, "1"); err != nil {
		return err
	}

	c.log.Info("Registered input control", slog.String("component", c.Component()))
	return nil
}

func (c *InputControl) Clear(ctx context.Context) error {
	if err := c.put(ctx, settingEnabledServices, `""`); err != nil {
		return err
	}
	return c.put(ctx, settingEnabled, "0")
}

// Bound requires the component to be listed exactly once in secure settings
// and, where dumpsys is available, among the enabled services of the
// accessibility manager.
func (c *InputControl) Bound(ctx context.Context) (bool, error) {
	res := c.exec.Run(ctx, "settings get secure "+settingEnabledServices)
	if !res.OK() {
		return false, res.Err
	}
	if countComponent(res.Stdout, c.Component()) != 1 {
		return false, nil
	}

	dump := c.exec.Run(ctx, "dumpsys accessibility")
	if !dump.OK() || strings.TrimSpace(dump.Stdout) == "" {
		c.log.Debug("dumpsys accessibility unavailable, trusting settings", "err", dump.Err)
		return true, nil
	}
	return enabledInDump(dump.Stdout, c.Component()), nil
}

func (c *InputControl) put(ctx context.Context, key, value string) error {
	res := c.exec.Run(ctx, fmt.Sprintf("settings put secure %s %s", key, value))
	if !res.OK() {
		return fmt.Errorf("settings put %s: %w", key, res.Err)
	}
	return nil
}

func countComponent(setting, component string) int {
	n := 0
	for _, entry := range strings.Split(strings.TrimSpace(setting), ":") {
		if entry == component {
			n++
		}
	}
	return n
}

// enabledInDump looks for the component on the "Enabled services" line of
// dumpsys accessibility output.
func enabledInDump(dump, component string) bool {
	for _, line := range strings.Split(dump, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Enabled services:") {
			return strings.Contains(line, component)
		}
	}
	return false
}

func validateComponentPart(s string) error {
	if !componentPartPattern.MatchString(s) {
		return fmt.Errorf("%w: component %q", interfaces.ErrInvalidInput, s)
	}
	return nil
}
