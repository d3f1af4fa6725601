package systemd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/godbus/dbus/v5"
)

const (
	busName      = "org.freedesktop.systemd1"
	managerPath  = dbus.ObjectPath("/org/freedesktop/systemd1")
	managerIface = "org.freedesktop.systemd1.Manager"
	unitIface    = "org.freedesktop.systemd1.Unit"
	propsIface   = "org.freedesktop.DBus.Properties"
)

// caller abstracts a method call on a systemd object.
type caller interface {
	Call(ctx context.Context, path dbus.ObjectPath, method string, args ...any) *dbus.Call
}

type systemBus struct {
	conn *dbus.Conn
}

func (b *systemBus) Call(ctx context.Context, path dbus.ObjectPath, method string, args ...any) *dbus.Call {
	return b.conn.Object(busName, path).CallWithContext(ctx, method, 0, args...)
}

// Launcher starts and inspects one systemd unit.
type Launcher struct {
	bus   caller
	unit  string
	log   *slog.Logger
	close func() error
}

var _ interfaces.ServiceLauncher = (*Launcher)(nil)

// NewLauncher connects to the system bus.
func NewLauncher(unit string, log *slog.Logger) (*Launcher, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}
	return &Launcher{bus: &systemBus{conn: conn}, unit: unit, log: log, close: conn.Close}, nil
}

func (l *Launcher) Close() error {
	if l.close == nil {
		return nil
	}
	return l.close()
}

func (l *Launcher) Start(ctx context.Context) error {
	return l.job(ctx, "StartUnit")
}

func (l *Launcher) Restart(ctx context.Context) error {
	return l.job(ctx, "RestartUnit")
}

func (l *Launcher) Running(ctx context.Context) (bool, error) {
	state, err := l.ActiveState(ctx)
	if err != nil {
		return false, err
	}
	return state == "active", nil
}

// ActiveState returns the unit's ActiveState property, e.g. "active" or "failed".
func (l *Launcher) ActiveState(ctx context.Context) (string, error) {
	var path dbus.ObjectPath
	if err := l.bus.Call(ctx, managerPath, managerIface+".LoadUnit", l.unit).Store(&path); err != nil {
		return "", fmt.Errorf("load unit %s: %w", l.unit, err)
	}

	var v dbus.Variant
	if err := l.bus.Call(ctx, path, propsIface+".Get", unitIface, "ActiveState").Store(&v); err != nil {
		return "", fmt.Errorf("get ActiveState of %s: %w", l.unit, err)
	}
	state, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("ActiveState of %s is not a string", l.unit)
	}
	return state, nil
}

func (l *Launcher) job(ctx context.Context, method string) error {
	var job dbus.ObjectPath
	if err := l.bus.Call(ctx, managerPath, managerIface+"."+method, l.unit, "replace").Store(&job); err != nil {
		return fmt.Errorf("%s %s: %w", method, l.unit, err)
	}
	l.log.Info("Queued unit job",
		slog.String("unit", l.unit),
		slog.String("method", method),
		slog.String("job", string(job)))
	return nil
}
