package status

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/cleverty/endpoint-provisioner/engine"
	"github.com/cleverty/endpoint-provisioner/interfaces"
	"golang.org/x/sync/errgroup"
)

const DefaultProbeTimeout = 2 * time.Second

// Query targets.
const (
	TargetID     = "id"
	TargetStatus = "status"
	TargetConfig = "config"
)

// configColumns names the whitelisted options in query output.
var configColumns = map[interfaces.OptionKey]string{
	interfaces.OptionRendezvousServer: "rendezvous_server",
	interfaces.OptionRelayServer:      "relay_server",
	interfaces.OptionAPIServer:        "api_server",
}

type Facade struct {
	Launcher     interfaces.ServiceLauncher
	Capture      interfaces.CaptureProbe
	Input        interfaces.InputControl
	Engine       interfaces.RemoteConfig
	ProbeTimeout time.Duration
	Log          *slog.Logger

	// Now is replaced in tests.
	Now func() time.Time
}

// Snapshot runs all probes concurrently, each bounded by ProbeTimeout. An
// unset port reads as false.
func (f *Facade) Snapshot(ctx context.Context) interfaces.Status {
	var st interfaces.Status
	var g errgroup.Group

	if f.Launcher != nil {
		g.Go(func() error {
			st.ServiceRunning = f.probe(ctx, "service_running", f.Launcher.Running)
			return nil
		})
	}
	if f.Capture != nil {
		g.Go(func() error {
			st.CaptureReady = f.probe(ctx, "capture_ready", f.Capture.CaptureReady)
			return nil
		})
	}
	if f.Input != nil {
		g.Go(func() error {
			st.InputControlReady = f.probe(ctx, "input_ready", f.Input.Bound)
			return nil
		})
	}
	g.Go(func() error {
		st.Identity = f.identity(ctx)
		return nil
	})
	_ = g.Wait()

	return st
}

// Query returns the rows for target, or an empty slice for unknown targets.
func (f *Facade) Query(ctx context.Context, target string) []Row {
	switch target {
	case TargetID:
		return []Row{{
			{Key: "id", Value: f.identity(ctx).String()},
			{Key: "timestamp", Value: strconv.FormatInt(f.now().UnixMilli(), 10)},
		}}

	case TargetStatus:
		st := f.Snapshot(ctx)
		return []Row{{
			{Key: "service_running", Value: bit(st.ServiceRunning)},
			{Key: "media_ready", Value: bit(st.CaptureReady)},
			{Key: "input_ready", Value: bit(st.InputControlReady)},
			{Key: "id", Value: st.Identity.String()},
		}}

	case TargetConfig:
		rows := make([]Row, 0, len(interfaces.StatusWhitelist)+1)
		for _, key := range interfaces.StatusWhitelist {
			rows = append(rows, Row{
				{Key: "key", Value: configColumns[key]},
				{Key: "value", Value: f.option(ctx, key)},
			})
		}
		rows = append(rows, Row{
			{Key: "key", Value: "id"},
			{Key: "value", Value: f.identity(ctx).String()},
		})
		return rows

	default:
		f.logger().Debug("Unknown status query", slog.String("target", target))
		return []Row{}
	}
}

func (f *Facade) probe(ctx context.Context, name string, fn func(context.Context) (bool, error)) bool {
	ctx, cancel := context.WithTimeout(ctx, f.timeout())
	defer cancel()

	ok, err := fn(ctx)
	if err != nil {
		f.logger().Debug("Status probe failed", slog.String("probe", name), "err", err)
		return false
	}
	return ok
}

func (f *Facade) identity(ctx context.Context) interfaces.RemoteIdentity {
	ctx, cancel := context.WithTimeout(ctx, f.timeout())
	defer cancel()
	return engine.ReadIdentity(ctx, f.Engine)
}

func (f *Facade) option(ctx context.Context, key interfaces.OptionKey) string {
	ctx, cancel := context.WithTimeout(ctx, f.timeout())
	defer cancel()

	v, err := f.Engine.GetLocalOption(ctx, key)
	if err != nil {
		f.logger().Debug("Failed to read option", slog.String("key", string(key)), "err", err)
		return ""
	}
	return v
}

func (f *Facade) timeout() time.Duration {
	if f.ProbeTimeout <= 0 {
		return DefaultProbeTimeout
	}
	return f.ProbeTimeout
}

func (f *Facade) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func (f *Facade) logger() *slog.Logger {
	if f.Log == nil {
		return slog.Default()
	}
	return f.Log
}

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
