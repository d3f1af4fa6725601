package orchestrator

import (
	"context"
	"strings"
	"sync"

	"github.com/cleverty/endpoint-provisioner/executor"
	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// fakeDevice emulates the handful of shell commands the Android adapters
// issue, keeping secure settings and process state in memory.
type fakeDevice struct {
	mu sync.Mutex

	pkg        string
	settings   map[string]string
	running    bool
	neverStart bool
	denied     map[interfaces.CapabilityPermission]bool
	commands   []string
}

func newFakeDevice(pkg string) *fakeDevice {
	return &fakeDevice{
		pkg:      pkg,
		settings: map[string]string{},
		denied:   map[interfaces.CapabilityPermission]bool{},
	}
}

func (d *fakeDevice) Run(ctx context.Context, command string) interfaces.ExecResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = append(d.commands, command)

	f := strings.Fields(command)
	switch {
	case len(f) == 4 && f[0] == "pm" && f[1] == "grant":
		if d.denied[interfaces.CapabilityPermission(f[3])] {
			return executor.Failed(command, 255, "java.lang.SecurityException: Permission denial")
		}
		return executor.Succeeded(command, "")

	case f[0] == "am" && f[1] == "start-foreground-service":
		if !d.neverStart {
			d.running = true
		}
		return executor.Succeeded(command, "Starting service: Intent { cmp="+f[3]+" }")

	case f[0] == "am" && f[1] == "stopservice":
		d.running = false
		return executor.Succeeded(command, "Service stopped")

	case f[0] == "pidof":
		if d.running {
			return executor.Succeeded(command, "4242\n")
		}
		return interfaces.ExecResult{Command: command, ExitCode: 1, Err: interfaces.ErrCommandFailed}

	case len(f) == 5 && f[0] == "settings" && f[1] == "put":
		value := f[4]
		if value == `""` {
			value = ""
		}
		d.settings[f[3]] = value
		return executor.Succeeded(command, "")

	case len(f) == 4 && f[0] == "settings" && f[1] == "get":
		v, ok := d.settings[f[3]]
		if !ok {
			v = "null"
		}
		return executor.Succeeded(command, v+"\n")

	case command == "dumpsys accessibility":
		enabled := ""
		if d.settings["accessibility_enabled"] == "1" && d.running {
			enabled = "{" + d.settings["enabled_accessibility_services"] + "}"
		}
		return executor.Succeeded(command, "ACCESSIBILITY MANAGER (dumpsys accessibility)\n  Enabled services:{"+enabled+"}\n")

	default:
		return executor.Succeeded(command, "")
	}
}

func (d *fakeDevice) setting(key string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings[key]
}

func (d *fakeDevice) isRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// indexOf returns the position of the first command with the given prefix.
func (d *fakeDevice) indexOf(prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range d.commands {
		if strings.HasPrefix(c, prefix) {
			return i
		}
	}
	return -1
}

func (d *fakeDevice) count(prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.commands {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}
