package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cleverty/endpoint-provisioner/executor"
	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/cleverty/endpoint-provisioner/orchestrator"
	"github.com/cleverty/endpoint-provisioner/platform/android"
	"github.com/cleverty/endpoint-provisioner/readiness"
	"github.com/cleverty/endpoint-provisioner/status"
	"gopkg.in/yaml.v3"
)

var ErrInvalidProfile = errors.New("invalid profile")

// Launcher types.
const (
	LauncherAndroid = "android"
	LauncherSystemd = "systemd"
)

// Readiness strategies.
const (
	ReadinessPoll  = "poll"
	ReadinessFixed = "fixed"
)

type Profile struct {
	Package      string `yaml:"package"`
	Service      string `yaml:"service"`
	StartAction  string `yaml:"start_action"`
	InputService string `yaml:"input_service"`

	Launcher    string `yaml:"launcher"`
	SystemdUnit string `yaml:"systemd_unit"`

	Servers Servers `yaml:"servers"`

	PublicKey   string                   `yaml:"public_key"`
	ApproveMode orchestrator.ApproveMode `yaml:"approve_mode"`
	Features    orchestrator.Features    `yaml:"features"`

	DirectAccess DirectAccess `yaml:"direct_access"`

	// DefaultCredential is a secret reference, see package secrets.
	DefaultCredential string `yaml:"default_credential"`
	DefaultDeviceName string `yaml:"default_device_name"`

	// Permissions overrides the built-in permission list when non-empty.
	Permissions []string `yaml:"permissions,omitempty"`

	Engine   Engine   `yaml:"engine"`
	Executor Executor `yaml:"executor"`

	Readiness string   `yaml:"readiness"`
	Timeouts  Timeouts `yaml:"timeouts"`

	Store   string   `yaml:"store"`
	Reports []string `yaml:"reports,omitempty"`
}

type Servers struct {
	Rendezvous string `yaml:"rendezvous"`
	Relay      string `yaml:"relay"`
	API        string `yaml:"api"`
}

// List returns the configured server addresses in a fixed order.
func (s Servers) List() []string {
	return []string{s.Rendezvous, s.Relay, s.API}
}

type DirectAccess struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type Engine struct {
	// ConfigDir holds the engine's TOML configuration files.
	ConfigDir string `yaml:"config_dir"`
	// AppName is the file name stem of those files.
	AppName        string `yaml:"app_name"`
	StartCommand   string `yaml:"start_command"`
	RestartCommand string `yaml:"restart_command"`
}

type Executor struct {
	Shell        string   `yaml:"shell"`
	ShellArgs    []string `yaml:"shell_args,omitempty"`
	CommandAsArg bool     `yaml:"command_as_arg"`
}

type Timeouts struct {
	Command      time.Duration `yaml:"command"`
	Service      time.Duration `yaml:"service"`
	Binding      time.Duration `yaml:"binding"`
	Probe        time.Duration `yaml:"probe"`
	InputSettle  time.Duration `yaml:"input_settle"`
	ServiceDelay time.Duration `yaml:"service_delay"`
	BindingDelay time.Duration `yaml:"binding_delay"`
}

// Default returns the profile of the stock Android deployment.
func Default() *Profile {
	return &Profile{
		Package:      "com.carriez.flutter_hbb",
		Service:      android.DefaultService,
		StartAction:  android.DefaultStartAction,
		InputService: android.DefaultInputService,

		Launcher:    LauncherAndroid,
		SystemdUnit: "rustdesk.service",

		Servers: Servers{
			Rendezvous: "rustdesk.cleverty.app",
			Relay:      "rustdesk.cleverty.app",
			API:        "https://rustdesk.cleverty.app",
		},
		PublicKey:   "R8zlNg4TEv9rbPYND8+odNkqcdVtXhE3mpvTg+DVm5I=",
		ApproveMode: orchestrator.ApprovePassword,
		Features:    orchestrator.AllFeatures(),

		DirectAccess: DirectAccess{Enabled: true, Port: 21118},

		Engine: Engine{
			ConfigDir: "/data/user/0/com.carriez.flutter_hbb/app_flutter",
			AppName:   "RustDesk",
		},
		Executor: Executor{Shell: "su"},

		Readiness: ReadinessPoll,
		Timeouts: Timeouts{
			Command:      executor.DefaultCommandTimeout,
			Service:      readiness.DefaultServiceTimeout,
			Binding:      readiness.DefaultBindingTimeout,
			Probe:        status.DefaultProbeTimeout,
			InputSettle:  android.DefaultSettleDelay,
			ServiceDelay: readiness.LegacyServiceDelay,
			BindingDelay: readiness.LegacyBindingDelay,
		},

		Store: "file:///data/user_de/0/com.carriez.flutter_hbb/provisioner.json",
	}
}

// Load reads the profile at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Profile, error) {
	p := Default()
	if path == "" {
		return p, p.Validate()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer f.Close()

	if err := p.decode(f); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return p, p.Validate()
}

// Parse decodes a YAML document over the defaults.
func Parse(data []byte) (*Profile, error) {
	p := Default()
	if err := p.decode(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return p, p.Validate()
}

func (p *Profile) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Encode writes the profile as YAML.
func (p *Profile) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}

func (p *Profile) Validate() error {
	if err := executor.ValidatePackageName(p.Package); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	switch p.Launcher {
	case LauncherAndroid:
		if p.Service == "" || p.InputService == "" {
			return fmt.Errorf("%w: android launcher needs service and input_service", ErrInvalidProfile)
		}
	case LauncherSystemd:
		if p.SystemdUnit == "" {
			return fmt.Errorf("%w: systemd launcher needs systemd_unit", ErrInvalidProfile)
		}
	default:
		return fmt.Errorf("%w: unknown launcher %q", ErrInvalidProfile, p.Launcher)
	}
	switch p.Readiness {
	case ReadinessPoll, ReadinessFixed:
	default:
		return fmt.Errorf("%w: unknown readiness strategy %q", ErrInvalidProfile, p.Readiness)
	}
	if p.Engine.ConfigDir == "" || p.Engine.AppName == "" {
		return fmt.Errorf("%w: engine config_dir and app_name are required", ErrInvalidProfile)
	}
	for _, perm := range p.Permissions {
		if perm == "" {
			return fmt.Errorf("%w: empty permission", ErrInvalidProfile)
		}
	}
	if err := p.Static("").Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	return nil
}

// Static builds the engine configuration. credential is the resolved value
// of DefaultCredential.
func (p *Profile) Static(credential string) orchestrator.StaticConfig {
	return orchestrator.StaticConfig{
		RendezvousServer:  p.Servers.Rendezvous,
		RelayServer:       p.Servers.Relay,
		APIServer:         p.Servers.API,
		PublicKey:         p.PublicKey,
		ApproveMode:       p.ApproveMode,
		Features:          p.Features,
		DirectAccess:      p.DirectAccess.Enabled,
		DirectAccessPort:  p.DirectAccess.Port,
		DefaultCredential: credential,
		DefaultDeviceName: p.DefaultDeviceName,
	}
}

// PermissionList returns the permissions to grant during setup.
func (p *Profile) PermissionList() []interfaces.CapabilityPermission {
	if len(p.Permissions) == 0 {
		return interfaces.DefaultPermissions
	}
	perms := make([]interfaces.CapabilityPermission, len(p.Permissions))
	for i, perm := range p.Permissions {
		perms[i] = interfaces.CapabilityPermission(perm)
	}
	return perms
}
