package profile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/cleverty/endpoint-provisioner/orchestrator"
	"github.com/stretchr/testify/require"
)

func TestDefaultReproducesStockDeployment(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())

	static := p.Static("")
	opts := map[interfaces.OptionKey]string{}
	for _, o := range static.Options() {
		opts[o.Key] = o.Value
	}

	require.Equal(t, "rustdesk.cleverty.app", opts[interfaces.OptionRendezvousServer])
	require.Equal(t, "rustdesk.cleverty.app", opts[interfaces.OptionRelayServer])
	require.Equal(t, "https://rustdesk.cleverty.app", opts[interfaces.OptionAPIServer])
	require.Equal(t, "R8zlNg4TEv9rbPYND8+odNkqcdVtXhE3mpvTg+DVm5I=", opts[interfaces.OptionPublicKey])
	require.Equal(t, "password", opts[interfaces.OptionApproveMode])
	require.Equal(t, "Y", opts[interfaces.OptionEnableKeyboard])
	require.Equal(t, "Y", opts[interfaces.OptionEnableRemoteRestart])
	require.Equal(t, "Y", opts[interfaces.OptionDirectServer])
	require.Equal(t, "21118", opts[interfaces.OptionDirectAccessPort])

	require.Empty(t, static.DefaultCredential)
	require.Equal(t, interfaces.DefaultPermissions, p.PermissionList())
}

func TestParseOverlaysDefaults(t *testing.T) {
	p, err := Parse([]byte(`
servers:
  rendezvous: rs.example.org
  relay: relay.example.org
  api: https://api.example.org
approve_mode: both
features:
  keyboard: true
  clipboard: false
  file_transfer: false
  audio: true
  tunnel: false
  remote_restart: true
direct_access:
  enabled: false
  port: 21200
default_credential: env:ENDPOINT_PASSWORD
default_device_name: kiosk-12
permissions:
  - android.permission.RECORD_AUDIO
timeouts:
  service: 30s
readiness: fixed
reports:
  - file:///var/lib/provisioner/reports
`))
	require.NoError(t, err)

	require.Equal(t, "com.carriez.flutter_hbb", p.Package)
	require.Equal(t, []string{"rs.example.org", "relay.example.org", "https://api.example.org"}, p.Servers.List())
	require.Equal(t, orchestrator.ApproveBoth, p.ApproveMode)
	require.False(t, p.Features.Clipboard)
	require.Equal(t, 30*time.Second, p.Timeouts.Service)
	require.Equal(t, 5*time.Second, p.Timeouts.Binding)
	require.Equal(t, ReadinessFixed, p.Readiness)
	require.Equal(t, []interfaces.CapabilityPermission{"android.permission.RECORD_AUDIO"}, p.PermissionList())

	static := p.Static("s3cret")
	require.Equal(t, "s3cret", static.DefaultCredential)
	require.Equal(t, "kiosk-12", static.DefaultDeviceName)
	require.False(t, static.DirectAccess)
	require.Equal(t, 21200, static.DirectAccessPort)
}

func TestParseRejectsInvalidProfiles(t *testing.T) {
	cases := map[string]string{
		"approve mode":    "approve_mode: sometimes\n",
		"port":            "direct_access:\n  port: 70000\n",
		"package":         "package: \"com.example; reboot\"\n",
		"launcher":        "launcher: init.d\n",
		"readiness":       "readiness: hope\n",
		"rendezvous":      "servers:\n  rendezvous: \"\"\n",
		"unknown field":   "servrs:\n  relay: x\n",
		"systemd no unit": "launcher: systemd\nsystemd_unit: \"\"\n",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		require.Error(t, err, name)
	}

	_, err := Parse([]byte("approve_mode: sometimes\n"))
	require.ErrorIs(t, err, ErrInvalidProfile)
}

func TestLoadAndEncodeRoundTrip(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)

	p.DefaultDeviceName = "lobby-screen"
	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, p, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
