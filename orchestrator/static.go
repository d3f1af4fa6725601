package orchestrator

import (
	"fmt"
	"strconv"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// ApproveMode controls how incoming sessions are accepted.
type ApproveMode string

const (
	// ApprovePassword accepts sessions presenting the permanent password unattended.
	ApprovePassword ApproveMode = "password"
	// ApproveClick requires a click on the endpoint.
	ApproveClick ApproveMode = "click"
	// ApproveBoth accepts either.
	ApproveBoth ApproveMode = "both"
)

func (m ApproveMode) Valid() bool {
	switch m {
	case ApprovePassword, ApproveClick, ApproveBoth:
		return true
	}
	return false
}

// engineValue is the approve-mode value understood by the engine, which spells
// "both" as the empty string.
func (m ApproveMode) engineValue() string {
	if m == ApproveBoth {
		return ""
	}
	return string(m)
}

// Features toggles the capabilities offered to incoming sessions.
type Features struct {
	Keyboard      bool `yaml:"keyboard"`
	Clipboard     bool `yaml:"clipboard"`
	FileTransfer  bool `yaml:"file_transfer"`
	Audio         bool `yaml:"audio"`
	Tunnel        bool `yaml:"tunnel"`
	RemoteRestart bool `yaml:"remote_restart"`
}

func AllFeatures() Features {
	return Features{true, true, true, true, true, true}
}

// StaticConfig is the deployment-specific engine configuration applied once
// per process.
type StaticConfig struct {
	RendezvousServer string
	RelayServer      string
	APIServer        string
	PublicKey        string
	ApproveMode      ApproveMode
	Features         Features

	DirectAccess     bool
	DirectAccessPort int

	// Applied only when non-empty.
	DefaultCredential string
	DefaultDeviceName string
}

// Options lists the local options derived from the configuration, in the
// order they are written.
func (c StaticConfig) Options() []interfaces.RemoteConfigOption {
	return []interfaces.RemoteConfigOption{
		{Key: interfaces.OptionRendezvousServer, Value: c.RendezvousServer},
		{Key: interfaces.OptionRelayServer, Value: c.RelayServer},
		{Key: interfaces.OptionAPIServer, Value: c.APIServer},
		{Key: interfaces.OptionPublicKey, Value: c.PublicKey},
		{Key: interfaces.OptionApproveMode, Value: c.ApproveMode.engineValue()},
		{Key: interfaces.OptionEnableKeyboard, Value: yn(c.Features.Keyboard)},
		{Key: interfaces.OptionEnableClipboard, Value: yn(c.Features.Clipboard)},
		{Key: interfaces.OptionEnableFileTransfer, Value: yn(c.Features.FileTransfer)},
		{Key: interfaces.OptionEnableAudio, Value: yn(c.Features.Audio)},
		{Key: interfaces.OptionEnableTunnel, Value: yn(c.Features.Tunnel)},
		{Key: interfaces.OptionEnableRemoteRestart, Value: yn(c.Features.RemoteRestart)},
		{Key: interfaces.OptionDirectServer, Value: yn(c.DirectAccess)},
		{Key: interfaces.OptionDirectAccessPort, Value: strconv.Itoa(c.DirectAccessPort)},
	}
}

func (c StaticConfig) Validate() error {
	if c.RendezvousServer == "" {
		return fmt.Errorf("%w: rendezvous server is required", interfaces.ErrInvalidInput)
	}
	if !c.ApproveMode.Valid() {
		return fmt.Errorf("%w: approve mode %q", interfaces.ErrInvalidInput, c.ApproveMode)
	}
	if c.DirectAccessPort < 1 || c.DirectAccessPort > 65535 {
		return fmt.Errorf("%w: direct access port %d", interfaces.ErrInvalidInput, c.DirectAccessPort)
	}
	return nil
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
