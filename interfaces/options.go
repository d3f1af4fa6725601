package interfaces

// OptionKey is a configuration key understood by the remote-access engine.
type OptionKey string

const (
	OptionRendezvousServer    OptionKey = "custom-rendezvous-server"
	OptionRelayServer         OptionKey = "relay-server"
	OptionAPIServer           OptionKey = "api-server"
	OptionPublicKey           OptionKey = "key"
	OptionApproveMode         OptionKey = "approve-mode"
	OptionEnableKeyboard      OptionKey = "enable-keyboard"
	OptionEnableClipboard     OptionKey = "enable-clipboard"
	OptionEnableFileTransfer  OptionKey = "enable-file-transfer"
	OptionEnableAudio         OptionKey = "enable-audio"
	OptionEnableTunnel        OptionKey = "enable-tunnel"
	OptionEnableRemoteRestart OptionKey = "enable-remote-restart"
	OptionDirectServer        OptionKey = "direct-server"
	OptionDirectAccessPort    OptionKey = "direct-access-port"
	OptionPermanentPassword   OptionKey = "permanent-password"
	OptionPresetDeviceName    OptionKey = "preset-device-name"
)

// OptionScope tells whether an option is device-local or read through the
// engine's synchronization path.
type OptionScope int

const (
	// ScopeLocal options are device-scoped and take effect immediately.
	ScopeLocal OptionScope = iota
	// ScopeSynced options are only re-read by the engine on reconnect.
	ScopeSynced
)

func (s OptionScope) String() string {
	if s == ScopeSynced {
		return "synced"
	}
	return "local"
}

// KnownOptions maps every option key this module writes to its scope.
var KnownOptions = map[OptionKey]OptionScope{
	OptionRendezvousServer:    ScopeLocal,
	OptionRelayServer:         ScopeLocal,
	OptionAPIServer:           ScopeLocal,
	OptionPublicKey:           ScopeLocal,
	OptionApproveMode:         ScopeLocal,
	OptionEnableKeyboard:      ScopeLocal,
	OptionEnableClipboard:     ScopeLocal,
	OptionEnableFileTransfer:  ScopeLocal,
	OptionEnableAudio:         ScopeLocal,
	OptionEnableTunnel:        ScopeLocal,
	OptionEnableRemoteRestart: ScopeLocal,
	OptionDirectServer:        ScopeLocal,
	OptionDirectAccessPort:    ScopeLocal,
	OptionPermanentPassword:   ScopeLocal,
	OptionPresetDeviceName:    ScopeSynced,
}

// StatusWhitelist lists the options that may be exposed to local observers.
// Credentials are never included.
var StatusWhitelist = []OptionKey{
	OptionRendezvousServer,
	OptionRelayServer,
	OptionAPIServer,
}

// RemoteConfigOption is one key/value pair applied to the engine.
type RemoteConfigOption struct {
	Key   OptionKey
	Value string
}

// Scope returns the scope of the option, defaulting to local for unknown keys.
func (o RemoteConfigOption) Scope() OptionScope {
	return KnownOptions[o.Key]
}
