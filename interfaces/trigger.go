package interfaces

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Command enumerates the provisioning actions accepted from external triggers.
type Command int

const (
	CommandFullSetup Command = iota
	CommandEnableInputControl
	CommandEnableStartOnBoot
	CommandStartService
	CommandGetIdentity
	CommandGrantCapabilities
	CommandSetCredential
	CommandSetDeviceName
)

// Parameter names carried by triggers.
const (
	ParamCredential = "credential"
	ParamDeviceName = "device_name"
)

// AllCommands lists every Command in declaration order.
var AllCommands = []Command{
	CommandFullSetup,
	CommandEnableInputControl,
	CommandEnableStartOnBoot,
	CommandStartService,
	CommandGetIdentity,
	CommandGrantCapabilities,
	CommandSetCredential,
	CommandSetDeviceName,
}

var commandNames = map[Command]string{
	CommandFullSetup:          "full-setup",
	CommandEnableInputControl: "enable-input-control",
	CommandEnableStartOnBoot:  "enable-start-on-boot",
	CommandStartService:       "start-service",
	CommandGetIdentity:        "get-identity",
	CommandGrantCapabilities:  "grant-capabilities",
	CommandSetCredential:      "set-credential",
	CommandSetDeviceName:      "set-device-name",
}

// legacyActions maps the broadcast action suffixes used by existing
// device-owner tooling onto commands.
var legacyActions = map[string]Command{
	"ENTERPRISE_SETUP":     CommandFullSetup,
	"ENABLE_ACCESSIBILITY": CommandEnableInputControl,
	"ENABLE_START_ON_BOOT": CommandEnableStartOnBoot,
	"START_SERVICE":        CommandStartService,
	"GET_RUSTDESK_ID":      CommandGetIdentity,
	"GRANT_PERMISSIONS":    CommandGrantCapabilities,
	"SET_PASSWORD":         CommandSetCredential,
	"SET_DEVICE_NAME":      CommandSetDeviceName,
}

// String returns the wire name of the command.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Valid reports whether c is one of the declared commands.
func (c Command) Valid() bool {
	_, ok := commandNames[c]
	return ok
}

// Params returns the names of the parameters the command requires.
func (c Command) Params() []string {
	switch c {
	case CommandSetCredential:
		return []string{ParamCredential}
	case CommandSetDeviceName:
		return []string{ParamDeviceName}
	default:
		return nil
	}
}

// ParseCommand accepts a wire name ("full-setup") or a legacy broadcast
// action, with or without its package prefix ("href.cleverty.remote.ENTERPRISE_SETUP").
func ParseCommand(s string) (Command, error) {
	for c, name := range commandNames {
		if s == name {
			return c, nil
		}
	}

	action := s
	if idx := strings.LastIndex(action, "."); idx >= 0 {
		action = action[idx+1:]
	}
	if c, ok := legacyActions[action]; ok {
		return c, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// Trigger is one external request to perform a Command.
// It is immutable once created by NewTrigger.
type Trigger struct {
	ID         string
	Command    Command
	ReceivedAt time.Time
	params     map[string]string
}

// NewTrigger creates a trigger with a fresh ID. The params map is copied.
func NewTrigger(cmd Command, params map[string]string) Trigger {
	return Trigger{
		ID:         uuid.NewString(),
		Command:    cmd,
		ReceivedAt: time.Now(),
		params:     maps.Clone(params),
	}
}

// Param returns the named parameter, or "" when absent.
func (t Trigger) Param(name string) string {
	return t.params[name]
}

// Params returns a copy of all trigger parameters.
func (t Trigger) Params() map[string]string {
	return maps.Clone(t.params)
}
