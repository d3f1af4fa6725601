package interfaces

import (
	"time"
)

// CapabilityPermission names one OS-level capability grant.
type CapabilityPermission string

// PermissionSetVersion identifies the revision of DefaultPermissions.
const PermissionSetVersion = 2

// DefaultPermissions is the fixed list of runtime permissions granted during setup.
var DefaultPermissions = []CapabilityPermission{
	// storage
	"android.permission.READ_EXTERNAL_STORAGE",
	"android.permission.WRITE_EXTERNAL_STORAGE",
	// audio
	"android.permission.RECORD_AUDIO",
	// overlay
	"android.permission.SYSTEM_ALERT_WINDOW",
	// battery
	"android.permission.REQUEST_IGNORE_BATTERY_OPTIMIZATIONS",
	// notifications (Android 13+)
	"android.permission.POST_NOTIFICATIONS",
	// secure settings, needed to register the input-control service
	"android.permission.WRITE_SECURE_SETTINGS",
	// screen capture without consent (platform-signed builds)
	"android.permission.CAPTURE_VIDEO_OUTPUT",
	"android.permission.CAPTURE_SECURE_VIDEO_OUTPUT",
	"android.permission.READ_FRAME_BUFFER",
}

// GrantResult is the outcome of one grant attempt.
type GrantResult struct {
	Permission CapabilityPermission
	Succeeded  bool
	ExitCode   int
	Err        error
	Duration   time.Duration
}

// GrantBatchResult holds one GrantResult per requested permission, in request
// order. Operations holds the non-permission elevated operations run with the
// batch, if any.
type GrantBatchResult struct {
	Results    []GrantResult
	Operations []GrantResult
}

// Len returns the number of attempted permission grants.
func (b GrantBatchResult) Len() int {
	return len(b.Results)
}

// All returns the permission results followed by the operations.
func (b GrantBatchResult) All() []GrantResult {
	out := make([]GrantResult, 0, len(b.Results)+len(b.Operations))
	out = append(out, b.Results...)
	return append(out, b.Operations...)
}

// Succeeded returns the permissions whose grant succeeded.
func (b GrantBatchResult) Succeeded() []CapabilityPermission {
	var out []CapabilityPermission
	for _, r := range b.Results {
		if r.Succeeded {
			out = append(out, r.Permission)
		}
	}
	return out
}

// Failed returns the failed entries, permissions first, then operations.
func (b GrantBatchResult) Failed() []GrantResult {
	var out []GrantResult
	for _, r := range b.All() {
		if !r.Succeeded {
			out = append(out, r)
		}
	}
	return out
}
