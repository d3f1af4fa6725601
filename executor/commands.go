package executor

import (
	"fmt"
	"regexp"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

var (
	packageNamePattern    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)+$`)
	permissionNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.]*$`)
)

// ValidatePackageName rejects anything that is not a plain application ID.
// Package names are interpolated into shell commands.
func ValidatePackageName(pkg string) error {
	if !packageNamePattern.MatchString(pkg) {
		return fmt.Errorf("%w: package name %q", interfaces.ErrInvalidInput, pkg)
	}
	return nil
}

func validatePermission(perm interfaces.CapabilityPermission) error {
	if !permissionNamePattern.MatchString(string(perm)) {
		return fmt.Errorf("%w: permission %q", interfaces.ErrInvalidInput, perm)
	}
	return nil
}

func grantCommand(pkg string, perm interfaces.CapabilityPermission) string {
	return fmt.Sprintf("pm grant %s %s", pkg, perm)
}

func deviceIdleWhitelistCommand(pkg string) string {
	return fmt.Sprintf("dumpsys deviceidle whitelist +%s", pkg)
}

func appOpsAllowCommand(pkg, op string) string {
	return fmt.Sprintf("appops set %s %s allow", pkg, op)
}
