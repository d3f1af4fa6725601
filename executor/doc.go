// Package executor runs privileged, OS-level capability grants.
//
// RootExecutor executes each command in a fresh elevated shell (su by default)
// with its own timeout, so a hung command can only fail its own entry.
// Granter builds the grant commands for one package and collects a
// GrantBatchResult with exactly one entry per requested permission, in request
// order, without ever stopping at a failing entry.
//
// Command format:
//
//	pm grant <package> <permission>
//	dumpsys deviceidle whitelist +<package>
//	appops set <package> SYSTEM_ALERT_WINDOW allow
//	appops set <package> PROJECT_MEDIA allow
package executor
