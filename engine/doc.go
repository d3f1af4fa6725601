// Package engine implements interfaces.RemoteConfig on top of the remote-access
// engine's on-disk configuration directory.
//
// The engine keeps three TOML documents in its config directory, all named after
// the application:
//
//	<App>.toml        top-level id and password (identity and credential)
//	<App>2.toml       [options] table, synced options re-read on reconnect
//	<App>_local.toml  [options] table, device-local options
//
// ConfigDir edits those documents in place. Keys it does not manage are kept
// untouched and every write replaces the file atomically. Starting the network
// service and restarting the connection are delegated to a Controller, usually
// the platform's service launcher.
//
// ReadIdentity maps the raw identity read onto the pending and error sentinels
// used by the orchestrator and the status facade.
package engine
