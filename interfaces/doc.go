// Package interfaces defines the core types, ports and sentinel errors of the
// endpoint provisioner, separating contracts from their implementations.
//
// # Trigger Commands
//
// Command is a closed set of provisioning actions an external controller can
// request (full setup, input-control registration, start-on-boot, service
// start, identity read, capability grants, credential and device name
// updates). Trigger wraps a Command with its string parameters.
//
// # Ports
//
//   - PrivilegedExecutor: runs one elevated shell command with a bounded wait
//   - ConfigStore: small durable key/value store readable before user unlock
//   - RemoteConfig: narrow configuration interface into the remote-access engine
//   - ServiceLauncher, InputControl, CaptureProbe: OS capability primitives
//   - Waiter: readiness polling used between order-dependent steps
//   - ReportSink: optional destination for setup reports
//
// # Sentinels
//
// Remote identities use the distinct sentinel values IdentityPending and
// IdentityError so that "not yet assigned" and "read failed" can never be
// confused with each other or with an empty string.
package interfaces
