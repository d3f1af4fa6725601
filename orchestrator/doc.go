/*
Package orchestrator turns provisioning triggers into ordered sequences of
privileged operations and engine configuration calls.

# Operations

One method per trigger command:

  - FullSetup: grant batch, boot flag, launch, wait for the service, register
    input control, wait for the binding, read identity
  - EnableInputControl, EnableStartOnBoot, GrantCapabilities: one step of the above
  - StartService: allow background capture, then launch without waiting
  - GetIdentity: read-only, never fails, maps to the pending/error sentinels
  - SetCredential, SetDeviceName: reject empty input before touching the engine

Every operation is best effort. A failed step is logged and recorded in the
result, and the next step still runs. No operation panics or aborts the agent
because of a device-side failure; callers poll GetIdentity or the status surface
for progress.

# Ordering

FullSetup launches the background service and waits for it before registering
input control. Registering against a process that is not running is silently
ignored by some OS versions, so the order is a hard rule. If the service never
comes up the registration step is recorded as failed with ErrServiceNotRunning.

# Static configuration

Initializer applies the deployment's StaticConfig to the engine at most once per
process. Dispatch ensures it before every trigger, and concurrent callers block
on a mutex until the first one finishes. A failed option write leaves the
initializer unset so that the next trigger retries.

# Dispatch

	orch := orchestrator.New(cfg, deps, logger)
	res := orch.Dispatch(ctx, interfaces.NewTrigger(interfaces.CommandFullSetup, nil))
	fmt.Println(res.Value) // identity, "pending" or "error"

Dispatch switches over every interfaces.Command. Unknown values produce a
result carrying ErrUnknownCommand.
*/
package orchestrator
