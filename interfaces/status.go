package interfaces

// Status is the live, derived state of the endpoint. It is computed on
// demand and never stored.
type Status struct {
	ServiceRunning    bool
	CaptureReady      bool
	InputControlReady bool
	Identity          RemoteIdentity
}
