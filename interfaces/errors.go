package interfaces

import "errors"

var (
	// ErrCommandFailed is returned when an elevated command exits non-zero.
	ErrCommandFailed = errors.New("elevated command failed")

	// ErrCommandTimeout is returned when an elevated command exceeds its timeout.
	ErrCommandTimeout = errors.New("elevated command timed out")

	// ErrEngineNotReady is returned when the remote-access engine cannot serve calls yet.
	ErrEngineNotReady = errors.New("remote-access engine not ready")

	// ErrInvalidOptionKey is returned for empty or unsupported option keys.
	ErrInvalidOptionKey = errors.New("invalid option key")

	// ErrInvalidInput is returned when a trigger parameter is empty or malformed.
	// No side effects happen when it is returned.
	ErrInvalidInput = errors.New("invalid input")

	// ErrKeyNotFound is returned by ConfigStore for absent keys.
	ErrKeyNotFound = errors.New("key not found")

	// ErrServiceNotRunning is returned when a step requires the background service
	// process and it is not alive.
	ErrServiceNotRunning = errors.New("background service not running")

	// ErrNotReady is returned by a Waiter when its condition did not hold in time.
	ErrNotReady = errors.New("condition not ready before timeout")

	// ErrUnknownCommand is returned for trigger names that match no Command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrContentNotFound is returned when a report is not present in a sink.
	ErrContentNotFound = errors.New("content not found")

	// ErrInvalidLocationURI is returned when a store or sink URI is malformed or unsupported.
	ErrInvalidLocationURI = errors.New("invalid location URI")
)
