// Package readiness waits for observable conditions such as "the background
// service is running" or "input control is bound".
//
// Poller re-evaluates the condition with exponential backoff until it holds or
// the wait budget is spent. FixedDelay reproduces the older behaviour of
// sleeping a fixed amount and carrying on, for endpoints that expose no signal
// to poll.
package readiness
