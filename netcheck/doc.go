// Package netcheck resolves the rendezvous, relay and API server addresses
// of a deployment profile so misconfigured or unreachable names show up
// before an endpoint is provisioned against them.
package netcheck
