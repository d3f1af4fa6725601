// Package clients provides the HTTP client for a running provisioning agent.
//
// AgentClient is used by the provision CLI when --agent-addr is set, so
// triggers run inside the long-lived agent process rather than in a new one.
package clients
