/*
Package httpserver serves the local provisioning API.

Device-management tooling on the endpoint posts triggers and reads status
through it instead of broadcasting intents or querying a content provider:

	POST /api/trigger/{command}   run a command, body {"params":{...}} optional
	GET  /api/query/{target}      read id, status or config rows

Commands accept their wire names (full-setup) and the legacy broadcast
action names (href.cleverty.remote.ENTERPRISE_SETUP). The server binds to
loopback by default. It has no authentication of its own, so exposing it
beyond the device hands provisioning control to the network.

Health endpoints /livez, /readyz, /drain and /undrain follow the usual
load-balancer contract. pprof is mounted under /debug when enabled.
*/
package httpserver
