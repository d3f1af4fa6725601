/*
Package api defines the wire types of the local provisioning API served by
package httpserver and consumed by package clients.

Triggers are posted to /api/trigger/{command} with an optional JSON body
carrying parameters. Queries are read from /api/query/{target} and return
an array of flat string objects.
*/
package api
