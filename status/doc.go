// Package status answers read-only queries about the endpoint: whether the
// background service runs, whether capture and input control are ready, the
// remote identity, and a whitelisted slice of the engine configuration.
//
// Queries never mutate state and never fail. A probe that errors or exceeds
// its timeout reads as false, and an unknown query target yields no rows.
package status
