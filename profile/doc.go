// Package profile loads deployment profiles: the YAML document that binds an
// endpoint to its remote-access servers, engine location, platform adapters
// and provisioning timeouts.
//
// Default returns the profile of the stock Android deployment. Load overlays
// a YAML file on top of it, so a profile only lists what differs.
package profile
