// Package systemd implements the platform ports for Linux endpoints where the
// remote-access engine runs as a systemd unit. The unit is driven over the
// system D-Bus.
package systemd
