package storage

import (
	"context"
	"errors"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// BootFlag reports whether the agent should start the service on boot.
// A flag that was never written reads as false.
func BootFlag(ctx context.Context, store interfaces.ConfigStore) (bool, error) {
	enabled, err := store.GetBool(ctx, interfaces.BootFlagKey)
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return false, nil
	}
	return enabled, err
}

func SetBootFlag(ctx context.Context, store interfaces.ConfigStore, enabled bool) error {
	return store.SetBool(ctx, interfaces.BootFlagKey, enabled)
}
