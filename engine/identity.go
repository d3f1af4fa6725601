package engine

import (
	"context"
	"strings"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// ReadIdentity never fails: an empty identity reads as IdentityPending and a
// failed read as IdentityError.
func ReadIdentity(ctx context.Context, rc interfaces.RemoteConfig) interfaces.RemoteIdentity {
	id, err := rc.GetIdentity(ctx)
	if err != nil {
		return interfaces.IdentityError
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return interfaces.IdentityPending
	}
	return interfaces.RemoteIdentity(id)
}
