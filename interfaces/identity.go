package interfaces

// RemoteIdentity is the identifier the remote-access backend assigned to this endpoint.
type RemoteIdentity string

const (
	// IdentityPending is reported while the backend has not assigned an identity yet.
	IdentityPending RemoteIdentity = "pending"
	// IdentityError is reported when the identity could not be read.
	IdentityError RemoteIdentity = "error"
)

// IsAssigned reports whether id holds a real backend-assigned value.
func (id RemoteIdentity) IsAssigned() bool {
	return id != "" && id != IdentityPending && id != IdentityError
}

func (id RemoteIdentity) String() string {
	return string(id)
}
