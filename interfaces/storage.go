package interfaces

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// BootFlagKey is the ConfigStore key holding the start-on-boot flag.
const BootFlagKey = "start_on_boot"

// ConfigStore is a small durable key/value store. Implementations must be
// readable before the user unlocks the device and safe for concurrent use.
type ConfigStore interface {
	// GetString returns the value stored under key, or ErrKeyNotFound.
	GetString(ctx context.Context, key string) (string, error)

	// SetString durably stores value under key.
	SetString(ctx context.Context, key, value string) error

	// GetBool returns the boolean stored under key, or ErrKeyNotFound.
	GetBool(ctx context.Context, key string) (bool, error)

	// SetBool durably stores a boolean under key.
	SetBool(ctx context.Context, key string, value bool) error

	// Name returns identifier for logging.
	Name() string

	// Close releases resources held by the store.
	Close() error
}

// ContentID is a 32-byte SHA-256 hash uniquely identifying a stored report.
type ContentID [32]byte

// ComputeID calculates content ID from data.
func ComputeID(data []byte) ContentID {
	return ContentID(sha256.Sum256(data))
}

// NewContentIDFromHex parses a 64 character hex string.
func NewContentIDFromHex(source string) (ContentID, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return ContentID{}, errors.New("invalid content ID length: hex string must be 64 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return ContentID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	var id ContentID
	copy(id[:], raw)
	return id, nil
}

// String returns hex representation.
func (id ContentID) String() string {
	return hex.EncodeToString(id[:])
}

// ReportSink stores setup reports by content address.
type ReportSink interface {
	// Fetch retrieves a report by content ID.
	Fetch(ctx context.Context, id ContentID) ([]byte, error)

	// Store saves a report and returns its content ID.
	Store(ctx context.Context, data []byte) (ContentID, error)

	// Available checks if the sink is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this sink.
	LocationURI() string
}
