package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// NewConfigStoreFor creates a config store from a location URI.
//
// Supported schemes:
//   - file:// - JSON document replaced atomically on write
//   - sqlite:// - SQLite database with a single kv table
func NewConfigStoreFor(locationURI string, log *slog.Logger) (interfaces.ConfigStore, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	path := storePath(u)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in %s", interfaces.ErrInvalidLocationURI, locationURI)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		log.Debug("Creating file config store", slog.String("path", path))
		return NewFileStore(path, log)
	case "sqlite":
		log.Debug("Creating sqlite config store", slog.String("path", path))
		return NewSQLiteStore(path, log)
	default:
		return nil, fmt.Errorf("%w: unsupported store scheme %q", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// storePath accepts both file:///abs/path and file://./relative/path.
func storePath(u *url.URL) string {
	if u.Host == "" {
		return u.Path
	}
	return u.Host + "/" + strings.TrimPrefix(u.Path, "/")
}
