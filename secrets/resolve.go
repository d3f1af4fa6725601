package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
)

var ErrUnresolved = errors.New("secret reference could not be resolved")

const (
	prefixEnv   = "env:"
	prefixFile  = "file:"
	prefixVault = "vault://"

	defaultField = "value"
	vaultTimeout = 30 * time.Second
)

// Resolver turns secret references into values.
type Resolver struct {
	log *slog.Logger

	// Swapped in tests.
	getenv   func(string) string
	readFile func(string) ([]byte, error)
}

func NewResolver(log *slog.Logger) *Resolver {
	return &Resolver{
		log:      log,
		getenv:   os.Getenv,
		readFile: os.ReadFile,
	}
}

// Resolve returns the value ref points to. An empty reference resolves to
// the empty string.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	switch {
	case ref == "":
		return "", nil

	case strings.HasPrefix(ref, prefixEnv):
		name := strings.TrimPrefix(ref, prefixEnv)
		v := r.getenv(name)
		if v == "" {
			return "", fmt.Errorf("%w: environment variable %q is empty", ErrUnresolved, name)
		}
		return v, nil

	case strings.HasPrefix(ref, prefixFile):
		path := strings.TrimPrefix(ref, prefixFile)
		data, err := r.readFile(path)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnresolved, err)
		}
		v := strings.TrimRight(string(data), "\r\n")
		if v == "" {
			return "", fmt.Errorf("%w: file %s is empty", ErrUnresolved, path)
		}
		return v, nil

	case strings.HasPrefix(ref, prefixVault):
		return r.resolveVault(ctx, ref)

	default:
		return ref, nil
	}
}

type vaultRef struct {
	address string
	mount   string
	path    string
	field   string
}

func parseVaultRef(ref string) (*vaultRef, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolved, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: vault reference has no host", ErrUnresolved)
	}

	parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: vault reference must name a mount and a path", ErrUnresolved)
	}

	q := u.Query()
	scheme := q.Get("scheme")
	if scheme == "" {
		scheme = "https"
	}
	if scheme != "https" && scheme != "http" {
		return nil, fmt.Errorf("%w: unsupported vault scheme %q", ErrUnresolved, scheme)
	}
	field := q.Get("field")
	if field == "" {
		field = defaultField
	}

	return &vaultRef{
		address: scheme + "://" + u.Host,
		mount:   parts[0],
		path:    parts[1],
		field:   field,
	}, nil
}

func (r *Resolver) resolveVault(ctx context.Context, ref string) (string, error) {
	vr, err := parseVaultRef(ref)
	if err != nil {
		return "", err
	}

	config := api.DefaultConfig()
	config.Address = vr.address
	config.Timeout = vaultTimeout

	client, err := api.NewClient(config)
	if err != nil {
		return "", fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token := r.getenv(api.EnvVaultToken); token != "" {
		client.SetToken(token)
	}

	secret, err := client.KVv2(vr.mount).Get(ctx, vr.path)
	if err != nil {
		r.log.Error("Failed to read secret from Vault",
			slog.String("address", vr.address),
			slog.String("mount", vr.mount),
			slog.String("path", vr.path),
			"err", err)
		return "", fmt.Errorf("%w: %w", ErrUnresolved, err)
	}

	raw, ok := secret.Data[vr.field]
	if !ok {
		return "", fmt.Errorf("%w: field %q not present in %s/%s", ErrUnresolved, vr.field, vr.mount, vr.path)
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: field %q in %s/%s is not a non-empty string", ErrUnresolved, vr.field, vr.mount, vr.path)
	}

	r.log.Debug("Resolved secret from Vault",
		slog.String("mount", vr.mount),
		slog.String("path", vr.path),
		slog.String("field", vr.field))

	return value, nil
}
