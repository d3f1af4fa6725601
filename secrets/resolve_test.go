package secrets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestResolveLiteralAndEmpty(t *testing.T) {
	r := NewResolver(discard)

	v, err := r.Resolve(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, v)

	v, err = r.Resolve(context.Background(), "Cleverty!2024")
	require.NoError(t, err)
	require.Equal(t, "Cleverty!2024", v)
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("PROVISION_TEST_SECRET", "from-env")
	r := NewResolver(discard)

	v, err := r.Resolve(context.Background(), "env:PROVISION_TEST_SECRET")
	require.NoError(t, err)
	require.Equal(t, "from-env", v)

	_, err = r.Resolve(context.Background(), "env:PROVISION_TEST_UNSET_VARIABLE")
	require.ErrorIs(t, err, ErrUnresolved)
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credential")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))

	r := NewResolver(discard)
	v, err := r.Resolve(context.Background(), "file:"+path)
	require.NoError(t, err)
	require.Equal(t, "from-file", v)

	_, err = r.Resolve(context.Background(), "file:"+filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, ErrUnresolved)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o600))
	_, err = r.Resolve(context.Background(), "file:"+empty)
	require.ErrorIs(t, err, ErrUnresolved)
}

func TestParseVaultRef(t *testing.T) {
	vr, err := parseVaultRef("vault://vault.internal:8200/secret/endpoints/default?field=password")
	require.NoError(t, err)
	require.Equal(t, "https://vault.internal:8200", vr.address)
	require.Equal(t, "secret", vr.mount)
	require.Equal(t, "endpoints/default", vr.path)
	require.Equal(t, "password", vr.field)

	vr, err = parseVaultRef("vault://127.0.0.1:8200/kv/device?scheme=http")
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8200", vr.address)
	require.Equal(t, defaultField, vr.field)

	for _, bad := range []string{
		"vault:///secret/path",
		"vault://host:8200/secret",
		"vault://host:8200/",
		"vault://host:8200/secret/path?scheme=ftp",
	} {
		_, err := parseVaultRef(bad)
		require.ErrorIs(t, err, ErrUnresolved, bad)
	}
}

func newVaultServer(t *testing.T, token string, secrets map[string]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != token {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		data, ok := secrets[strings.TrimPrefix(r.URL.Path, "/v1/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"data": data,
				"metadata": map[string]any{
					"created_time":  "2024-05-01T10:00:00Z",
					"deletion_time": "",
					"destroyed":     false,
					"version":       3,
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveVault(t *testing.T) {
	srv := newVaultServer(t, "test-token", map[string]map[string]any{
		"secret/data/endpoints/default": {"password": "from-vault", "count": 3},
	})
	host := strings.TrimPrefix(srv.URL, "http://")

	r := NewResolver(discard)
	r.getenv = func(name string) string {
		if name == "VAULT_TOKEN" {
			return "test-token"
		}
		return ""
	}

	v, err := r.Resolve(context.Background(), "vault://"+host+"/secret/endpoints/default?field=password&scheme=http")
	require.NoError(t, err)
	require.Equal(t, "from-vault", v)

	// Missing field, non-string field and missing secret.
	_, err = r.Resolve(context.Background(), "vault://"+host+"/secret/endpoints/default?field=other&scheme=http")
	require.ErrorIs(t, err, ErrUnresolved)
	_, err = r.Resolve(context.Background(), "vault://"+host+"/secret/endpoints/default?field=count&scheme=http")
	require.ErrorIs(t, err, ErrUnresolved)
	_, err = r.Resolve(context.Background(), "vault://"+host+"/secret/endpoints/absent?field=password&scheme=http")
	require.ErrorIs(t, err, ErrUnresolved)
}

func TestResolveVaultDenied(t *testing.T) {
	srv := newVaultServer(t, "test-token", nil)
	host := strings.TrimPrefix(srv.URL, "http://")

	r := NewResolver(discard)
	r.getenv = func(string) string { return "wrong" }

	_, err := r.Resolve(context.Background(), "vault://"+host+"/secret/endpoints/default?scheme=http")
	require.ErrorIs(t, err, ErrUnresolved)
}
