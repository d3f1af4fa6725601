package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func storeURIs(t *testing.T) map[string]string {
	dir := t.TempDir()
	return map[string]string{
		"file":   "file://" + filepath.Join(dir, "user_de", "provisioner.json"),
		"sqlite": "sqlite://" + filepath.Join(dir, "store.db"),
	}
}

func TestConfigStore_Backends(t *testing.T) {
	for name, uri := range storeURIs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store, err := NewConfigStoreFor(uri, discard)
			require.NoError(t, err)
			defer store.Close()

			_, err = store.GetString(ctx, "missing")
			assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

			require.NoError(t, store.SetString(ctx, "device_name", "workstation-7"))
			v, err := store.GetString(ctx, "device_name")
			require.NoError(t, err)
			assert.Equal(t, "workstation-7", v)

			require.NoError(t, store.SetString(ctx, "device_name", "workstation-8"))
			v, err = store.GetString(ctx, "device_name")
			require.NoError(t, err)
			assert.Equal(t, "workstation-8", v)

			require.NoError(t, store.SetBool(ctx, "flag", true))
			b, err := store.GetBool(ctx, "flag")
			require.NoError(t, err)
			assert.True(t, b)

			_, err = store.GetBool(ctx, "device_name")
			assert.Error(t, err)
		})
	}
}

func TestConfigStore_SurvivesReopen(t *testing.T) {
	for name, uri := range storeURIs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			store, err := NewConfigStoreFor(uri, discard)
			require.NoError(t, err)
			require.NoError(t, SetBootFlag(ctx, store, true))
			require.NoError(t, store.Close())

			reopened, err := NewConfigStoreFor(uri, discard)
			require.NoError(t, err)
			defer reopened.Close()

			enabled, err := BootFlag(ctx, reopened)
			require.NoError(t, err)
			assert.True(t, enabled)
		})
	}
}

func TestBootFlag_AbsentReadsFalse(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"), discard)
	require.NoError(t, err)

	enabled, err := BootFlag(context.Background(), store)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestFileStore_ConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := NewFileStore(path, discard)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.SetBool(context.Background(), interfaces.BootFlagKey, i%2 == 0))
		}(i)
	}
	wg.Wait()

	_, err = store.GetBool(context.Background(), interfaces.BootFlagKey)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path, discard)
	assert.Error(t, err)
}

func TestNewConfigStoreFor_Invalid(t *testing.T) {
	for _, uri := range []string{"redis://localhost/0", "file://", "::"} {
		_, err := NewConfigStoreFor(uri, discard)
		assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI, uri)
	}
}
