package reports

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_StoreFetch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	sink, err := NewFileSink(dir, discard)
	require.NoError(t, err)
	require.True(t, sink.Available(context.Background()))

	data := []byte(`{"steps":[]}`)
	id, err := sink.Store(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ComputeID(data), id)
	assert.FileExists(t, filepath.Join(dir, id.String()+".json"))

	again, err := sink.Store(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got, err := sink.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileSink_FetchMissing(t *testing.T) {
	sink, err := NewFileSink(t.TempDir(), discard)
	require.NoError(t, err)

	_, err = sink.Fetch(context.Background(), interfaces.ComputeID([]byte("nope")))
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}

func TestNewSinkFor(t *testing.T) {
	dir := t.TempDir()

	sink, err := NewSinkFor("file://"+dir, discard)
	require.NoError(t, err)
	assert.Equal(t, "file://"+dir, sink.LocationURI())

	sink, err = NewSinkFor("s3://AKID:SECRET@reports/devices?region=eu-west-1&endpoint=http://127.0.0.1:9000&path_style=true", discard)
	require.NoError(t, err)
	assert.Equal(t, "s3-reports", sink.Name())
	assert.NotContains(t, sink.LocationURI(), "SECRET")

	_, err = NewSinkFor("ipfs://localhost:5001", discard)
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)

	_, err = NewSinkFor("s3:///no-bucket", discard)
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}

func TestNewMultiSink(t *testing.T) {
	dir := t.TempDir()

	sink, err := NewMultiSink([]string{"bogus://x", "file://" + dir}, discard)
	require.NoError(t, err)
	assert.IsType(t, &FileSink{}, sink)

	sink, err = NewMultiSink([]string{"file://" + filepath.Join(dir, "a"), "file://" + filepath.Join(dir, "b")}, discard)
	require.NoError(t, err)
	assert.IsType(t, &Multi{}, sink)

	_, err = NewMultiSink([]string{"bogus://x"}, discard)
	assert.Error(t, err)
}
