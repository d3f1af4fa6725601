package reports

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestMulti_Available(t *testing.T) {
	tests := []struct {
		name     string
		sinks    []bool
		expected bool
	}{
		{"all available", []bool{true, true}, true},
		{"some available", []bool{false, true, false}, true},
		{"none available", []bool{false, false}, false},
		{"no sinks", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sinks []interfaces.ReportSink
			for _, available := range tt.sinks {
				m := &MockSink{SinkName: "mock"}
				m.On("Available", mock.Anything).Return(available).Maybe()
				sinks = append(sinks, m)
			}

			assert.Equal(t, tt.expected, NewMulti(sinks, discard).Available(context.Background()))
		})
	}
}

func TestMulti_StoreSkipsUnavailableAndToleratesFailures(t *testing.T) {
	data := []byte(`{"identity":"123456789"}`)
	id := interfaces.ComputeID(data)

	down := &MockSink{SinkName: "down"}
	down.On("Available", mock.Anything).Return(false)

	failing := &MockSink{SinkName: "failing"}
	failing.On("Available", mock.Anything).Return(true)
	failing.On("Store", mock.Anything, data).Return(id, errors.New("bucket gone"))

	ok := &MockSink{SinkName: "ok"}
	ok.On("Available", mock.Anything).Return(true)
	ok.On("Store", mock.Anything, data).Return(id, nil)

	got, err := NewMulti([]interfaces.ReportSink{down, failing, ok}, discard).Store(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	down.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
	failing.AssertExpectations(t)
	ok.AssertExpectations(t)
}

func TestMulti_StoreAllFail(t *testing.T) {
	data := []byte("report")

	failing := &MockSink{SinkName: "failing"}
	failing.On("Available", mock.Anything).Return(true)
	failing.On("Store", mock.Anything, data).Return(interfaces.ContentID{}, errors.New("denied"))

	_, err := NewMulti([]interfaces.ReportSink{failing}, discard).Store(context.Background(), data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
}

func TestMulti_FetchFirstHit(t *testing.T) {
	id := interfaces.ComputeID([]byte("report"))

	miss := &MockSink{SinkName: "miss"}
	miss.On("Available", mock.Anything).Return(true)
	miss.On("Fetch", mock.Anything, id).Return(nil, interfaces.ErrContentNotFound)

	hit := &MockSink{SinkName: "hit"}
	hit.On("Available", mock.Anything).Return(true)
	hit.On("Fetch", mock.Anything, id).Return([]byte("report"), nil)

	last := &MockSink{SinkName: "last"}

	data, err := NewMulti([]interfaces.ReportSink{miss, hit, last}, discard).Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []byte("report"), data)
	last.AssertNotCalled(t, "Available", mock.Anything)
}

func TestMulti_FetchNothingAvailable(t *testing.T) {
	down := &MockSink{SinkName: "down"}
	down.On("Available", mock.Anything).Return(false)

	_, err := NewMulti([]interfaces.ReportSink{down}, discard).Fetch(context.Background(), interfaces.ContentID{})
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}
