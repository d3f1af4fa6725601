package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder("test", reg)
	require.NoError(t, err)

	r.ObserveTrigger(interfaces.CommandFullSetup, true)
	r.ObserveTrigger(interfaces.CommandFullSetup, false)
	r.ObserveGrants(interfaces.GrantBatchResult{Results: []interfaces.GrantResult{
		{Permission: "a", Succeeded: true},
		{Permission: "b", Err: errors.New("denied")},
		{Permission: "c", Succeeded: true},
	}, Operations: []interfaces.GrantResult{
		{Permission: "op:overlay", Err: errors.New("unknown op")},
	}})
	r.ObserveStepFailure("wait_service")
	r.SetInitialized(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.triggers.WithLabelValues("full-setup", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.triggers.WithLabelValues("full-setup", "failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.grants.WithLabelValues("succeeded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.grants.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stepFailures.WithLabelValues("wait_service")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.initialized))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveTrigger(interfaces.CommandGetIdentity, true)
		r.ObserveStepFailure("launch")
		r.ObserveGrants(interfaces.GrantBatchResult{})
		r.SetInitialized(true)
	})
}

func TestMetricsServer_Handler(t *testing.T) {
	srv, err := New("endpoint_provisioner", "127.0.0.1:0")
	require.NoError(t, err)
	srv.Recorder.ObserveTrigger(interfaces.CommandStartService, true)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `endpoint_provisioner_triggers_total{command="start-service",outcome="ok"} 1`)
}
