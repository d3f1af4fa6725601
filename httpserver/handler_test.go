package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cleverty/endpoint-provisioner/api"
	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/cleverty/endpoint-provisioner/orchestrator"
	"github.com/cleverty/endpoint-provisioner/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordingDispatcher struct {
	mu       sync.Mutex
	triggers []interfaces.Trigger
	result   func(t interfaces.Trigger) orchestrator.Result
}

func (d *recordingDispatcher) Dispatch(_ context.Context, t interfaces.Trigger) orchestrator.Result {
	d.mu.Lock()
	d.triggers = append(d.triggers, t)
	d.mu.Unlock()
	if d.result != nil {
		return d.result(t)
	}
	return orchestrator.Result{TriggerID: t.ID, Command: t.Command, Value: orchestrator.ValueOK}
}

type staticQuerier map[string][]status.Row

func (q staticQuerier) Query(_ context.Context, target string) []status.Row {
	return q[target]
}

func newTestServer(t *testing.T, d Dispatcher, q Querier) *httptest.Server {
	t.Helper()
	srv := New(&HTTPServerConfig{Log: discard}, NewHandler(d, q, discard))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postTrigger(t *testing.T, ts *httptest.Server, command, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/trigger/"+command, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHandleTriggerDispatchesParsedCommand(t *testing.T) {
	d := &recordingDispatcher{}
	ts := newTestServer(t, d, staticQuerier{})

	resp, body := postTrigger(t, ts, "set-device-name", `{"params":{"device_name":"front-desk"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.TriggerResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.OK)
	assert.Equal(t, "set-device-name", out.Command)
	assert.Equal(t, orchestrator.ValueOK, out.Value)

	require.Len(t, d.triggers, 1)
	assert.Equal(t, interfaces.CommandSetDeviceName, d.triggers[0].Command)
	assert.Equal(t, "front-desk", d.triggers[0].Param(interfaces.ParamDeviceName))
	assert.Equal(t, d.triggers[0].ID, out.TriggerID)
}

func TestHandleTriggerAcceptsLegacyActionAndEmptyBody(t *testing.T) {
	d := &recordingDispatcher{}
	ts := newTestServer(t, d, staticQuerier{})

	resp, _ := postTrigger(t, ts, "href.cleverty.remote.ENTERPRISE_SETUP", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, d.triggers, 1)
	assert.Equal(t, interfaces.CommandFullSetup, d.triggers[0].Command)
}

func TestHandleTriggerRejectsBadRequests(t *testing.T) {
	d := &recordingDispatcher{}
	ts := newTestServer(t, d, staticQuerier{})

	resp, body := postTrigger(t, ts, "reboot", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "unknown command")

	resp, _ = postTrigger(t, ts, "get-identity", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postTrigger(t, ts, "get-identity", `{"params":{"x":"`+strings.Repeat("a", maxBodySize)+`"}}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	assert.Empty(t, d.triggers)
}

func TestHandleTriggerReportsFailures(t *testing.T) {
	d := &recordingDispatcher{result: func(t interfaces.Trigger) orchestrator.Result {
		switch t.Command {
		case interfaces.CommandSetCredential:
			return orchestrator.Result{TriggerID: t.ID, Command: t.Command, Value: orchestrator.ValueFailed,
				Err: fmt.Errorf("%w: empty credential", interfaces.ErrInvalidInput)}
		default:
			batch := interfaces.GrantBatchResult{Results: []interfaces.GrantResult{
				{Permission: "android.permission.RECORD_AUDIO", Succeeded: true},
				{Permission: "android.permission.READ_FRAME_BUFFER", ExitCode: 255, Err: interfaces.ErrCommandFailed},
			}}
			return orchestrator.Result{TriggerID: t.ID, Command: t.Command, Value: orchestrator.ValueFailed,
				Err: interfaces.ErrCommandFailed, Grants: &batch}
		}
	}}
	ts := newTestServer(t, d, staticQuerier{})

	resp, body := postTrigger(t, ts, "set-credential", `{"params":{"credential":""}}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out api.TriggerResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.OK)
	assert.Equal(t, orchestrator.ValueFailed, out.Value)

	resp, body = postTrigger(t, ts, "grant-capabilities", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = api.TriggerResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.OK)
	require.Len(t, out.Grants, 2)
	assert.True(t, out.Grants[0].Succeeded)
	assert.Equal(t, 255, out.Grants[1].ExitCode)
	assert.NotEmpty(t, out.Grants[1].Error)
}

func TestHandleQuery(t *testing.T) {
	q := staticQuerier{
		"status": {{
			{Key: "service_running", Value: "1"},
			{Key: "media_ready", Value: "0"},
			{Key: "input_ready", Value: "1"},
			{Key: "id", Value: "123456789"},
		}},
	}
	ts := newTestServer(t, &recordingDispatcher{}, q)

	resp, err := http.Get(ts.URL + "/api/query/status")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `[{"service_running":"1","media_ready":"0","input_ready":"1","id":"123456789"}]`, strings.TrimSpace(string(body)))

	resp, err = http.Get(ts.URL + "/api/query/secrets")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, &recordingDispatcher{}, staticQuerier{})

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	code, _ := get("/livez")
	assert.Equal(t, http.StatusOK, code)

	code, _ = get("/readyz")
	assert.Equal(t, http.StatusOK, code)

	_, body := get("/drain")
	assert.Contains(t, body, "draining")
	code, _ = get("/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	_, body = get("/drain")
	assert.Contains(t, body, "already draining")

	_, body = get("/undrain")
	assert.Equal(t, `{"status":"ready"}`, body)
	code, _ = get("/readyz")
	assert.Equal(t, http.StatusOK, code)

	resp, err := http.Post(ts.URL+"/livez", "application/json", bytes.NewReader(nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
