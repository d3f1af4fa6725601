package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/cleverty/endpoint-provisioner/api"
	"github.com/cleverty/endpoint-provisioner/httpserver"
	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/cleverty/endpoint-provisioner/orchestrator"
	"github.com/cleverty/endpoint-provisioner/status"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type fakeAgent struct {
	got []interfaces.Trigger
}

func (f *fakeAgent) Dispatch(_ context.Context, t interfaces.Trigger) orchestrator.Result {
	f.got = append(f.got, t)
	if t.Command == interfaces.CommandGetIdentity {
		return orchestrator.Result{TriggerID: t.ID, Command: t.Command, Value: "123456789"}
	}
	if t.Command == interfaces.CommandStartService {
		return orchestrator.Result{TriggerID: t.ID, Command: t.Command, Value: orchestrator.ValueFailed, Err: interfaces.ErrServiceNotRunning}
	}
	return orchestrator.Result{TriggerID: t.ID, Command: t.Command, Value: orchestrator.ValueOK}
}

func (f *fakeAgent) Query(_ context.Context, target string) []status.Row {
	if target == "id" {
		return []status.Row{{{Key: "id", Value: "123456789"}, {Key: "timestamp", Value: "1700000000000"}}}
	}
	return nil
}

func run(t *testing.T, agent *fakeAgent, args ...string) (string, error) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httpserver.New(&httpserver.HTTPServerConfig{Log: log}, httpserver.NewHandler(agent, agent, log))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"provision", "--agent-addr", ts.URL}, args...))
	return out.String(), err
}

func TestTriggerThroughAgent(t *testing.T) {
	agent := &fakeAgent{}

	out, err := run(t, agent, "get-identity")
	require.NoError(t, err)
	var resp api.TriggerResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "123456789", resp.Value)

	_, err = run(t, agent, "set-device-name", "--name", "reception")
	require.NoError(t, err)
	_, err = run(t, agent, "set-credential", "--credential", "hunter2")
	require.NoError(t, err)

	require.Len(t, agent.got, 3)
	require.Equal(t, "reception", agent.got[1].Param(interfaces.ParamDeviceName))
	require.Equal(t, "hunter2", agent.got[2].Param(interfaces.ParamCredential))
}

func TestCredentialReferenceIsResolvedBeforeSending(t *testing.T) {
	t.Setenv("PROVISION_TEST_CREDENTIAL", "from-env")
	agent := &fakeAgent{}

	_, err := run(t, agent, "set-credential", "--credential", "env:PROVISION_TEST_CREDENTIAL")
	require.NoError(t, err)
	require.Equal(t, "from-env", agent.got[0].Param(interfaces.ParamCredential))
}

func TestFailedTriggerExitsNonZero(t *testing.T) {
	out, err := run(t, &fakeAgent{}, "start-service")
	require.Error(t, err)

	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	require.Equal(t, 1, exit.ExitCode())
	require.Contains(t, out, `"ok": false`)
}

func TestQueryThroughAgent(t *testing.T) {
	out, err := run(t, &fakeAgent{}, "query", "id")
	require.NoError(t, err)

	var rows api.QueryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	ts, _ := rows[0].Get("timestamp")
	require.Equal(t, "1700000000000", ts)

	_, err = run(t, &fakeAgent{}, "query")
	require.Error(t, err)
}

func TestShowProfile(t *testing.T) {
	out, err := run(t, &fakeAgent{}, "show-profile")
	require.NoError(t, err)
	require.Contains(t, out, "rendezvous: rustdesk.cleverty.app")
	require.Contains(t, out, "approve_mode: password")
}
