package endpointcommon

import (
	"context"

	"github.com/cleverty/endpoint-provisioner/api"
	"github.com/cleverty/endpoint-provisioner/api/clients"
	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// Local runs triggers and queries in-process with the same semantics as a
// running agent.
type Local struct {
	Endpoint *Endpoint
}

var _ clients.AgentAPI = (*Local)(nil)

func (l *Local) Trigger(ctx context.Context, command string, params map[string]string) (*api.TriggerResponse, error) {
	cmd, err := interfaces.ParseCommand(command)
	if err != nil {
		return nil, err
	}
	res := l.Endpoint.Orchestrator.Dispatch(ctx, interfaces.NewTrigger(cmd, params))
	return api.NewTriggerResponse(res)
}

func (l *Local) Query(ctx context.Context, target string) (api.QueryResponse, error) {
	return api.QueryResponse(l.Endpoint.Status.Query(ctx, target)), nil
}
