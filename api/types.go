package api

import (
	"encoding/json"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/cleverty/endpoint-provisioner/orchestrator"
	"github.com/cleverty/endpoint-provisioner/status"
)

// TriggerRequest is the optional body of a trigger call.
type TriggerRequest struct {
	Params map[string]string `json:"params,omitempty"`
}

// TriggerResponse is the outcome of one trigger.
type TriggerResponse struct {
	TriggerID string `json:"trigger_id"`
	Command   string `json:"command"`
	Value     string `json:"value"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`

	Grants []Grant         `json:"grants,omitempty"`
	Report json.RawMessage `json:"report,omitempty"`
}

type Grant struct {
	Permission string `json:"permission"`
	Succeeded  bool   `json:"succeeded"`
	ExitCode   int    `json:"exit_code"`
	Error      string `json:"error,omitempty"`
}

// QueryResponse holds the rows of one status query.
type QueryResponse []status.Row

// ErrorResponse is returned with non-2xx statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewTriggerResponse converts a dispatch result into its wire form.
func NewTriggerResponse(res orchestrator.Result) (*TriggerResponse, error) {
	resp := &TriggerResponse{
		TriggerID: res.TriggerID,
		Command:   res.Command.String(),
		Value:     res.Value,
		OK:        res.OK(),
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	if res.Grants != nil {
		resp.Grants = grants(*res.Grants)
	}
	if res.Report != nil {
		report, err := json.Marshal(res.Report)
		if err != nil {
			return nil, err
		}
		resp.Report = report
	}
	return resp, nil
}

func grants(batch interfaces.GrantBatchResult) []Grant {
	all := batch.All()
	out := make([]Grant, 0, len(all))
	for _, g := range all {
		entry := Grant{Permission: string(g.Permission), Succeeded: g.Succeeded, ExitCode: g.ExitCode}
		if g.Err != nil {
			entry.Error = g.Err.Error()
		}
		out = append(out, entry)
	}
	return out
}
