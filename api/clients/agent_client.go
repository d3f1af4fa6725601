package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cleverty/endpoint-provisioner/api"
	"github.com/stretchr/testify/mock"
)

// DefaultTimeout covers a full setup, which waits for the service and the
// input-control binding.
const DefaultTimeout = 2 * time.Minute

// AgentAPI is implemented by AgentClient.
type AgentAPI interface {
	Trigger(ctx context.Context, command string, params map[string]string) (*api.TriggerResponse, error)
	Query(ctx context.Context, target string) (api.QueryResponse, error)
}

// AgentClient talks to the local provisioning API of a running agent.
type AgentClient struct {
	// ServerAddr is the base URL of the agent, e.g. http://127.0.0.1:8480
	ServerAddr string

	// HTTPClient defaults to a client with DefaultTimeout.
	HTTPClient *http.Client
}

func NewAgentClient(serverAddr string) *AgentClient {
	if !strings.Contains(serverAddr, "://") {
		serverAddr = "http://" + serverAddr
	}
	return &AgentClient{
		ServerAddr: strings.TrimSuffix(serverAddr, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Trigger runs command on the agent. A dispatched trigger that failed is
// returned as a response with OK false, not as an error.
func (c *AgentClient) Trigger(ctx context.Context, command string, params map[string]string) (*api.TriggerResponse, error) {
	body, err := json.Marshal(api.TriggerRequest{Params: params})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/trigger/%s", c.ServerAddr, url.PathEscape(command))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request trigger endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return nil, responseError("trigger", resp)
	}

	var parsed api.TriggerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not parse trigger response: %w", err)
	}
	if parsed.TriggerID == "" {
		// 400 before dispatch carries an ErrorResponse.
		return nil, fmt.Errorf("trigger endpoint returned error %d: %s", resp.StatusCode, parsed.Error)
	}
	return &parsed, nil
}

// Query reads the rows of target.
func (c *AgentClient) Query(ctx context.Context, target string) (api.QueryResponse, error) {
	endpoint := fmt.Sprintf("%s/api/query/%s", c.ServerAddr, url.PathEscape(target))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request query endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("query", resp)
	}

	var rows api.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("could not parse query response: %w", err)
	}
	return rows, nil
}

func (c *AgentClient) client() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func responseError(endpoint string, resp *http.Response) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s endpoint returned non-200 response: %d", endpoint, resp.StatusCode)
	}
	var errResp api.ErrorResponse
	if json.Unmarshal(bodyBytes, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("%s endpoint returned error %d: %s", endpoint, resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("%s endpoint returned error %d: %s", endpoint, resp.StatusCode, string(bodyBytes))
}

// MockAgent implements AgentAPI for testing.
type MockAgent struct {
	mock.Mock
}

func (m *MockAgent) Trigger(ctx context.Context, command string, params map[string]string) (*api.TriggerResponse, error) {
	args := m.Called(ctx, command, params)
	resp, _ := args.Get(0).(*api.TriggerResponse)
	return resp, args.Error(1)
}

func (m *MockAgent) Query(ctx context.Context, target string) (api.QueryResponse, error) {
	args := m.Called(ctx, target)
	rows, _ := args.Get(0).(api.QueryResponse)
	return rows, args.Error(1)
}
