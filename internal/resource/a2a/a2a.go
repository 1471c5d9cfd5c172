// Package a2a backs the `a2a` resource kind (spec §6.4): a client-role
// connection to a remote agent, exposing get_agent_card(), send_task(),
// and wait(). Grounded on the teacher's session.Spawner/TaskExecutor
// spawn-dispatch-await pattern (internal/session/spawner.go,
// internal/session/task_executor.go: Spawn -> ExecuteAsync -> GetResult/
// WaitForResult), generalized from an in-process subagent handle to an
// opaque task_handle addressing a task on a remote agent reached over
// HTTP.
package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AgentCard is the remote agent's self-description (A2A's well-known
// `/.well-known/agent.json` document).
type AgentCard struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
}

// TaskHandle addresses one dispatched task for a later wait().
type TaskHandle string

// TaskResult is what wait() returns once the task completes.
type TaskResult struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Config is the acquisition config for use("a2a.<name>").
type Config struct {
	BaseURL   string
	PollEvery time.Duration
	PollFor   time.Duration
}

// Client is a connection to one remote agent.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("a2a: config requires base_url")
	}
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 500 * time.Millisecond
	}
	if cfg.PollFor <= 0 {
		cfg.PollFor = 2 * time.Minute
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: 30 * time.Second}}, nil
}

func (c *Client) GetAgentCard(ctx context.Context) (*AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/.well-known/agent.json", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("a2a: get_agent_card: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("a2a: get_agent_card returned %d: %s", resp.StatusCode, string(body))
	}
	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("a2a: decode agent card: %w", err)
	}
	return &card, nil
}

type sendTaskRequest struct {
	Message string `json:"message"`
	Context any    `json:"context,omitempty"`
}

type sendTaskResponse struct {
	TaskID string `json:"task_id"`
}

func (c *Client) SendTask(ctx context.Context, message string, taskCtx any) (TaskHandle, error) {
	body, err := json.Marshal(sendTaskRequest{Message: message, Context: taskCtx})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/tasks", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("a2a: send_task: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("a2a: send_task returned %d: %s", resp.StatusCode, string(respBody))
	}
	var out sendTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("a2a: decode send_task response: %w", err)
	}
	return TaskHandle(out.TaskID), nil
}

type taskStatusResponse struct {
	Status string `json:"status"` // "pending" | "running" | "completed" | "failed"
	Output string `json:"output"`
	Error  string `json:"error"`
}

// Wait polls the remote task until it reaches a terminal state or the
// configured poll window elapses, mirroring the teacher's
// WaitForResult's block-until-done contract but over HTTP instead of an
// in-process channel.
func (c *Client) Wait(ctx context.Context, handle TaskHandle) (*TaskResult, error) {
	deadline := time.Now().Add(c.cfg.PollFor)
	for {
		status, err := c.poll(ctx, handle)
		if err != nil {
			return nil, err
		}
		switch status.Status {
		case "completed":
			return &TaskResult{Output: status.Output}, nil
		case "failed":
			return &TaskResult{Error: status.Error}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("a2a: wait(%s) timed out after %s", handle, c.cfg.PollFor)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.PollEvery):
		}
	}
}

func (c *Client) poll(ctx context.Context, handle TaskHandle) (*taskStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/tasks/"+string(handle), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("a2a: poll task: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("a2a: poll task returned %d: %s", resp.StatusCode, string(body))
	}
	var status taskStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("a2a: decode task status: %w", err)
	}
	return &status, nil
}
