package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// httpTransport speaks JSON-RPC over plain HTTP POST, one request per
// call. Grounded on the teacher's HTTPTransport (internal/mcp/
// transport_http.go) minus session/SSE-stream bookkeeping the Dana
// surface (list_tools/call_tool only) never needs.
type httpTransport struct {
	url        string
	httpClient *http.Client

	mu     sync.Mutex
	nextID int
}

func newHTTPTransport(url string) *httpTransport {
	return &httpTransport{url: url, httpClient: &http.Client{Timeout: 30 * time.Second}}
}

func (t *httpTransport) Connect(ctx context.Context) error { return nil }
func (t *httpTransport) Disconnect() error                 { return nil }

func (t *httpTransport) nextRequestID() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	return t.nextID
}

func (t *httpTransport) call(ctx context.Context, method string, params any) (*jsonrpcResponse, error) {
	req := jsonrpcRequest{JSONRPC: "2.0", ID: t.nextRequestID(), Method: method, Params: params}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mcp: http request: %w", err)
	}
	defer resp.Body.Close()

	var rpcResp jsonrpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("mcp: decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("mcp: %s: %s", method, rpcResp.Error.Message)
	}
	return &rpcResp, nil
}

func (t *httpTransport) ListTools(ctx context.Context) ([]Tool, error) {
	resp, err := t.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	var result listToolsResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("mcp: parse tools/list result: %w", err)
	}
	return result.Tools, nil
}

func (t *httpTransport) CallTool(ctx context.Context, name string, args map[string]any) (*CallResult, error) {
	resp, err := t.call(ctx, "tools/call", callToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, err
	}
	var result callToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("mcp: parse tools/call result: %w", err)
	}
	return result.toCallResult(), nil
}
