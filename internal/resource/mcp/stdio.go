package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/dana-lang/dana/internal/logging"
)

// stdioTransport speaks JSON-RPC over a subprocess's stdin/stdout, one
// request per line, correlated by ID. Grounded on the teacher's
// StdioTransport (internal/mcp/transport_stdio.go): spawn the command,
// run a dedicated reader goroutine that dispatches responses to pending
// callers by ID, never hold the transport lock across a blocking send.
type stdioTransport struct {
	command string

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	nextID    int
	pending   map[int]chan *jsonrpcResponse
	connected bool
}

func newStdioTransport(command string) *stdioTransport {
	return &stdioTransport{command: command, pending: make(map[int]chan *jsonrpcResponse)}
}

func (t *stdioTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.connected {
		t.mu.Unlock()
		return nil
	}

	parts := strings.Fields(t.command)
	if len(parts) == 0 {
		t.mu.Unlock()
		return fmt.Errorf("mcp: empty stdio command")
	}
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.mu.Unlock()
		return fmt.Errorf("mcp: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.mu.Unlock()
		return fmt.Errorf("mcp: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		t.mu.Unlock()
		return fmt.Errorf("mcp: start %s: %w", parts[0], err)
	}

	t.cmd = cmd
	t.stdin = stdin
	t.connected = true
	t.mu.Unlock()

	go t.readLoop(stdout)
	return nil
}

func (t *stdioTransport) readLoop(stdout io.ReadCloser) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var resp jsonrpcResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			logging.Get(logging.CategoryResource).Debugf("mcp stdio: unparseable line: %v", err)
			continue
		}
		t.mu.Lock()
		ch, ok := t.pending[resp.ID]
		if ok {
			delete(t.pending, resp.ID)
		}
		t.mu.Unlock()
		if ok {
			ch <- &resp
		}
	}
}

func (t *stdioTransport) call(method string, params any) (*jsonrpcResponse, error) {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return nil, fmt.Errorf("mcp: stdio transport not connected")
	}
	t.nextID++
	id := t.nextID
	ch := make(chan *jsonrpcResponse, 1)
	t.pending[id] = ch
	stdin := t.stdin
	t.mu.Unlock()

	req := jsonrpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')
	if _, err := stdin.Write(data); err != nil {
		return nil, fmt.Errorf("mcp: write request: %w", err)
	}

	resp := <-ch
	if resp.Error != nil {
		return nil, fmt.Errorf("mcp: %s: %s", method, resp.Error.Message)
	}
	return resp, nil
}

func (t *stdioTransport) ListTools(ctx context.Context) ([]Tool, error) {
	resp, err := t.call("tools/list", nil)
	if err != nil {
		return nil, err
	}
	var result listToolsResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("mcp: parse tools/list result: %w", err)
	}
	return result.Tools, nil
}

func (t *stdioTransport) CallTool(ctx context.Context, name string, args map[string]any) (*CallResult, error) {
	resp, err := t.call("tools/call", callToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, err
	}
	var result callToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("mcp: parse tools/call result: %w", err)
	}
	return result.toCallResult(), nil
}

func (t *stdioTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil
	}
	t.connected = false
	if t.cmd != nil && t.cmd.Process != nil {
		return t.cmd.Process.Kill()
	}
	return nil
}
