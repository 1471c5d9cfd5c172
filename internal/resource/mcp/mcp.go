// Package mcp backs the `mcp` resource kind (spec §6.4): a client-role
// Model Context Protocol connection exposing list_tools()/call_tool().
// Generalized from the teacher's bespoke tool-calling protocol
// (internal/mcp) down to the two operations the Dana layer actually
// specifies; wire-level concerns (JSON-RPC framing, transport) are kept,
// the teacher's JIT tool-selection/analysis/embedding machinery is not
// (no Dana construct calls for ranking or condensing tool descriptions).
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is one tool advertised by an MCP server (spec §6.4: list_tools()
// returns a list). The `mcp` resource's list_tools() gives Dana each tool
// as a mapping with name and description only; InputSchema is decoded
// here but not included in that mapping.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// CallResult is the result of invoking one tool.
type CallResult struct {
	Content json.RawMessage `json:"content"`
	IsError bool            `json:"isError"`
}

// Transport is one MCP wire transport (spec §6.4: "config carries a
// transport spec: command for stdio, url for HTTP/SSE").
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect() error
	ListTools(ctx context.Context) ([]Tool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*CallResult, error)
}

// Config is the acquisition config for use("mcp.<name>").
type Config struct {
	Command string // stdio transport
	URL     string // http/sse transport
}

// New selects a transport from cfg (spec §6.4: "command for stdio, url
// for HTTP/SSE").
func New(cfg Config) (Transport, error) {
	switch {
	case cfg.Command != "":
		return newStdioTransport(cfg.Command), nil
	case cfg.URL != "":
		return newHTTPTransport(cfg.URL), nil
	default:
		return nil, fmt.Errorf("mcp: config must set command (stdio) or url (http)")
	}
}
