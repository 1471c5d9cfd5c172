package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

// hooks adapts a Transport's Connect/Disconnect to values.ResourceHooks
// (spec §3.5 lifecycle), satisfying the with-statement's
// _initialize_resource/_cleanup_resource/_emergency_cleanup contract.
type hooks struct {
	transport Transport
}

func (h *hooks) InitializeResource(ctx any) error { return h.transport.Connect(context.Background()) }
func (h *hooks) CleanupResource(ctx any) error    { return h.transport.Disconnect() }
func (h *hooks) EmergencyCleanup(ctx any, cause error) {
	_ = h.transport.Disconnect()
}

// NewResource builds the `mcp` resource kind's handle (spec §6.4:
// list_tools() -> list, call_tool(name, args) -> any).
func NewResource(name string, cfg Config) (*values.Resource, error) {
	transport, err := New(cfg)
	if err != nil {
		return nil, err
	}
	r := values.NewResource("mcp", name, &hooks{transport: transport})

	r.Ops["list_tools"] = func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		tools, err := transport.ListTools(context.Background())
		if err != nil {
			return nil, danaerr.WrapHost(err)
		}
		out := make([]values.Value, len(tools))
		for i, t := range tools {
			m := values.NewMapping()
			m.Set(values.Str("name"), values.Str(t.Name))
			m.Set(values.Str("description"), values.Str(t.Description))
			out[i] = m
		}
		return values.NewList(out...), nil
	}

	r.Ops["call_tool"] = func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		if len(args) < 1 {
			return nil, danaerr.NewArgumentError(danaerr.Location{}, "call_tool(name, args): missing name")
		}
		name, ok := args[0].(values.Str)
		if !ok {
			return nil, danaerr.NewTypeError(danaerr.Location{}, "call_tool: name must be a string, got %s", args[0].Type())
		}
		var toolArgs map[string]any
		if len(args) > 1 {
			m, ok := args[1].(*values.Mapping)
			if !ok {
				return nil, danaerr.NewTypeError(danaerr.Location{}, "call_tool: args must be a mapping, got %s", args[1].Type())
			}
			toolArgs = mappingToAny(m)
		}
		result, err := transport.CallTool(context.Background(), string(name), toolArgs)
		if err != nil {
			return nil, danaerr.WrapHost(err)
		}
		if result.IsError {
			return nil, danaerr.WrapHost(fmt.Errorf("mcp tool %s returned an error result", name))
		}
		return rawToValue(result.Content), nil
	}

	return r, nil
}

func mappingToAny(m *values.Mapping) map[string]any {
	out := make(map[string]any, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out[k.String()] = valueToAny(v)
	}
	return out
}

func valueToAny(v values.Value) any {
	switch t := v.(type) {
	case values.Str:
		return string(t)
	case values.Int:
		return int64(t)
	case values.Float:
		return float64(t)
	case values.Bool:
		return bool(t)
	case values.Null:
		return nil
	case *values.List:
		out := make([]any, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = valueToAny(e)
		}
		return out
	case *values.Mapping:
		return mappingToAny(t)
	default:
		return v.String()
	}
}

func rawToValue(raw json.RawMessage) values.Value {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return values.Str(s)
	}
	return values.Str(string(raw))
}
