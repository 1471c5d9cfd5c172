package a2a

import (
	"context"

	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

type hooks struct{}

func (hooks) InitializeResource(ctx any) error      { return nil }
func (hooks) CleanupResource(ctx any) error         { return nil }
func (hooks) EmergencyCleanup(ctx any, cause error) {}

// NewResource builds the `a2a` resource kind's handle (spec §6.4:
// get_agent_card() -> mapping, send_task(message, context) -> task_handle,
// wait(task_handle) -> result).
func NewResource(name string, cfg Config) (*values.Resource, error) {
	client, err := New(cfg)
	if err != nil {
		return nil, err
	}
	r := values.NewResource("a2a", name, hooks{})

	r.Ops["get_agent_card"] = func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		card, err := client.GetAgentCard(context.Background())
		if err != nil {
			return nil, danaerr.WrapHost(err)
		}
		m := values.NewMapping()
		m.Set(values.Str("name"), values.Str(card.Name))
		m.Set(values.Str("description"), values.Str(card.Description))
		caps := make([]values.Value, len(card.Capabilities))
		for i, c := range card.Capabilities {
			caps[i] = values.Str(c)
		}
		m.Set(values.Str("capabilities"), values.NewList(caps...))
		return m, nil
	}

	r.Ops["send_task"] = func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		if len(args) < 1 {
			return nil, danaerr.NewArgumentError(danaerr.Location{}, "send_task(message, context=None): missing message")
		}
		message, ok := args[0].(values.Str)
		if !ok {
			return nil, danaerr.NewTypeError(danaerr.Location{}, "send_task: message must be a string, got %s", args[0].Type())
		}
		var taskCtx any
		if len(args) > 1 {
			taskCtx = args[1].String()
		}
		handle, err := client.SendTask(context.Background(), string(message), taskCtx)
		if err != nil {
			return nil, danaerr.WrapHost(err)
		}
		return values.Str(handle), nil
	}

	r.Ops["wait"] = func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		if len(args) < 1 {
			return nil, danaerr.NewArgumentError(danaerr.Location{}, "wait(task_handle): missing task_handle")
		}
		handle, ok := args[0].(values.Str)
		if !ok {
			return nil, danaerr.NewTypeError(danaerr.Location{}, "wait: task_handle must be a string, got %s", args[0].Type())
		}
		result, err := client.Wait(context.Background(), TaskHandle(handle))
		if err != nil {
			return nil, danaerr.WrapHost(err)
		}
		if result.Error != "" {
			return nil, danaerr.WrapHost(errString(result.Error))
		}
		return values.Str(result.Output), nil
	}

	return r, nil
}

type errString string

func (e errString) Error() string { return string(e) }
