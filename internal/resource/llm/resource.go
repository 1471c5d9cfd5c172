package llm

import (
	"context"

	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

type hooks struct{}

func (hooks) InitializeResource(ctx any) error      { return nil }
func (hooks) CleanupResource(ctx any) error         { return nil }
func (hooks) EmergencyCleanup(ctx any, cause error) {}

// NewResource builds the `llm` resource kind's handle (spec §6.4:
// generate(prompt, options) -> string).
func NewResource(name string, client Client) *values.Resource {
	r := values.NewResource("llm", name, hooks{})

	r.Ops["generate"] = func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		if len(args) < 1 {
			return nil, danaerr.NewArgumentError(danaerr.Location{}, "generate(prompt, options={}): missing prompt")
		}
		prompt, ok := args[0].(values.Str)
		if !ok {
			return nil, danaerr.NewTypeError(danaerr.Location{}, "generate: prompt must be a string, got %s", args[0].Type())
		}
		opts := Options{Retries: 1}
		if len(args) > 1 {
			if m, ok := args[1].(*values.Mapping); ok {
				opts = optionsFromMapping(m)
			}
		}
		text, err := client.Generate(context.Background(), string(prompt), opts)
		if err != nil {
			return nil, danaerr.NewLLMUnavailable(err, "generate(): backend call failed")
		}
		return values.Str(text), nil
	}

	return r
}

func optionsFromMapping(m *values.Mapping) Options {
	opts := Options{Retries: 1}
	if v, ok := m.Get(values.Str("temperature")); ok {
		switch n := v.(type) {
		case values.Float:
			opts.Temperature = float64(n)
		case values.Int:
			opts.Temperature = float64(n)
		}
	}
	if v, ok := m.Get(values.Str("model")); ok {
		if s, ok := v.(values.Str); ok {
			opts.Model = string(s)
		}
	}
	if v, ok := m.Get(values.Str("max_tokens")); ok {
		if n, ok := v.(values.Int); ok {
			opts.MaxTokens = int(n)
		}
	}
	if v, ok := m.Get(values.Str("retries")); ok {
		if n, ok := v.(values.Int); ok && n > 0 {
			opts.Retries = int(n)
		}
	}
	return opts
}
