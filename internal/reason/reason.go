// Package reason implements the reason() primitive (spec §4.4.3): it
// consults the default LLM resource and coerces the raw text response to
// whatever type the call site's assignment annotation demands.
package reason

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dana-lang/dana/internal/ast"
	dcontext "github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/logging"
	"github.com/dana-lang/dana/internal/resource/audit"
	"github.com/dana-lang/dana/internal/resource/llm"
	syncadapter "github.com/dana-lang/dana/internal/sync"
	"github.com/dana-lang/dana/internal/values"
)

// StructTypes resolves a declared struct type by name, so `x: MyStruct =
// reason(...)` can decode a JSON object into the right field set.
// Satisfied structurally by *interp.StructRegistry; declared here rather
// than imported to avoid a cycle (interp depends on this package's
// Reasoner being wired in, not the reverse).
type StructTypes interface {
	Lookup(name string) *values.StructType
}

// Reasoner is the default implementation of interp.Reasoner, wrapping a
// single llm.Client (spec §4.4.3: "consults the default LLM resource...
// obtained from the Execution Context's system scope"). One Reasoner is
// built from the resolved `llm.*` configuration at startup and bound as
// the interpreter's default for the life of the run, which is equivalent
// in observable behavior to a per-call system-scope lookup since nothing
// in this core ever rebinds `system:llm` mid-run.
type Reasoner struct {
	Client  llm.Client
	Structs StructTypes
	Adapter *syncadapter.Adapter

	// Audit records every call's prompt/response/duration if set. A nil
	// *audit.Sink is valid and records nothing (see audit.Sink.Record),
	// so an embedding host that never configures an audit path pays
	// nothing for it.
	Audit *audit.Sink
}

func New(client llm.Client, structs StructTypes) *Reasoner {
	return &Reasoner{Client: client, Structs: structs, Adapter: syncadapter.New()}
}

// Reason implements interp.Reasoner.
func (r *Reasoner) Reason(ctx *dcontext.Context, prompt string, promptCtx values.Value, options map[string]values.Value, hint *ast.TypeExpr) (values.Value, error) {
	if r.Client == nil {
		return nil, danaerr.NewLLMUnavailable(nil, "no llm resource configured")
	}

	fullPrompt := prompt
	if promptCtx != nil && promptCtx != values.NullValue {
		fullPrompt = fmt.Sprintf("%s\n\nContext:\n%s", prompt, promptCtx.String())
	}

	opts := optionsOf(options)
	logging.Get(logging.CategoryReason).Debugf("reason: prompt_len=%d hint=%s retries=%d", len(fullPrompt), hintName(hint), opts.Retries)

	start := time.Now()

	// Routed through the sync adapter (spec §5) rather than called
	// directly: the backend call is the one genuinely suspending
	// operation in reason(), and the adapter is what guarantees it blocks
	// the calling statement with no suspension point visible to Dana.
	result, err := r.Adapter.Await(context.Background(), func(ctx context.Context) (values.Value, error) {
		text, err := r.Client.Generate(ctx, fullPrompt, opts)
		if err != nil {
			return nil, err
		}
		return values.Str(text), nil
	})
	if err != nil {
		r.Audit.Record(audit.Trace{
			Prompt:     fullPrompt,
			Model:      opts.Model,
			DurationMS: time.Since(start).Milliseconds(),
			Success:    false,
			Error:      err.Error(),
		})
		return nil, danaerr.NewLLMUnavailable(err, "reason(): backend call failed")
	}
	text := strings.TrimSpace(string(result.(values.Str)))
	r.Audit.Record(audit.Trace{
		Prompt:     fullPrompt,
		Response:   text,
		Model:      opts.Model,
		DurationMS: time.Since(start).Milliseconds(),
		Success:    true,
	})

	return r.coerce(text, hint)
}

func optionsOf(options map[string]values.Value) llm.Options {
	var opts llm.Options
	if v, ok := options["temperature"]; ok {
		if f, ok := v.(values.Float); ok {
			opts.Temperature = float64(f)
		} else if i, ok := v.(values.Int); ok {
			opts.Temperature = float64(i)
		}
	}
	if v, ok := options["model"]; ok {
		if s, ok := v.(values.Str); ok {
			opts.Model = string(s)
		}
	}
	if v, ok := options["max_tokens"]; ok {
		if i, ok := v.(values.Int); ok {
			opts.MaxTokens = int(i)
		}
	}
	if v, ok := options["retries"]; ok {
		if i, ok := v.(values.Int); ok {
			opts.Retries = int(i)
		}
	}
	if opts.Retries == 0 {
		opts.Retries = 1
	}
	return opts
}

func hintName(hint *ast.TypeExpr) string {
	if hint == nil {
		return "(none)"
	}
	return hint.Name
}

// coerce implements the reason() type-inference table (spec §4.4.3): no
// hint returns the raw string; otherwise the hint's name drives parsing.
func (r *Reasoner) coerce(text string, hint *ast.TypeExpr) (values.Value, error) {
	if hint == nil {
		return values.Str(text), nil
	}

	switch hint.Name {
	case "str", "string":
		return values.Str(text), nil
	case "int":
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, danaerr.NewTypeCoercionError(err, "reason() output %q is not an int", text)
		}
		return values.Int(n), nil
	case "float":
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, danaerr.NewTypeCoercionError(err, "reason() output %q is not a float", text)
		}
		return values.Float(f), nil
	case "bool":
		return coerceBool(text)
	case "list":
		elemHint := (*ast.TypeExpr)(nil)
		if len(hint.Args) > 0 {
			elemHint = hint.Args[0]
		}
		return r.coerceList(text, elemHint)
	default:
		return r.coerceStruct(text, hint.Name)
	}
}

func coerceBool(text string) (values.Value, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "yes", "1":
		return values.Bool(true), nil
	case "false", "no", "0":
		return values.Bool(false), nil
	default:
		return nil, danaerr.NewTypeCoercionError(nil, "reason() output %q is not a bool", text)
	}
}

func (r *Reasoner) coerceList(text string, elemHint *ast.TypeExpr) (values.Value, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, danaerr.NewTypeCoercionError(err, "reason() output is not a JSON array: %q", text)
	}
	elems := make([]values.Value, len(raw))
	for i, r2 := range raw {
		v, err := jsonToValue(r2, elemHint)
		if err != nil {
			return nil, danaerr.NewTypeCoercionError(err, "reason() list element %d: %v", i, err)
		}
		elems[i] = v
	}
	return values.NewList(elems...), nil
}

func (r *Reasoner) coerceStruct(text, typeName string) (values.Value, error) {
	if r.Structs == nil {
		return nil, danaerr.NewTypeCoercionError(nil, "reason(): no struct registry wired to decode %s", typeName)
	}
	st := r.Structs.Lookup(typeName)
	if st == nil {
		return nil, danaerr.NewTypeCoercionError(nil, "reason(): unknown struct type %s", typeName)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, danaerr.NewTypeCoercionError(err, "reason() output is not a JSON object: %q", text)
	}
	inst := values.NewStructInstance(st.Name)
	for _, fd := range st.Fields {
		raw, ok := fields[fd.Name]
		if !ok {
			if fd.Default != nil {
				inst.Fields[fd.Name] = fd.Default
				continue
			}
			return nil, danaerr.NewTypeCoercionError(nil, "reason() output missing field %q for struct %s", fd.Name, st.Name)
		}
		v, err := jsonToValue(raw, &ast.TypeExpr{Name: fd.Type})
		if err != nil {
			return nil, danaerr.NewTypeCoercionError(err, "reason() field %q: %v", fd.Name, err)
		}
		inst.Fields[fd.Name] = v
	}
	return inst, nil
}

// jsonToValue decodes one JSON value into a Dana value, honoring hint
// when it names a scalar type and falling back to JSON's own shape
// otherwise (numbers -> Int when the hint says int, truncating, or when
// there is no hint and the number is integral; Float otherwise; objects ->
// Mapping).
func jsonToValue(raw json.RawMessage, hint *ast.TypeExpr) (values.Value, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return fromGeneric(generic, hint)
}

func fromGeneric(v any, hint *ast.TypeExpr) (values.Value, error) {
	switch t := v.(type) {
	case nil:
		return values.NullValue, nil
	case bool:
		return values.Bool(t), nil
	case string:
		return values.Str(t), nil
	case float64:
		if hint != nil && hint.Name == "int" {
			return values.Int(int64(t)), nil
		}
		if t == float64(int64(t)) && (hint == nil || hint.Name == "") {
			return values.Int(int64(t)), nil
		}
		return values.Float(t), nil
	case []any:
		elems := make([]values.Value, len(t))
		for i, e := range t {
			ev, err := fromGeneric(e, nil)
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}
		return values.NewList(elems...), nil
	case map[string]any:
		m := values.NewMapping()
		for k, e := range t {
			ev, err := fromGeneric(e, nil)
			if err != nil {
				return nil, err
			}
			m.Set(values.Str(k), ev)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value %T", v)
	}
}
