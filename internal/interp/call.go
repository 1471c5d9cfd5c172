package interp

import (
	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/registry"
	"github.com/dana-lang/dana/internal/values"
)

// evalArgs evaluates call arguments left to right (spec §4.4.2: "argument
// expressions are evaluated strictly left to right before binding"),
// splitting them into positional and keyword buckets.
func (ip *Interpreter) evalArgs(callArgs []ast.CallArg) ([]values.Value, map[string]values.Value, *signal) {
	var positional []values.Value
	var kwargs map[string]values.Value
	for _, a := range callArgs {
		v, sig := ip.evalExpr(a.Value)
		if sig != nil {
			return nil, nil, sig
		}
		if a.Name == "" {
			positional = append(positional, v)
			continue
		}
		if kwargs == nil {
			kwargs = make(map[string]values.Value)
		}
		kwargs[a.Name] = v
	}
	return positional, kwargs, nil
}

// evalCall dispatches `callee(args)` by the shape of callee: a bare name may
// address a struct constructor, a first-class variable, or a registered
// function; `expr.field(...)` is a method/namespaced call; anything else
// must itself evaluate to a callable (spec §4.3, §4.4.2).
func (ip *Interpreter) evalCall(call *ast.Call) (values.Value, *signal) {
	switch callee := call.Callee.(type) {
	case *ast.Identifier:
		return ip.evalIdentifierCall(callee, call)
	case *ast.Attribute:
		return ip.evalMethodCall(callee, call)
	default:
		fnVal, sig := ip.evalExpr(call.Callee)
		if sig != nil {
			return nil, sig
		}
		fn, ok := fnVal.(*values.Function)
		if !ok {
			return nil, errSignal(danaerr.NewTypeError(ip.loc(call), "value of type %s is not callable", fnVal.Type()))
		}
		args, kwargs, sig := ip.evalArgs(call.Args)
		if sig != nil {
			return nil, sig
		}
		v, err := ip.invokeFunction(fn, args, kwargs, nil)
		if err != nil {
			return nil, errSignal(err)
		}
		return v, nil
	}
}

func (ip *Interpreter) evalIdentifierCall(callee *ast.Identifier, call *ast.Call) (values.Value, *signal) {
	switch callee.Name {
	case "use":
		return ip.evalUse(call)
	case "reason":
		return ip.evalReasonCall(call, nil)
	}

	if st := ip.Structs.Lookup(callee.Name); st != nil {
		args, kwargs, sig := ip.evalArgs(call.Args)
		if sig != nil {
			return nil, sig
		}
		v, err := ip.constructStruct(st, args, kwargs)
		if err != nil {
			return nil, errSignal(err)
		}
		return v, nil
	}

	fnVal, sig := ip.evalIdentifier(callee)
	if sig != nil {
		return nil, sig
	}
	fn, ok := fnVal.(*values.Function)
	if !ok {
		return nil, errSignal(danaerr.NewTypeError(ip.loc(call), "value of type %s is not callable", fnVal.Type()))
	}
	args, kwargs, sig := ip.evalArgs(call.Args)
	if sig != nil {
		return nil, sig
	}
	v, err := ip.invokeFunction(fn, args, kwargs, nil)
	if err != nil {
		return nil, errSignal(err)
	}
	return v, nil
}

// evalMethodCall handles `x.field(args)`: a namespaced function reference
// (`mathutil.clamp(...)`), a struct method, a resource operation (requires
// RUNNING, spec §3.5), or a built-in container method.
func (ip *Interpreter) evalMethodCall(attr *ast.Attribute, call *ast.Call) (values.Value, *signal) {
	if id, ok := attr.X.(*ast.Identifier); ok {
		if _, _, err := ip.Ctx.Resolve(id.Name); err != nil {
			if rec, rerr := ip.Registry.Resolve(id.Name + "." + attr.Field); rerr == nil {
				args, kwargs, sig := ip.evalArgs(call.Args)
				if sig != nil {
					return nil, sig
				}
				v, err := ip.invokeFunction(rec.Func, args, kwargs, nil)
				if err != nil {
					return nil, errSignal(err)
				}
				return v, nil
			}
		}
	}

	obj, sig := ip.evalExpr(attr.X)
	if sig != nil {
		return nil, sig
	}
	args, kwargs, sig := ip.evalArgs(call.Args)
	if sig != nil {
		return nil, sig
	}

	switch v := obj.(type) {
	case *values.Resource:
		if v.State() != values.StateRunning {
			return nil, errSignal(danaerr.NewResourceNotActive(v.Kind, v.Name, string(v.State())))
		}
		op, ok := v.Ops[attr.Field]
		if !ok {
			return nil, errSignal(danaerr.NewTypeError(ip.loc(call), "resource %s.%s has no operation %q", v.Kind, v.Name, attr.Field))
		}
		result, err := op(ip.Ctx, args, kwargs)
		if err != nil {
			return nil, errSignal(danaerr.WrapHost(err))
		}
		return result, nil
	case *values.StructInstance:
		fn, ok := ip.lookupMethod(v.TypeName, attr.Field)
		if !ok {
			return nil, errSignal(danaerr.NewTypeError(ip.loc(call), "struct %s has no method %q", v.TypeName, attr.Field))
		}
		result, err := ip.invokeFunction(fn, args, kwargs, v)
		if err != nil {
			return nil, errSignal(err)
		}
		return result, nil
	default:
		result, bound, err := stdlibCallMethod(obj, attr.Field, args)
		if err != nil {
			return nil, errSignal(err)
		}
		if !bound {
			return nil, errSignal(danaerr.NewTypeError(ip.loc(call), "value of type %s has no method %q", obj.Type(), attr.Field))
		}
		return result, nil
	}
}

// invokeFunction runs fn with bound as the freshly bound parameters, pushing
// a Dana frame for non-native bodies and a receiver binding for methods
// (spec §4.4.2 call semantics, §3.3 method dispatch).
func (ip *Interpreter) invokeFunction(fn *values.Function, args []values.Value, kwargs map[string]values.Value, receiver values.Value) (values.Value, error) {
	if fn.IsNative() {
		return fn.Native(ip.Ctx, args, kwargs)
	}

	evalDefault := func(e ast.Expr) (values.Value, error) {
		v, sig := ip.evalExpr(e)
		if sig != nil {
			if sig.err != nil {
				return nil, sig.err
			}
			return nil, danaerr.NewInternalError("non-error signal while evaluating default expression")
		}
		return v, nil
	}
	bound, err := registry.BindArgs(fn.Params, args, kwargs, evalDefault)
	if err != nil {
		return nil, err
	}

	var parent *context.Frame
	if fn.Closure != nil {
		if f, ok := fn.Closure.(*context.Frame); ok {
			parent = f
		}
	}
	ip.Ctx.PushFrame(fn.Name, parent)
	defer ip.Ctx.PopFrame()

	for name, v := range bound {
		ip.Ctx.Set(context.Local, name, v)
	}
	if fn.ReceiverName != "" && receiver != nil {
		ip.Ctx.Set(context.Local, fn.ReceiverName, receiver)
	}

	if fn.LambdaBody != nil {
		v, sig := ip.evalExpr(fn.LambdaBody)
		if sig != nil {
			return nil, sig.err
		}
		return v, nil
	}

	sig := ip.execBlock(fn.Body)
	if sig == nil {
		return values.NullValue, nil
	}
	switch sig.kind {
	case sigReturn:
		return sig.value, nil
	case sigError:
		return nil, sig.err
	default:
		return nil, danaerr.NewInternalError("break/continue escaped function %s", fn.Name)
	}
}

// constructStruct builds a struct instance from positional/keyword
// arguments matched against the declared field order (spec §3.3).
func (ip *Interpreter) constructStruct(st *values.StructType, args []values.Value, kwargs map[string]values.Value) (*values.StructInstance, error) {
	inst := values.NewStructInstance(st.Name)
	if len(args) > len(st.Fields) {
		return nil, danaerr.NewArgumentError(danaerr.Location{}, "%s takes at most %d arguments, got %d", st.Name, len(st.Fields), len(args))
	}
	for i, f := range st.Fields {
		if i < len(args) {
			inst.Fields[f.Name] = args[i]
			continue
		}
		if v, ok := kwargs[f.Name]; ok {
			inst.Fields[f.Name] = v
			continue
		}
		if f.Default != nil {
			inst.Fields[f.Name] = f.Default
			continue
		}
		return nil, danaerr.NewArgumentError(danaerr.Location{}, "missing required field %q for struct %s", f.Name, st.Name)
	}
	return inst, nil
}

// evalUse implements `use(identifier, config?)` (spec §3.5, §4.5.1). A
// `kb.<dotted.path>` identifier addresses a knowledge-base entry and
// returns its content directly rather than a resource handle; any other
// `kind.name` identifier is created through the ResourceFactory.
func (ip *Interpreter) evalUse(call *ast.Call) (values.Value, *signal) {
	args, kwargs, sig := ip.evalArgs(call.Args)
	if sig != nil {
		return nil, sig
	}
	identifier, err := stringArg(args, kwargs, 0, "identifier")
	if err != nil {
		return nil, errSignal(err)
	}

	if isKBPath(identifier) {
		if ip.Knowledge == nil {
			return nil, errSignal(danaerr.NewInternalError("no knowledge base wired in; cannot resolve %q", identifier))
		}
		v, err := ip.Knowledge.Lookup(identifier[len("kb."):])
		if err != nil {
			return nil, errSignal(err)
		}
		return v, nil
	}

	kind, name, ok := splitDotted(identifier)
	if !ok {
		return nil, errSignal(danaerr.NewArgumentError(ip.loc(call), "use() identifier %q must be of the form kind.name", identifier))
	}
	if ip.Resources == nil {
		return nil, errSignal(danaerr.NewInternalError("no resource factory wired in; cannot use %q", identifier))
	}

	var config map[string]values.Value
	if len(args) > 1 {
		m, ok := args[1].(*values.Mapping)
		if !ok {
			return nil, errSignal(danaerr.NewArgumentError(ip.loc(call), "use() config must be a mapping"))
		}
		config = mappingToConfig(m)
	} else if v, ok := kwargs["config"]; ok {
		m, ok := v.(*values.Mapping)
		if !ok {
			return nil, errSignal(danaerr.NewArgumentError(ip.loc(call), "use() config must be a mapping"))
		}
		config = mappingToConfig(m)
	}

	r, err := ip.Resources.Create(kind, name, config)
	if err != nil {
		return nil, errSignal(err)
	}
	ip.Ctx.OwnResource(r)
	if ip.Observer != nil {
		ip.Observer.ResourceAcquired(kind, name)
	}
	return r, nil
}

func isKBPath(identifier string) bool {
	return len(identifier) > len("kb.") && identifier[:len("kb.")] == "kb."
}

func splitDotted(s string) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

func mappingToConfig(m *values.Mapping) map[string]values.Value {
	out := make(map[string]values.Value, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out[k.String()] = v
	}
	return out
}

func stringArg(args []values.Value, kwargs map[string]values.Value, pos int, name string) (string, error) {
	var v values.Value
	if pos < len(args) {
		v = args[pos]
	} else if kv, ok := kwargs[name]; ok {
		v = kv
	} else {
		return "", danaerr.NewArgumentError(danaerr.Location{}, "missing required argument %q", name)
	}
	s, ok := v.(values.Str)
	if !ok {
		return "", danaerr.NewArgumentError(danaerr.Location{}, "argument %q must be a string, got %s", name, v.Type())
	}
	return string(s), nil
}

// evalReasonCall implements the `reason()` primitive (spec §4.4.3). hint is
// the assignment target's type annotation, if any; a bare `reason(...)`
// expression statement passes a nil hint.
func (ip *Interpreter) evalReasonCall(call *ast.Call, hint *ast.TypeExpr) (values.Value, *signal) {
	args, kwargs, sig := ip.evalArgs(call.Args)
	if sig != nil {
		return nil, sig
	}
	if ip.Reasoner == nil {
		return nil, errSignal(danaerr.NewLLMUnavailable(nil, "no reasoner wired in; cannot evaluate reason()"))
	}

	prompt, err := stringArg(args, kwargs, 0, "prompt")
	if err != nil {
		return nil, errSignal(err)
	}

	var promptCtx values.Value = values.NullValue
	if len(args) > 1 {
		promptCtx = args[1]
	} else if v, ok := kwargs["context"]; ok {
		promptCtx = v
	}

	var options map[string]values.Value
	if len(args) > 2 {
		if m, ok := args[2].(*values.Mapping); ok {
			options = mappingToConfig(m)
		}
	} else if v, ok := kwargs["options"]; ok {
		if m, ok := v.(*values.Mapping); ok {
			options = mappingToConfig(m)
		}
	}

	v, err := ip.Reasoner.Reason(ip.Ctx, prompt, promptCtx, options, hint)
	if err != nil {
		return nil, errSignal(err)
	}
	return v, nil
}
