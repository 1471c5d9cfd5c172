package values

import "github.com/dana-lang/dana/internal/ast"

// ClosureEnv is the minimal surface a declaring scope must expose so a
// Function value can be evaluated later by the interpreter without the
// values package importing the execution-context package (which itself
// depends on values) — avoided via this structural interface instead of a
// direct type reference.
type ClosureEnv interface {
	// Describe returns a short human-readable tag for diagnostics/String().
	Describe() string
}

// NativeFunc is the shape of a host-defined or composed-pipeline callable.
// ctx is an opaque handle the interpreter's dispatcher passes through
// unchanged (typically the current *context.Context); Function itself
// never inspects it.
type NativeFunc func(ctx any, args []Value, kwargs map[string]Value) (Value, error)

// Function is Dana's first-class callable value (spec §3.4): a named
// `def`, an anonymous `lambda`, or a host/native callable (including
// pipeline compositions produced by `|`).
type Function struct {
	Name          string
	Params        []*ast.Param
	ReturnType    *ast.TypeExpr
	Body          *ast.Block // non-nil for `def`-declared Dana functions
	LambdaBody    ast.Expr   // non-nil for `lambda` expressions
	Closure       ClosureEnv // declaring scope; nil for unclosed host funcs
	IsAsync       bool       // always false for Dana-defined functions (spec §9)
	Native        NativeFunc // non-nil for host-defined/composed callables
	SelfImproving bool       // pipeline learning hook (spec §4.4.2)
	ReceiverType  string     // non-"" if this is a method, dispatched on this struct type
	ReceiverName  string     // the method's first-parameter binding name, e.g. "r" in `def (r: Agent) greet()`
}

func (*Function) Type() string { return "function" }

func (f *Function) String() string {
	name := f.Name
	if name == "" {
		name = "<lambda>"
	}
	return "<function " + name + ">"
}

// IsNative reports whether calling f requires the native path rather than
// pushing a fresh Dana frame and walking Body/LambdaBody.
func (f *Function) IsNative() bool { return f.Native != nil }
