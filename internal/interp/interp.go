// Package interp is Dana's tree-walking interpreter (spec §4.4): statement
// and expression evaluation against the Execution Context, dispatching
// calls through the Function Registry.
package interp

import (
	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/logging"
	"github.com/dana-lang/dana/internal/registry"
	"github.com/dana-lang/dana/internal/stdlib"
	"github.com/dana-lang/dana/internal/values"
)

// Importer resolves an `import` statement (spec §4.6). Supplied by the
// module loader at wiring time; kept as an interface here so this package
// never imports internal/module (which itself needs an Interpreter to run
// a module's top-level statements).
type Importer interface {
	Import(ip *Interpreter, path, namespace string) error
}

// ResourceFactory instantiates a resource for `use()` (spec §4.5.3).
// Supplied by the resource subsystem at wiring time, for the same reason
// Importer is an interface here.
type ResourceFactory interface {
	Create(kind, name string, config map[string]values.Value) (*values.Resource, error)
}

// Reasoner backs the `reason()` primitive (spec §4.4.3). Supplied by the
// resource/reason subsystem at wiring time.
type Reasoner interface {
	Reason(ctx *context.Context, prompt string, promptCtx values.Value, options map[string]values.Value, hint *ast.TypeExpr) (values.Value, error)
}

// KnowledgeBase resolves a `kb.<dotted.path>` use() identifier to its
// content (spec §4.5.1: "the returned value is the entry's content, not a
// context-managed resource").
type KnowledgeBase interface {
	Lookup(path string) (values.Value, error)
}

// Observer receives optional statement-level tracing events (spec §6.2
// item 6: "optional callback for statement-level tracing, errors, resource
// acquisition/release"). Any method may be left a no-op by an embedder
// that only cares about a subset of events.
type Observer interface {
	Statement(file string, line int)
	Error(err error)
	ResourceAcquired(kind, name string)
}

// StructRegistry holds declared struct types by name (spec §3.3).
type StructRegistry struct {
	types map[string]*values.StructType
}

func NewStructRegistry() *StructRegistry {
	return &StructRegistry{types: make(map[string]*values.StructType)}
}

func (s *StructRegistry) Define(t *values.StructType)           { s.types[t.Name] = t }
func (s *StructRegistry) Lookup(name string) *values.StructType { return s.types[name] }

// All returns every declared struct type by name, for the module loader
// to collect a module's exported struct declarations (spec §4.6 step 2).
func (s *StructRegistry) All() map[string]*values.StructType {
	out := make(map[string]*values.StructType, len(s.types))
	for k, v := range s.types {
		out[k] = v
	}
	return out
}

// Interpreter walks an *ast.Program (or nested blocks) against a
// *context.Context, dispatching calls through a *registry.Registry.
type Interpreter struct {
	Ctx       *context.Context
	Registry  *registry.Registry
	Structs   *StructRegistry
	Importer  Importer
	Resources ResourceFactory
	Reasoner  Reasoner
	Knowledge KnowledgeBase
	Observer  Observer // optional; nil means no tracing callback is wired
	File      string

	// methods maps receiver type name -> method name -> function, for
	// `def (r: T) m(...)` declarations (spec §3.3, §4.4.2 method dispatch).
	methods map[string]map[string]*values.Function
}

// New creates an Interpreter over a fresh Context and Registry. file is
// used for diagnostics only.
func New(file string) *Interpreter {
	reg := registry.New()
	if err := stdlib.RegisterBuiltins(reg); err != nil {
		panic(err) // built-in registration against a fresh registry cannot fail
	}
	return &Interpreter{
		Ctx:      context.New(),
		Registry: reg,
		Structs:  NewStructRegistry(),
		File:     file,
		methods:  make(map[string]map[string]*values.Function),
	}
}

func (ip *Interpreter) loc(n ast.Node) danaerr.Location {
	p := n.Pos()
	return danaerr.Location{File: ip.File, Line: p.Line, Column: p.Column}
}

// Run executes every top-level statement of prog in order (spec §4.4).
func (ip *Interpreter) Run(prog *ast.Program) error {
	for _, stmt := range prog.Statements {
		if sig := ip.execStmt(stmt); sig != nil {
			if sig.kind == sigReturn {
				return nil
			}
			if sig.err != nil {
				if ip.Observer != nil {
					ip.Observer.Error(sig.err)
				}
				return sig.err
			}
		}
	}
	return nil
}

// Call invokes a registered function by its qualified name (bare for the
// default namespace, "ns.name" for an imported one), binding args/kwargs
// exactly as a call expression would (spec §6.2's call_function). Intended
// for the embedding host, not Dana source itself.
func (ip *Interpreter) Call(qualifiedName string, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
	rec, err := ip.Registry.Resolve(qualifiedName)
	if err != nil {
		return nil, err
	}
	return ip.invokeFunction(rec.Func, args, kwargs, nil)
}

func (ip *Interpreter) registerMethod(receiverType, name string, fn *values.Function) {
	tbl, ok := ip.methods[receiverType]
	if !ok {
		tbl = make(map[string]*values.Function)
		ip.methods[receiverType] = tbl
	}
	tbl[name] = fn
	logging.Get(logging.CategoryInterp).Debugf("registered method %s.%s", receiverType, name)
}

func (ip *Interpreter) lookupMethod(receiverType, name string) (*values.Function, bool) {
	tbl, ok := ip.methods[receiverType]
	if !ok {
		return nil, false
	}
	fn, ok := tbl[name]
	return fn, ok
}
