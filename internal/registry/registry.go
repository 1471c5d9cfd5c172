// Package registry implements Dana's Function Registry (spec §4.3): the
// namespace-aware table mapping qualified names to callables, and the
// argument-binding protocol every call expression goes through.
package registry

import (
	"strings"
	"sync"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/logging"
	"github.com/dana-lang/dana/internal/values"
)

// DefaultNamespace is where bare (unqualified) names register and resolve.
const DefaultNamespace = ""

// Record is one registered callable (spec §4.3: "qualified_name,
// namespace, callable, signature, is_async, is_context_aware, metadata").
type Record struct {
	QualifiedName  string
	Namespace      string
	Name           string
	Func           *values.Function
	IsAsync        bool
	IsContextAware bool
	Metadata       map[string]string
}

// Registry is the unified table of Dana-defined, host-defined, and
// imported callables.
type Registry struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]*Record
}

func New() *Registry {
	return &Registry{namespaces: map[string]map[string]*Record{DefaultNamespace: {}}}
}

// Register installs fn under name in namespace. Collisions fail unless
// overwrite is true (spec Invariant "Registry uniqueness per namespace").
func (r *Registry) Register(namespace, name string, fn *values.Function, isContextAware, overwrite bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.namespaces[namespace]
	if !ok {
		ns = make(map[string]*Record)
		r.namespaces[namespace] = ns
	}
	if _, exists := ns[name]; exists && !overwrite {
		return danaerr.NewArgumentError(danaerr.Location{}, "function %q already registered in namespace %q", name, namespace)
	}

	qualified := name
	if namespace != DefaultNamespace {
		qualified = namespace + "." + name
	}
	ns[name] = &Record{
		QualifiedName:  qualified,
		Namespace:      namespace,
		Name:           name,
		Func:           fn,
		IsAsync:        fn.IsAsync,
		IsContextAware: isContextAware,
	}
	logging.Get(logging.CategoryRegistry).Debugf("registered %s", qualified)
	return nil
}

// Resolve looks up a qualified name: "ns.name" addresses an imported
// namespace; a bare name addresses the default namespace (spec §4.3 step 1).
func (r *Registry) Resolve(qualifiedName string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ns, name, ok := splitQualified(qualifiedName); ok {
		if table, exists := r.namespaces[ns]; exists {
			if rec, found := table[name]; found {
				return rec, nil
			}
		}
		return nil, danaerr.NewNameNotBound(qualifiedName, danaerr.Location{})
	}

	if rec, found := r.namespaces[DefaultNamespace][qualifiedName]; found {
		return rec, nil
	}
	return nil, danaerr.NewNameNotBound(qualifiedName, danaerr.Location{})
}

// splitQualified splits "ns.name" into (ns, name, true), or reports false
// for an unqualified bare name.
func splitQualified(qualifiedName string) (string, string, bool) {
	i := strings.Index(qualifiedName, ".")
	if i < 0 {
		return "", "", false
	}
	return qualifiedName[:i], qualifiedName[i+1:], true
}

// Namespace returns the registered names in namespace, for module
// introspection (e.g. listing a freshly imported module's exports).
func (r *Registry) Namespace(namespace string) map[string]*Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Record, len(r.namespaces[namespace]))
	for k, v := range r.namespaces[namespace] {
		out[k] = v
	}
	return out
}

// EvalDefault evaluates a parameter's default-value expression. Supplied by
// the interpreter so BindArgs stays free of an import on internal/interp.
type EvalDefault func(ast.Expr) (values.Value, error)

// BindArgs implements the argument-binding protocol (spec §4.3 step 2):
// positional first left-to-right, then keyword, then defaults fill the
// remainder, then variadic collects leftover positional arguments.
// Unmatched required parameters raise ArgumentError.
func BindArgs(params []*ast.Param, args []values.Value, kwargs map[string]values.Value, evalDefault EvalDefault) (map[string]values.Value, error) {
	bound := make(map[string]values.Value, len(params))

	var variadic *ast.Param
	named := params
	if n := len(params); n > 0 && params[n-1].Variadic {
		variadic = params[n-1]
		named = params[:n-1]
	}

	i := 0
	for ; i < len(named) && i < len(args); i++ {
		bound[named[i].Name] = args[i]
	}

	var leftoverPositional []values.Value
	if i < len(args) {
		if variadic == nil {
			return nil, danaerr.NewArgumentError(danaerr.Location{}, "too many positional arguments: got %d, want at most %d", len(args), len(named))
		}
		leftoverPositional = args[i:]
	}

	for name, v := range kwargs {
		found := false
		for _, p := range named {
			if p.Name == name {
				if _, already := bound[p.Name]; already {
					return nil, danaerr.NewArgumentError(danaerr.Location{}, "got multiple values for argument %q", name)
				}
				bound[p.Name] = v
				found = true
				break
			}
		}
		if !found {
			return nil, danaerr.NewArgumentError(danaerr.Location{}, "unexpected keyword argument %q", name)
		}
	}

	for _, p := range named {
		if _, ok := bound[p.Name]; ok {
			continue
		}
		if p.Default != nil {
			v, err := evalDefault(p.Default)
			if err != nil {
				return nil, err
			}
			bound[p.Name] = v
			continue
		}
		return nil, danaerr.NewArgumentError(danaerr.Location{}, "missing required argument %q", p.Name)
	}

	if variadic != nil {
		bound[variadic.Name] = values.NewList(leftoverPositional...)
	}

	return bound, nil
}
