package interp

import (
	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/logging"
	"github.com/dana-lang/dana/internal/values"
)

// execWith implements `with` (spec §4.5.1): acquires each binding's
// resource in order, running `_initialize_resource`, then runs the body,
// then releases every acquired resource in reverse order via
// `_cleanup_resource` (or `_emergency_cleanup` if the body raised).
func (ip *Interpreter) execWith(s *ast.WithStatement) *signal {
	var acquired []*values.Resource

	for _, b := range s.Bindings {
		v, sig := ip.evalExpr(b.Expr)
		if sig != nil {
			ip.releaseWith(acquired, sig.err)
			return sig
		}
		r, ok := v.(*values.Resource)
		if !ok {
			err := danaerr.NewTypeError(ip.loc(s), "with-binding expression must evaluate to a resource, got %s", v.Type())
			ip.releaseWith(acquired, err)
			return errSignal(err)
		}
		if err := ip.initializeWith(r); err != nil {
			ip.releaseWith(acquired, err)
			return errSignal(err)
		}
		acquired = append(acquired, r)
		if b.Name != "" {
			ip.Ctx.Set(context.Local, b.Name, r)
		}
	}

	sig := ip.execBlock(s.Body)
	var cause error
	if sig != nil && sig.kind == sigError {
		cause = sig.err
	}
	ip.releaseWith(acquired, cause)
	return sig
}

func (ip *Interpreter) initializeWith(r *values.Resource) error {
	r.SetState(values.StateInitializing)
	if r.Hooks != nil {
		if err := r.Hooks.InitializeResource(ip.Ctx); err != nil {
			wrapped := danaerr.WrapHost(err)
			r.Hooks.EmergencyCleanup(ip.Ctx, wrapped)
			r.SetState(values.StateFailed)
			return wrapped
		}
	}
	r.SetState(values.StateRunning)
	return nil
}

// releaseWith tears down acquired in reverse acquisition order. cause
// non-nil routes through _emergency_cleanup instead of the normal
// _cleanup_resource path (spec §4.5.4).
func (ip *Interpreter) releaseWith(acquired []*values.Resource, cause error) {
	for i := len(acquired) - 1; i >= 0; i-- {
		r := acquired[i]
		if r.State() != values.StateRunning {
			continue
		}
		if cause != nil {
			if r.Hooks != nil {
				r.Hooks.EmergencyCleanup(ip.Ctx, cause)
			}
			r.SetState(values.StateFailed)
			continue
		}
		r.SetState(values.StateTerminating)
		if r.Hooks != nil {
			if err := r.Hooks.CleanupResource(ip.Ctx); err != nil {
				logging.Get(logging.CategoryInterp).Errorf("with-cleanup of %s.%s failed: %v", r.Kind, r.Name, err)
				r.SetState(values.StateFailed)
				continue
			}
		}
		r.SetState(values.StateTerminated)
	}
}
