// Package context implements Dana's Execution Context (spec §4.2): the
// four-scope memory model (local/private/public/system) and the call-frame
// stack that backs function invocation and resource ownership.
package context

import (
	"fmt"

	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/logging"
	syncadapter "github.com/dana-lang/dana/internal/sync"
	"github.com/dana-lang/dana/internal/values"
)

// resolveOrder is the scope search order for a bare identifier (spec §3.2).
var resolveOrder = []Scope{Local, Private, Public, System}

// Context holds one program execution's private/public scopes and its
// call-frame stack. The system scope is process-wide and shared across
// every Context (see scope.go's systemScope singleton).
type Context struct {
	private *table
	public  *table
	frames  []*Frame

	// OnRelease, if set, is called after a resource successfully
	// terminates (spec §6.2 item 6: "resource acquisition/release").
	// Acquisition is observed one layer up, in internal/interp's evalUse,
	// since Context itself has no notion of the kind/name pair until a
	// *values.Resource already carries it.
	OnRelease func(kind, name string)
}

// New creates a Context with its private/public tables and the initial
// module-level frame already pushed, so top-level statements always run
// inside a frame like any other call (spec §4.2 frame semantics).
func New() *Context {
	c := &Context{private: newTable(), public: newTable()}
	c.frames = []*Frame{newFrame("<module>", nil)}
	return c
}

func (c *Context) tableFor(s Scope) (*table, error) {
	switch s {
	case Private:
		return c.private, nil
	case Public:
		return c.public, nil
	case System:
		return systemScope(), nil
	case Local:
		return c.frame().locals, nil
	}
	return nil, danaerr.NewInternalError("unknown scope %q", s)
}

func (c *Context) frame() *Frame {
	return c.frames[len(c.frames)-1]
}

// CurrentFrame exposes the top frame, e.g. so the interpreter can pass it
// as a function value's ClosureEnv at definition time.
func (c *Context) CurrentFrame() *Frame { return c.frame() }

// Get reads name from the named scope directly (no search), per §4.2.
func (c *Context) Get(scope Scope, name string) (values.Value, error) {
	t, err := c.tableFor(scope)
	if err != nil {
		return nil, err
	}
	if scope == Local {
		v, ok := c.frame().lookupChain(name)
		if !ok {
			return nil, danaerr.NewNameNotBound(fmt.Sprintf("local:%s", name), danaerr.Location{})
		}
		return v, nil
	}
	v, ok := t.get(name)
	if !ok {
		return nil, danaerr.NewNameNotBound(fmt.Sprintf("%s:%s", scope, name), danaerr.Location{})
	}
	return v, nil
}

// Set assigns name in the named scope and returns the prior value, if any
// (spec §4.2). A bare, unscoped assignment always targets Local; callers
// resolve the scope before calling Set.
func (c *Context) Set(scope Scope, name string, v values.Value) (values.Value, bool) {
	if scope == Local {
		return c.frame().set(name, v)
	}
	t, err := c.tableFor(scope)
	if err != nil {
		logging.Get(logging.CategoryContext).Errorf("Set: %v", err)
		return nil, false
	}
	return t.set(name, v)
}

// Resolve searches local -> private -> public -> system for a bare
// identifier (spec §3.2, §4.2) and reports which scope satisfied it.
func (c *Context) Resolve(name string) (Scope, values.Value, error) {
	for _, s := range resolveOrder {
		t, err := c.tableFor(s)
		if err != nil {
			return "", nil, err
		}
		var v values.Value
		var ok bool
		if s == Local {
			v, ok = c.frame().lookupChain(name)
		} else {
			v, ok = t.get(name)
		}
		if ok {
			return s, v, nil
		}
	}
	return "", nil, danaerr.NewNameNotBound(name, danaerr.Location{})
}

// PushFrame pushes a fresh `local` frame, e.g. on function entry (spec
// §4.2). label identifies the frame for diagnostics and closure identity;
// parent is the closure's lexically-enclosing frame (nil for a non-closure
// call, e.g. a top-level def invoked directly).
func (c *Context) PushFrame(label string, parent *Frame) *Frame {
	f := newFrame(label, parent)
	c.frames = append(c.frames, f)
	return f
}

// PopFrame pops the current frame, running `_cleanup_resource` for every
// resource it owns in reverse acquisition order (spec §4.2, §3.6, Invariant
// 7). Cleanup errors are logged and suppressed, matching §4.5.4: "does not
// overwrite an in-flight exception."
func (c *Context) PopFrame() error {
	if len(c.frames) <= 1 {
		return danaerr.NewInternalError("cannot pop the module frame")
	}
	f := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	c.cleanupOwned(f)
	return nil
}

func (c *Context) cleanupOwned(f *Frame) {
	for i := len(f.owned) - 1; i >= 0; i-- {
		c.cleanupOne(f.owned[i])
	}
}

func (c *Context) cleanupOne(r *values.Resource) {
	if r.State() != values.StateRunning {
		return
	}
	r.SetState(values.StateTerminating)
	if r.Hooks != nil {
		if err := r.Hooks.CleanupResource(c); err != nil {
			logging.Get(logging.CategoryContext).Errorf("cleanup of resource %s.%s failed: %v", r.Kind, r.Name, err)
			r.SetState(values.StateFailed)
			return
		}
	}
	r.SetState(values.StateTerminated)
	if c.OnRelease != nil {
		c.OnRelease(r.Kind, r.Name)
	}
}

// OwnResource registers r for cleanup when the current frame pops (spec
// §4.2 `own_resource`, §4.5.4 trigger 3: scope pop for resources not
// acquired inside a `with`).
func (c *Context) OwnResource(r *values.Resource) {
	c.frame().own(r)
}

// Shutdown cleans up every resource still owned by the module-level frame
// (spec §4.5.4 trigger 4: program termination). Call once, after a
// top-level program has finished running or failed; ordinary
// function-scope cleanup already runs through PopFrame (trigger 3) as each
// call returns, so by the time Shutdown runs only resources the module
// itself acquired remain. Fanned out concurrently via
// syncadapter.ShutdownAll rather than PopFrame's sequential reverse walk,
// so the order of these cleanups is not defined.
func (c *Context) Shutdown() error {
	f := c.frames[0]
	owned := f.owned
	f.owned = nil
	return syncadapter.ShutdownAll(owned, c.cleanupForShutdown)
}

func (c *Context) cleanupForShutdown(r *values.Resource) error {
	if r.State() != values.StateRunning {
		return nil
	}
	r.SetState(values.StateTerminating)
	if r.Hooks != nil {
		if err := r.Hooks.CleanupResource(c); err != nil {
			logging.Get(logging.CategoryContext).Errorf("shutdown cleanup of resource %s.%s failed: %v", r.Kind, r.Name, err)
			r.SetState(values.StateFailed)
			return err
		}
	}
	r.SetState(values.StateTerminated)
	if c.OnRelease != nil {
		c.OnRelease(r.Kind, r.Name)
	}
	return nil
}
