package context

import "github.com/dana-lang/dana/internal/values"

// Frame is one call-stack entry: a fresh `local` scope plus the resources
// acquired (via `use()` outside a `with`) that this frame owns and must
// clean up when it pops (spec §3.6 "Resource liveness", §4.2 `pop_frame`).
type Frame struct {
	locals *table
	owned  []*values.Resource
	// parent is the lexically-enclosing frame captured at function-value
	// creation time (spec §4.2: "closures ... capture a reference to the
	// declaring frame's bindings"). It is distinct from the call stack: a
	// deeply nested call can have a shallow closure parent, and vice versa.
	parent *Frame
	// label is a human-readable tag (function name, "<module>", "<lambda>")
	// surfaced by Describe() for diagnostics and as the ClosureEnv identity.
	label string
}

func newFrame(label string, parent *Frame) *Frame {
	return &Frame{locals: newTable(), label: label, parent: parent}
}

// Describe implements values.ClosureEnv.
func (f *Frame) Describe() string { return f.label }

func (f *Frame) get(name string) (values.Value, bool) {
	return f.locals.get(name)
}

// lookupChain searches this frame, then its closure-parent chain, for name
// (spec §4.2: reads across frames are only allowed via closures).
func (f *Frame) lookupChain(name string) (values.Value, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if v, ok := cur.locals.get(name); ok {
			return v, true
		}
	}
	return nil, false
}

func (f *Frame) set(name string, v values.Value) (values.Value, bool) {
	return f.locals.set(name, v)
}

// own registers r for cleanup in reverse acquisition order when this frame
// pops (spec Invariant 7: "Resources acquired in order r1, r2, r3 are
// cleaned up in order r3, r2, r1").
func (f *Frame) own(r *values.Resource) {
	f.owned = append(f.owned, r)
}
