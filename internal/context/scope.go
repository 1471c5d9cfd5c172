package context

import (
	"sync"

	"github.com/dana-lang/dana/internal/values"
)

// Scope identifies one of Dana's four named scopes (spec §3.2).
type Scope string

const (
	Local   Scope = "local"
	Private Scope = "private"
	Public  Scope = "public"
	System  Scope = "system"
)

// IsScope reports whether s names one of the four reserved scopes, used by
// the parser/interpreter to validate a `scope:name` prefix.
func IsScope(s string) bool {
	switch Scope(s) {
	case Local, Private, Public, System:
		return true
	}
	return false
}

// table is a mutex-guarded binding set. Public and system scopes are
// concurrently readable/writable (spec §5: "system: scope is process-wide
// and mutable by any program"), so every table carries its own lock rather
// than relying on single-threaded discipline.
type table struct {
	mu   sync.RWMutex
	vars map[string]values.Value
}

func newTable() *table {
	return &table{vars: make(map[string]values.Value)}
}

func (t *table) get(name string) (values.Value, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.vars[name]
	return v, ok
}

// set returns the prior value, if any, per §4.2's "assigns; returns prior
// value if any".
func (t *table) set(name string, v values.Value) (values.Value, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, had := t.vars[name]
	t.vars[name] = v
	return prev, had
}

var (
	systemOnce  sync.Once
	systemTable *table
)

// systemScope returns the single process-wide system table shared by every
// Context in this process (spec §3.2, §5: "system scope is process-wide").
func systemScope() *table {
	systemOnce.Do(func() { systemTable = newTable() })
	return systemTable
}

// ResetSystemScopeForTest clears the process-wide system table. Test-only:
// production code never needs to reset process-wide state mid-run.
func ResetSystemScopeForTest() {
	systemOnce = sync.Once{}
	systemScope()
}
