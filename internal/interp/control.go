package interp

import "github.com/dana-lang/dana/internal/values"

// sigKind discriminates the non-local control-flow signals a statement can
// produce: break/continue/return unwind through execStmt/execBlock's
// Go-level return chain rather than panicking.
type sigKind int

const (
	sigNone sigKind = iota
	sigBreak
	sigContinue
	sigReturn
	sigError
)

// signal carries a non-local control transfer up the statement-execution
// call stack. err, when set, represents a raised Dana exception (try/except
// catches it by Kind; otherwise it propagates to Run's caller).
type signal struct {
	kind  sigKind
	value values.Value
	err   error
}

func errSignal(err error) *signal { return &signal{kind: sigError, err: err} }

func returnSignal(v values.Value) *signal { return &signal{kind: sigReturn, value: v} }
