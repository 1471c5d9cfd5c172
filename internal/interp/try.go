package interp

import (
	"errors"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

// errorValueOf converts a caught error to the Dana-visible value bound by
// `except ... as name`.
func errorValueOf(err error) *values.ErrorValue {
	var de *danaerr.DanaErr
	if errors.As(err, &de) {
		return &values.ErrorValue{Kind: string(de.Kind), Message: de.Message, Location: de.Location.String()}
	}
	return &values.ErrorValue{Kind: string(danaerr.KindHostError), Message: err.Error()}
}

// execTry implements try/except*/finally (spec §4.5.1, §7). An except
// clause with an empty Type matches any DanaError; otherwise it matches by
// Kind. finally always runs, whether or not an exception was caught.
func (ip *Interpreter) execTry(s *ast.TryStatement) *signal {
	sig := ip.execBlock(s.Body)

	if sig != nil && sig.kind == sigError {
		if handled, hsig := ip.runExceptClauses(s.Excepts, sig.err); handled {
			sig = hsig
		}
	}

	if s.Finally != nil {
		if fsig := ip.execBlock(s.Finally); fsig != nil {
			// finally's own control flow (return/break/continue/error)
			// supersedes whatever the try/except produced, matching the
			// ordinary "later statement wins" rule for sequential execution.
			return fsig
		}
	}
	return sig
}

func (ip *Interpreter) runExceptClauses(excepts []ast.ExceptClause, err error) (bool, *signal) {
	for _, ec := range excepts {
		if ec.Type != "" && !danaerr.Of(err, danaerr.Kind(ec.Type)) {
			continue
		}
		if ec.As != "" {
			ip.Ctx.Set(context.Local, ec.As, errorValueOf(err))
		}
		return true, ip.execBlock(ec.Body)
	}
	return false, nil
}
