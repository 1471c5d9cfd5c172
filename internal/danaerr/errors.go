// Package danaerr defines the Dana error taxonomy (spec §7). Every error
// the runtime raises to Dana-level try/except implements DanaError and
// carries a Kind that except-clauses can match against; host-raised errors
// that don't already implement DanaError are wrapped in HostError.
package danaerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories except-clauses can match.
type Kind string

const (
	KindParseError        Kind = "ParseError"
	KindNameNotBound      Kind = "NameNotBound"
	KindTypeError         Kind = "TypeError"
	KindArgumentError     Kind = "ArgumentError"
	KindResourceNotActive Kind = "ResourceNotActive"
	KindLLMUnavailable    Kind = "LLMUnavailable"
	KindTypeCoercionError Kind = "TypeCoercionError"
	KindTimeout           Kind = "Timeout"
	KindCircularImport    Kind = "CircularImport"
	KindInternalError     Kind = "InternalError"
	KindHostError         Kind = "HostError"
)

// Location is a source position for diagnostics.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" && l.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Frame is one entry of a Dana call-stack trace (function name + line).
type Frame struct {
	Function string
	Location Location
}

// DanaErr is the concrete error type for every Kind. Constructed via the
// New* helpers below rather than directly.
type DanaErr struct {
	Kind     Kind
	Message  string
	Location Location
	Trace    []Frame
	Wrapped  error
}

func (e *DanaErr) Error() string {
	loc := e.Location.String()
	if loc != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, loc)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DanaErr) Unwrap() error { return e.Wrapped }

// Is makes errors.Is match by Kind when the target is a *DanaErr:
// errors.Is(err, &DanaErr{Kind: KindX}) holds when err is or wraps a
// *DanaErr of KindX. A bare Kind is not an error and cannot be a target.
func (e *DanaErr) Is(target error) bool {
	var other *DanaErr
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// WithTrace appends a call-stack frame and returns the same error, so
// unwinding code can do `return err.WithTrace(...)` at each frame.
func (e *DanaErr) WithTrace(fn string, loc Location) *DanaErr {
	e.Trace = append(e.Trace, Frame{Function: fn, Location: loc})
	return e
}

func new_(kind Kind, loc Location, wrapped error, format string, args ...any) *DanaErr {
	return &DanaErr{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
		Wrapped:  wrapped,
	}
}

func NewParseError(loc Location, format string, args ...any) *DanaErr {
	return new_(KindParseError, loc, nil, format, args...)
}

func NewNameNotBound(name string, loc Location) *DanaErr {
	return new_(KindNameNotBound, loc, nil, "name not bound: %s", name)
}

func NewTypeError(loc Location, format string, args ...any) *DanaErr {
	return new_(KindTypeError, loc, nil, format, args...)
}

func NewArgumentError(loc Location, format string, args ...any) *DanaErr {
	return new_(KindArgumentError, loc, nil, format, args...)
}

func NewResourceNotActive(kind, name, state string) *DanaErr {
	return new_(KindResourceNotActive, Location{}, nil,
		"resource %s.%s is not RUNNING (state=%s)", kind, name, state)
}

func NewLLMUnavailable(wrapped error, format string, args ...any) *DanaErr {
	return new_(KindLLMUnavailable, Location{}, wrapped, format, args...)
}

func NewTypeCoercionError(wrapped error, format string, args ...any) *DanaErr {
	return new_(KindTypeCoercionError, Location{}, wrapped, format, args...)
}

func NewTimeout(format string, args ...any) *DanaErr {
	return new_(KindTimeout, Location{}, nil, format, args...)
}

func NewCircularImport(path string) *DanaErr {
	return new_(KindCircularImport, Location{}, nil, "circular import involving %s", path)
}

func NewInternalError(format string, args ...any) *DanaErr {
	return new_(KindInternalError, Location{}, nil, format, args...)
}

// WrapHost wraps a non-DanaError host error as HostError, unless err is
// already (or wraps) a *DanaErr, in which case it passes through
// unchanged — matching §7's "Host-raised exceptions are wrapped in
// HostError unless they derive from DanaError".
func WrapHost(err error) error {
	if err == nil {
		return nil
	}
	var de *DanaErr
	if errors.As(err, &de) {
		return err
	}
	return new_(KindHostError, Location{}, err, "%v", err)
}

// Of reports whether the first *DanaErr in err's unwrap chain has the
// given kind. A DanaErr of that kind wrapped inside a DanaErr of another
// kind does not match.
func Of(err error, kind Kind) bool {
	var de *DanaErr
	if !errors.As(err, &de) {
		return false
	}
	return de.Kind == kind
}
