package values

import (
	"fmt"
)

// ArithError reports an incompatible-type or division-by-zero condition;
// callers translate this to danaerr.TypeError (spec §8.3: "Division by
// zero raises TypeError (not a silent inf)").
type ArithError struct{ Msg string }

func (e *ArithError) Error() string { return e.Msg }

func numErr(format string, args ...any) error {
	return &ArithError{Msg: fmt.Sprintf(format, args...)}
}

func asFloat(v Value) (float64, bool) {
	switch t := v.(type) {
	case Int:
		return float64(t), true
	case Float:
		return float64(t), true
	}
	return 0, false
}

func bothInt(a, b Value) (Int, Int, bool) {
	ai, aok := a.(Int)
	bi, bok := b.(Int)
	return ai, bi, aok && bok
}

// Add implements +: numeric addition (int+float promotes to float),
// string concatenation, and list concatenation (spec §3.1).
func Add(a, b Value) (Value, error) {
	if ai, bi, ok := bothInt(a, b); ok {
		return ai + bi, nil
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return Float(af + bf), nil
		}
	}
	if as, aok := a.(Str); aok {
		bs, bok := b.(Str)
		if !bok {
			return nil, numErr("string concatenation requires both operands to be string, got %s", b.Type())
		}
		return as + bs, nil
	}
	if al, aok := a.(*List); aok {
		bl, bok := b.(*List)
		if !bok {
			return nil, numErr("cannot add %s to list", b.Type())
		}
		out := make([]Value, 0, len(al.Elems)+len(bl.Elems))
		out = append(out, al.Elems...)
		out = append(out, bl.Elems...)
		return &List{Elems: out}, nil
	}
	if at, aok := a.(*Tuple); aok {
		bt, bok := b.(*Tuple)
		if !bok {
			return nil, numErr("cannot add %s to tuple", b.Type())
		}
		out := make([]Value, 0, len(at.Elems)+len(bt.Elems))
		out = append(out, at.Elems...)
		out = append(out, bt.Elems...)
		return &Tuple{Elems: out}, nil
	}
	return nil, numErr("unsupported operand types for +: %s and %s", a.Type(), b.Type())
}

// Sub implements -.
func Sub(a, b Value) (Value, error) {
	if ai, bi, ok := bothInt(a, b); ok {
		return ai - bi, nil
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return Float(af - bf), nil
		}
	}
	return nil, numErr("unsupported operand types for -: %s and %s", a.Type(), b.Type())
}

// Mul implements *.
func Mul(a, b Value) (Value, error) {
	if ai, bi, ok := bothInt(a, b); ok {
		return ai * bi, nil
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return Float(af * bf), nil
		}
	}
	if as, aok := a.(Str); aok {
		if bi, bok := b.(Int); bok {
			return repeatString(string(as), int64(bi)), nil
		}
	}
	return nil, numErr("unsupported operand types for *: %s and %s", a.Type(), b.Type())
}

func repeatString(s string, n int64) Str {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, s...)
	}
	return Str(out)
}

// Div implements / with division-by-zero raising ArithError (spec §8.3).
func Div(a, b Value) (Value, error) {
	if ai, bi, ok := bothInt(a, b); ok {
		if bi == 0 {
			return nil, numErr("division by zero")
		}
		// int/int follows the language's arithmetic coercion rule: promote
		// to float unless evenly divisible, matching dynamic-typing
		// expectations for a scripting-style numeric tower.
		if ai%bi == 0 {
			return ai / bi, nil
		}
		return Float(float64(ai) / float64(bi)), nil
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return nil, numErr("unsupported operand types for /: %s and %s", a.Type(), b.Type())
	}
	if bf == 0 {
		return nil, numErr("division by zero")
	}
	return Float(af / bf), nil
}

// Mod implements %.
func Mod(a, b Value) (Value, error) {
	if ai, bi, ok := bothInt(a, b); ok {
		if bi == 0 {
			return nil, numErr("modulo by zero")
		}
		return ai % bi, nil
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return nil, numErr("unsupported operand types for %%: %s and %s", a.Type(), b.Type())
	}
	if bf == 0 {
		return nil, numErr("modulo by zero")
	}
	r := af - bf*float64(int64(af/bf))
	return Float(r), nil
}

// Pow implements **.
func Pow(a, b Value) (Value, error) {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return nil, numErr("unsupported operand types for **: %s and %s", a.Type(), b.Type())
	}
	result := pow(af, bf)
	if _, _, bothInts := bothInt(a, b); bothInts && bf >= 0 {
		return Int(int64(result)), nil
	}
	return Float(result), nil
}

func pow(base, exp float64) float64 {
	if exp == 0 {
		return 1
	}
	result := 1.0
	neg := exp < 0
	n := exp
	if neg {
		n = -n
	}
	for i := 0; i < int(n); i++ {
		result *= base
	}
	if neg {
		return 1 / result
	}
	return result
}

// Compare returns -1/0/1 for ordered types, and an error for
// non-comparable combinations (used by <, <=, >, >=).
func Compare(a, b Value) (int, error) {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	if as, aok := a.(Str); aok {
		if bs, bok := b.(Str); bok {
			switch {
			case as < bs:
				return -1, nil
			case as > bs:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	return 0, numErr("unsupported comparison between %s and %s", a.Type(), b.Type())
}

// Contains implements `in` for lists, tuples, sets, mappings (keys), and
// strings (substring) per spec §4.4.2.
func Contains(needle, haystack Value) (bool, error) {
	switch h := haystack.(type) {
	case *List:
		for _, e := range h.Elems {
			if Equal(e, needle) {
				return true, nil
			}
		}
		return false, nil
	case *Tuple:
		for _, e := range h.Elems {
			if Equal(e, needle) {
				return true, nil
			}
		}
		return false, nil
	case *Set:
		return h.Contains(needle), nil
	case *Mapping:
		_, ok := h.Get(needle)
		return ok, nil
	case Str:
		n, ok := needle.(Str)
		if !ok {
			return false, numErr("'in' on string requires a string operand, got %s", needle.Type())
		}
		return containsSub(string(h), string(n)), nil
	}
	return false, numErr("argument of type '%s' is not iterable for 'in'", haystack.Type())
}

func containsSub(s, sub string) bool {
	if sub == "" {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
