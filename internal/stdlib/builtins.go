package stdlib

import (
	"fmt"
	"strconv"

	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/registry"
	"github.com/dana-lang/dana/internal/values"
)

// RegisterBuiltins installs Dana's built-in free functions into reg's
// default namespace (spec §3.1: len/str/int/float/bool conversions and
// introspection, available without an import).
func RegisterBuiltins(reg *registry.Registry) error {
	for name, nf := range builtins {
		fn := &values.Function{Name: name, Native: nf}
		if err := reg.Register(registry.DefaultNamespace, name, fn, false, false); err != nil {
			return err
		}
	}
	return nil
}

var builtins = map[string]values.NativeFunc{
	"len":   builtinLen,
	"str":   builtinStr,
	"int":   builtinInt,
	"float": builtinFloat,
	"bool":  builtinBool,
	"range": builtinRange,
	"print": builtinPrint,
}

func builtinLen(_ any, args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("len", 1, len(args))
	}
	switch v := args[0].(type) {
	case values.Str:
		return values.Int(len([]rune(string(v)))), nil
	case *values.List:
		return values.Int(len(v.Elems)), nil
	case *values.Tuple:
		return values.Int(len(v.Elems)), nil
	case *values.Set:
		return values.Int(v.Len()), nil
	case *values.Mapping:
		return values.Int(v.Len()), nil
	}
	return nil, danaerr.NewTypeError(danaerr.Location{}, "object of type %s has no len()", args[0].Type())
}

func builtinStr(_ any, args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("str", 1, len(args))
	}
	return values.Str(args[0].String()), nil
}

func builtinInt(_ any, args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("int", 1, len(args))
	}
	switch v := args[0].(type) {
	case values.Int:
		return v, nil
	case values.Float:
		return values.Int(int64(v)), nil
	case values.Bool:
		if v {
			return values.Int(1), nil
		}
		return values.Int(0), nil
	case values.Str:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return nil, danaerr.NewTypeCoercionError(err, "cannot convert %q to int", string(v))
		}
		return values.Int(n), nil
	}
	return nil, danaerr.NewTypeError(danaerr.Location{}, "cannot convert %s to int", args[0].Type())
}

func builtinFloat(_ any, args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("float", 1, len(args))
	}
	switch v := args[0].(type) {
	case values.Float:
		return v, nil
	case values.Int:
		return values.Float(v), nil
	case values.Str:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil, danaerr.NewTypeCoercionError(err, "cannot convert %q to float", string(v))
		}
		return values.Float(f), nil
	}
	return nil, danaerr.NewTypeError(danaerr.Location{}, "cannot convert %s to float", args[0].Type())
}

func builtinBool(_ any, args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("bool", 1, len(args))
	}
	return values.Bool(values.Truthy(args[0])), nil
}

func builtinRange(_ any, args []values.Value, _ map[string]values.Value) (values.Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		n, ok := args[0].(values.Int)
		if !ok {
			return nil, danaerr.NewArgumentError(danaerr.Location{}, "range() arguments must be int")
		}
		stop = int64(n)
	case 2, 3:
		a, aok := args[0].(values.Int)
		b, bok := args[1].(values.Int)
		if !aok || !bok {
			return nil, danaerr.NewArgumentError(danaerr.Location{}, "range() arguments must be int")
		}
		start, stop = int64(a), int64(b)
		if len(args) == 3 {
			s, ok := args[2].(values.Int)
			if !ok {
				return nil, danaerr.NewArgumentError(danaerr.Location{}, "range() arguments must be int")
			}
			step = int64(s)
		}
	default:
		return nil, danaerr.NewArgumentError(danaerr.Location{}, "range() takes 1 to 3 arguments, got %d", len(args))
	}
	if step == 0 {
		return nil, danaerr.NewArgumentError(danaerr.Location{}, "range() step must not be zero")
	}
	var out []values.Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, values.Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, values.Int(i))
		}
	}
	return values.NewList(out...), nil
}

func builtinPrint(_ any, args []values.Value, _ map[string]values.Value) (values.Value, error) {
	parts := make([]any, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Println(parts...)
	return values.NullValue, nil
}
