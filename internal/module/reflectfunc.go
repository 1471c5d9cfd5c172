package module

import (
	"fmt"
	"reflect"

	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// wrapGoFunc adapts an arbitrary Go function (as introspected from a
// compiled-in or yaegi-interpreted host module) into a values.NativeFunc,
// converting Dana values to the function's declared parameter types and
// its return values back. Supports the shapes a host module realistically
// exports: (args...) T, (args...) (T, error), (args...) error.
func wrapGoFunc(name string, fn reflect.Value) (values.NativeFunc, error) {
	t := fn.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("module: %s is not a function", name)
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("module: %s: variadic host functions are not supported", name)
	}

	return func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		if len(kwargs) > 0 {
			return nil, danaerr.NewArgumentError(danaerr.Location{}, "%s: host functions accept positional arguments only", name)
		}
		if len(args) != t.NumIn() {
			return nil, danaerr.NewArgumentError(danaerr.Location{}, "%s: want %d argument(s), got %d", name, t.NumIn(), len(args))
		}
		in := make([]reflect.Value, t.NumIn())
		for i, a := range args {
			v, err := valueToGo(a, t.In(i))
			if err != nil {
				return nil, danaerr.NewTypeError(danaerr.Location{}, "%s: argument %d: %v", name, i, err)
			}
			in[i] = v
		}
		out := fn.Call(in)
		return goResultsToValue(name, out)
	}, nil
}

func valueToGo(v values.Value, want reflect.Type) (reflect.Value, error) {
	switch want.Kind() {
	case reflect.String:
		s, ok := v.(values.Str)
		if !ok {
			return reflect.Value{}, fmt.Errorf("want string, got %s", v.Type())
		}
		return reflect.ValueOf(string(s)).Convert(want), nil
	case reflect.Bool:
		b, ok := v.(values.Bool)
		if !ok {
			return reflect.Value{}, fmt.Errorf("want bool, got %s", v.Type())
		}
		return reflect.ValueOf(bool(b)).Convert(want), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := v.(values.Int)
		if !ok {
			return reflect.Value{}, fmt.Errorf("want int, got %s", v.Type())
		}
		return reflect.ValueOf(int64(n)).Convert(want), nil
	case reflect.Float32, reflect.Float64:
		switch n := v.(type) {
		case values.Float:
			return reflect.ValueOf(float64(n)).Convert(want), nil
		case values.Int:
			return reflect.ValueOf(float64(n)).Convert(want), nil
		}
		return reflect.Value{}, fmt.Errorf("want float, got %s", v.Type())
	default:
		return reflect.Value{}, fmt.Errorf("unsupported host parameter type %s", want)
	}
}

func goResultsToValue(name string, out []reflect.Value) (values.Value, error) {
	if len(out) == 0 {
		return values.NullValue, nil
	}
	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			return nil, danaerr.WrapHost(last.Interface().(error))
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return values.NullValue, nil
	}
	if len(out) > 1 {
		return nil, fmt.Errorf("module: %s: host functions returning more than one value (besides error) are not supported", name)
	}
	return goToValue(out[0])
}

func goToValue(v reflect.Value) (values.Value, error) {
	switch v.Kind() {
	case reflect.String:
		return values.Str(v.String()), nil
	case reflect.Bool:
		return values.Bool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return values.Int(v.Int()), nil
	case reflect.Float32, reflect.Float64:
		return values.Float(v.Float()), nil
	default:
		return nil, fmt.Errorf("unsupported host return type %s", v.Type())
	}
}
