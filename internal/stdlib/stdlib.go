// Package stdlib implements Dana's built-in container/string methods and
// free functions (spec §3.1, §3.4): the operations available on every value
// without an import, as opposed to the Function Registry's user- and
// host-registered callables.
package stdlib

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

// CallMethod dispatches a built-in method call on recv. The bool result
// reports whether recv.name names a known built-in method at all, so the
// caller can distinguish "no such method" from a method that itself failed.
func CallMethod(recv values.Value, name string, args []values.Value) (values.Value, bool, error) {
	switch v := recv.(type) {
	case *values.List:
		return listMethod(v, name, args)
	case *values.Mapping:
		return mappingMethod(v, name, args)
	case *values.Set:
		return setMethod(v, name, args)
	case values.Str:
		return stringMethod(v, name, args)
	}
	return nil, false, nil
}

func arityErr(name string, want, got int) error {
	return danaerr.NewArgumentError(danaerr.Location{}, "%s() takes %d argument(s), got %d", name, want, got)
}

func listMethod(l *values.List, name string, args []values.Value) (values.Value, bool, error) {
	switch name {
	case "append":
		if len(args) != 1 {
			return nil, true, arityErr("append", 1, len(args))
		}
		l.Elems = append(l.Elems, args[0])
		return values.NullValue, true, nil
	case "pop":
		if len(l.Elems) == 0 {
			return nil, true, danaerr.NewArgumentError(danaerr.Location{}, "pop() from empty list")
		}
		last := l.Elems[len(l.Elems)-1]
		l.Elems = l.Elems[:len(l.Elems)-1]
		return last, true, nil
	case "len":
		return values.Int(len(l.Elems)), true, nil
	case "sort":
		sorted := append([]values.Value(nil), l.Elems...)
		var sortErr error
		sort.SliceStable(sorted, func(i, j int) bool {
			cmp, err := values.Compare(sorted[i], sorted[j])
			if err != nil {
				sortErr = err
			}
			return cmp < 0
		})
		if sortErr != nil {
			return nil, true, sortErr
		}
		l.Elems = sorted
		return values.NullValue, true, nil
	case "reverse":
		for i, j := 0, len(l.Elems)-1; i < j; i, j = i+1, j-1 {
			l.Elems[i], l.Elems[j] = l.Elems[j], l.Elems[i]
		}
		return values.NullValue, true, nil
	}
	return nil, false, nil
}

func mappingMethod(m *values.Mapping, name string, args []values.Value) (values.Value, bool, error) {
	switch name {
	case "keys":
		return values.NewList(m.Keys()...), true, nil
	case "values":
		keys := m.Keys()
		out := make([]values.Value, len(keys))
		for i, k := range keys {
			out[i], _ = m.Get(k)
		}
		return values.NewList(out...), true, nil
	case "items":
		keys := m.Keys()
		out := make([]values.Value, len(keys))
		for i, k := range keys {
			v, _ := m.Get(k)
			out[i] = values.NewTuple(k, v)
		}
		return values.NewList(out...), true, nil
	case "get":
		if len(args) < 1 || len(args) > 2 {
			return nil, true, arityErr("get", 1, len(args))
		}
		if v, ok := m.Get(args[0]); ok {
			return v, true, nil
		}
		if len(args) == 2 {
			return args[1], true, nil
		}
		return values.NullValue, true, nil
	case "len":
		return values.Int(m.Len()), true, nil
	}
	return nil, false, nil
}

func setMethod(s *values.Set, name string, args []values.Value) (values.Value, bool, error) {
	switch name {
	case "add":
		if len(args) != 1 {
			return nil, true, arityErr("add", 1, len(args))
		}
		s.Add(args[0])
		return values.NullValue, true, nil
	case "remove":
		if len(args) != 1 {
			return nil, true, arityErr("remove", 1, len(args))
		}
		s.Remove(args[0])
		return values.NullValue, true, nil
	case "len":
		return values.Int(s.Len()), true, nil
	}
	return nil, false, nil
}

func stringMethod(s values.Str, name string, args []values.Value) (values.Value, bool, error) {
	str := string(s)
	switch name {
	case "upper":
		return values.Str(strings.ToUpper(str)), true, nil
	case "lower":
		return values.Str(strings.ToLower(str)), true, nil
	case "strip":
		return values.Str(strings.TrimSpace(str)), true, nil
	case "split":
		sep := " "
		if len(args) == 1 {
			a, ok := args[0].(values.Str)
			if !ok {
				return nil, true, danaerr.NewArgumentError(danaerr.Location{}, "split() separator must be a string")
			}
			sep = string(a)
		}
		parts := strings.Split(str, sep)
		out := make([]values.Value, len(parts))
		for i, p := range parts {
			out[i] = values.Str(p)
		}
		return values.NewList(out...), true, nil
	case "join":
		if len(args) != 1 {
			return nil, true, arityErr("join", 1, len(args))
		}
		list, ok := args[0].(*values.List)
		if !ok {
			return nil, true, danaerr.NewArgumentError(danaerr.Location{}, "join() argument must be a list")
		}
		parts := make([]string, len(list.Elems))
		for i, e := range list.Elems {
			es, ok := e.(values.Str)
			if !ok {
				return nil, true, danaerr.NewArgumentError(danaerr.Location{}, "join() list elements must be strings")
			}
			parts[i] = string(es)
		}
		return values.Str(strings.Join(parts, str)), true, nil
	case "len":
		return values.Int(len([]rune(str))), true, nil
	case "format":
		out := str
		for _, a := range args {
			out = strings.Replace(out, "{}", fmt.Sprint(a.String()), 1)
		}
		return values.Str(out), true, nil
	}
	return nil, false, nil
}
