// Package values implements the Dana runtime value model (spec §3.1):
// int, float, bool, string, null, list, tuple, set, mapping, struct
// instance, function, resource, and promise.
package values

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is implemented by every Dana runtime value.
type Value interface {
	Type() string
	String() string
}

// Null is the single null value.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }

// NullValue is the shared Null instance.
var NullValue = Null{}

// Int is Dana's integer type. The runtime uses 64-bit signed integers
// (spec §3.1 permits either arbitrary precision or 64-bit; 64-bit is the
// idiomatic Go choice and what the teacher's Mangle-fact encoding uses for
// ast.Number).
type Int int64

func (Int) Type() string     { return "int" }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Float is Dana's IEEE-754 double.
type Float float64

func (Float) Type() string     { return "float" }
func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

// Bool is a distinct type, never an int (spec §3.1).
type Bool bool

func (Bool) Type() string     { return "bool" }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Str is Dana's immutable UTF-8 string.
type Str string

func (Str) Type() string     { return "string" }
func (s Str) String() string { return string(s) }

// List is an ordered, mutable, heterogeneous sequence.
type List struct {
	Elems []Value
}

func NewList(elems ...Value) *List { return &List{Elems: elems} }

func (*List) Type() string { return "list" }
func (l *List) String() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = reprOf(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Tuple is an ordered, immutable, heterogeneous sequence.
type Tuple struct {
	Elems []Value
}

func NewTuple(elems ...Value) *Tuple { return &Tuple{Elems: elems} }

func (*Tuple) Type() string { return "tuple" }
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = reprOf(e)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Set is an unordered unique collection, keyed by String() for hashing
// simplicity (sufficient for Dana's value model: ints/strings/bools/
// floats, which is what set elements are realistically used for).
type Set struct {
	order []string
	items map[string]Value
}

func NewSet(elems ...Value) *Set {
	s := &Set{items: make(map[string]Value)}
	for _, e := range elems {
		s.Add(e)
	}
	return s
}

func (s *Set) Add(v Value) {
	key := hashKey(v)
	if _, exists := s.items[key]; !exists {
		s.order = append(s.order, key)
	}
	s.items[key] = v
}

func (s *Set) Contains(v Value) bool {
	_, ok := s.items[hashKey(v)]
	return ok
}

func (s *Set) Remove(v Value) {
	key := hashKey(v)
	if _, ok := s.items[key]; ok {
		delete(s.items, key)
		for i, k := range s.order {
			if k == key {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *Set) Values() []Value {
	out := make([]Value, len(s.order))
	for i, k := range s.order {
		out[i] = s.items[k]
	}
	return out
}

func (s *Set) Len() int { return len(s.order) }

func (*Set) Type() string { return "set" }
func (s *Set) String() string {
	parts := make([]string, len(s.order))
	for i, k := range s.order {
		parts[i] = reprOf(s.items[k])
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}

// Mapping is an insertion-ordered key-value collection; keys may be any
// hashable value (spec §3.1).
type Mapping struct {
	keys   []Value
	keyIdx map[string]int
	vals   map[string]Value
}

func NewMapping() *Mapping {
	return &Mapping{keyIdx: make(map[string]int), vals: make(map[string]Value)}
}

func (m *Mapping) Set(key, val Value) {
	k := hashKey(key)
	if _, exists := m.keyIdx[k]; !exists {
		m.keyIdx[k] = len(m.keys)
		m.keys = append(m.keys, key)
	}
	m.vals[k] = val
}

func (m *Mapping) Get(key Value) (Value, bool) {
	v, ok := m.vals[hashKey(key)]
	return v, ok
}

func (m *Mapping) Delete(key Value) {
	k := hashKey(key)
	if idx, ok := m.keyIdx[k]; ok {
		delete(m.keyIdx, k)
		delete(m.vals, k)
		m.keys = append(m.keys[:idx], m.keys[idx+1:]...)
		for kk, i := range m.keyIdx {
			if i > idx {
				m.keyIdx[kk] = i - 1
			}
		}
	}
}

func (m *Mapping) Keys() []Value { return append([]Value(nil), m.keys...) }
func (m *Mapping) Len() int      { return len(m.keys) }

func (*Mapping) Type() string { return "mapping" }
func (m *Mapping) String() string {
	parts := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		v, _ := m.Get(k)
		parts = append(parts, fmt.Sprintf("%s: %s", reprOf(k), reprOf(v)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func hashKey(v Value) string { return v.Type() + ":" + v.String() }

func reprOf(v Value) string {
	if s, ok := v.(Str); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

// Equal implements structural equality for containers and identity for
// resources, per spec §3.1.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *Tuple:
		bv, ok := b.(*Tuple)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *Set:
		bv, ok := b.(*Set)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, v := range av.Values() {
			if !bv.Contains(v) {
				return false
			}
		}
		return true
	case *Mapping:
		bv, ok := b.(*Mapping)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			va, _ := av.Get(k)
			vb, ok := bv.Get(k)
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	case *StructInstance:
		bv, ok := b.(*StructInstance)
		if !ok || av.TypeName != bv.TypeName {
			return false
		}
		for k, v := range av.Fields {
			other, ok := bv.Fields[k]
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return len(av.Fields) == len(bv.Fields)
	case *Resource:
		bv, ok := b.(*Resource)
		return ok && av == bv // identity
	default:
		return a.Type() == b.Type() && a.String() == b.String()
	}
}

// Truthy implements Dana's truthiness rule for `and`/`or`/`if`/`while`.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(t)
	case Int:
		return t != 0
	case Float:
		return t != 0
	case Str:
		return t != ""
	case *List:
		return len(t.Elems) > 0
	case *Tuple:
		return len(t.Elems) > 0
	case *Set:
		return t.Len() > 0
	case *Mapping:
		return t.Len() > 0
	default:
		return true
	}
}
