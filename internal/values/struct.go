package values

import (
	"fmt"
	"sort"
	"strings"
)

// StructFieldDef is one declared field of a struct type (spec §3.3).
type StructFieldDef struct {
	Name    string
	Type    string
	Default Value // nil if required
}

// StructType is a registered nominal record type.
type StructType struct {
	Name   string
	Fields []StructFieldDef
}

// StructInstance is a constructed value of a StructType.
type StructInstance struct {
	TypeName string
	Fields   map[string]Value
}

func NewStructInstance(typeName string) *StructInstance {
	return &StructInstance{TypeName: typeName, Fields: make(map[string]Value)}
}

func (*StructInstance) Type() string { return "struct" }

func (s *StructInstance) String() string {
	names := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", n, reprOf(s.Fields[n])))
	}
	return fmt.Sprintf("%s(%s)", s.TypeName, strings.Join(parts, ", "))
}
