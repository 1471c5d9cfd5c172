package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddIntPromotesOnFloat(t *testing.T) {
	v, err := Add(Int(1), Float(2.5))
	require.NoError(t, err)
	assert.Equal(t, Float(3.5), v)
}

func TestAddStringConcatRequiresBothStrings(t *testing.T) {
	_, err := Add(Str("a"), Int(1))
	assert.Error(t, err)
}

func TestAddListConcatenates(t *testing.T) {
	v, err := Add(NewList(Int(1), Int(2)), NewList(Int(3)))
	require.NoError(t, err)
	l := v.(*List)
	assert.Len(t, l.Elems, 3)
}

func TestDivByZeroErrors(t *testing.T) {
	_, err := Div(Int(1), Int(0))
	assert.Error(t, err)
}

func TestDivEvenIntsStayInt(t *testing.T) {
	v, err := Div(Int(10), Int(5))
	require.NoError(t, err)
	assert.Equal(t, Int(2), v)
}

func TestDivUnevenIntsPromoteToFloat(t *testing.T) {
	v, err := Div(Int(1), Int(3))
	require.NoError(t, err)
	_, ok := v.(Float)
	assert.True(t, ok)
}

func TestEqualStructural(t *testing.T) {
	a := NewList(Int(1), Str("x"))
	b := NewList(Int(1), Str("x"))
	assert.True(t, Equal(a, b))
}

func TestEqualResourceIsIdentity(t *testing.T) {
	r1 := NewResource("mcp", "db", nil)
	r2 := NewResource("mcp", "db", nil)
	assert.True(t, Equal(r1, r1))
	assert.False(t, Equal(r1, r2))
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(NullValue))
	assert.False(t, Truthy(Int(0)))
	assert.True(t, Truthy(Int(1)))
	assert.False(t, Truthy(Str("")))
	assert.True(t, Truthy(NewList(Int(1))))
}

func TestContainsSubstring(t *testing.T) {
	ok, err := Contains(Str("user"), Str("username"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetUniqueness(t *testing.T) {
	s := NewSet(Int(1), Int(1), Int(2))
	assert.Equal(t, 2, s.Len())
}

func TestMappingInsertionOrder(t *testing.T) {
	m := NewMapping()
	m.Set(Str("b"), Int(2))
	m.Set(Str("a"), Int(1))
	keys := m.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, Str("b"), keys[0])
	assert.Equal(t, Str("a"), keys[1])
}
