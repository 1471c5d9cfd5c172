package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

func noDefault(ast.Expr) (values.Value, error) {
	return nil, danaerr.NewInternalError("no default expected")
}

func TestRegisterAndResolveDefaultNamespace(t *testing.T) {
	r := New()
	fn := &values.Function{Name: "greet"}
	require.NoError(t, r.Register(DefaultNamespace, "greet", fn, false, false))

	rec, err := r.Resolve("greet")
	require.NoError(t, err)
	assert.Same(t, fn, rec.Func)
}

func TestRegisterNamespaced(t *testing.T) {
	r := New()
	fn := &values.Function{Name: "search"}
	require.NoError(t, r.Register("tools", "search", fn, false, false))

	rec, err := r.Resolve("tools.search")
	require.NoError(t, err)
	assert.Equal(t, "tools.search", rec.QualifiedName)
}

func TestRegisterCollisionErrorsWithoutOverwrite(t *testing.T) {
	r := New()
	fn1 := &values.Function{Name: "f"}
	fn2 := &values.Function{Name: "f"}
	require.NoError(t, r.Register(DefaultNamespace, "f", fn1, false, false))
	err := r.Register(DefaultNamespace, "f", fn2, false, false)
	assert.Error(t, err)
}

func TestRegisterOverwriteSucceeds(t *testing.T) {
	r := New()
	fn1 := &values.Function{Name: "f"}
	fn2 := &values.Function{Name: "f"}
	require.NoError(t, r.Register(DefaultNamespace, "f", fn1, false, false))
	require.NoError(t, r.Register(DefaultNamespace, "f", fn2, false, true))
	rec, err := r.Resolve("f")
	require.NoError(t, err)
	assert.Same(t, fn2, rec.Func)
}

func TestResolveUnknownRaisesNameNotBound(t *testing.T) {
	r := New()
	_, err := r.Resolve("nope")
	assert.True(t, danaerr.Of(err, danaerr.KindNameNotBound))
}

func TestBindArgsPositional(t *testing.T) {
	params := []*ast.Param{{Name: "a"}, {Name: "b"}}
	bound, err := BindArgs(params, []values.Value{values.Int(1), values.Int(2)}, nil, noDefault)
	require.NoError(t, err)
	assert.Equal(t, values.Int(1), bound["a"])
	assert.Equal(t, values.Int(2), bound["b"])
}

func TestBindArgsKeywordFillsRemainder(t *testing.T) {
	params := []*ast.Param{{Name: "a"}, {Name: "b"}}
	bound, err := BindArgs(params, []values.Value{values.Int(1)}, map[string]values.Value{"b": values.Int(2)}, noDefault)
	require.NoError(t, err)
	assert.Equal(t, values.Int(2), bound["b"])
}

func TestBindArgsDefaultFillsMissing(t *testing.T) {
	params := []*ast.Param{{Name: "a"}, {Name: "b", Default: &ast.Literal{Kind: ast.LitInt, IntVal: 9}}}
	eval := func(e ast.Expr) (values.Value, error) {
		lit := e.(*ast.Literal)
		return values.Int(lit.IntVal), nil
	}
	bound, err := BindArgs(params, []values.Value{values.Int(1)}, nil, eval)
	require.NoError(t, err)
	assert.Equal(t, values.Int(9), bound["b"])
}

func TestBindArgsMissingRequiredErrors(t *testing.T) {
	params := []*ast.Param{{Name: "a"}}
	_, err := BindArgs(params, nil, nil, noDefault)
	assert.True(t, danaerr.Of(err, danaerr.KindArgumentError))
}

func TestBindArgsVariadicCollectsLeftover(t *testing.T) {
	params := []*ast.Param{{Name: "first"}, {Name: "rest", Variadic: true}}
	bound, err := BindArgs(params, []values.Value{values.Int(1), values.Int(2), values.Int(3)}, nil, noDefault)
	require.NoError(t, err)
	rest := bound["rest"].(*values.List)
	assert.Len(t, rest.Elems, 2)
}

func TestBindArgsTooManyPositionalErrors(t *testing.T) {
	params := []*ast.Param{{Name: "a"}}
	_, err := BindArgs(params, []values.Value{values.Int(1), values.Int(2)}, nil, noDefault)
	assert.True(t, danaerr.Of(err, danaerr.KindArgumentError))
}

func TestBindArgsUnexpectedKeywordErrors(t *testing.T) {
	params := []*ast.Param{{Name: "a"}}
	_, err := BindArgs(params, []values.Value{values.Int(1)}, map[string]values.Value{"z": values.Int(2)}, noDefault)
	assert.True(t, danaerr.Of(err, danaerr.KindArgumentError))
}

func TestBindArgsDoubleBindErrors(t *testing.T) {
	params := []*ast.Param{{Name: "a"}}
	_, err := BindArgs(params, []values.Value{values.Int(1)}, map[string]values.Value{"a": values.Int(2)}, noDefault)
	assert.True(t, danaerr.Of(err, danaerr.KindArgumentError))
}
