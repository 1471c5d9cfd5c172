package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := Parse("test.na", src)
	require.Empty(t, errs, "unexpected parse errors: %v", errs)
	require.NotNil(t, prog)
	return prog
}

func TestParseAssignment(t *testing.T) {
	prog := parseOK(t, "x = 1\n")
	require.Len(t, prog.Statements, 1)
	a, ok := prog.Statements[0].(*ast.Assignment)
	require.True(t, ok)
	id, ok := a.Target.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "x", id.Name)
}

func TestParseScopedAssignment(t *testing.T) {
	prog := parseOK(t, "public:count = 0\n")
	a := prog.Statements[0].(*ast.Assignment)
	sn, ok := a.Target.(*ast.ScopedName)
	require.True(t, ok)
	assert.Equal(t, "public", sn.Scope)
	assert.Equal(t, "count", sn.Name)
}

func TestParseAnnotatedAssignment(t *testing.T) {
	prog := parseOK(t, "x: int = reason(\"how many\")\n")
	a := prog.Statements[0].(*ast.Assignment)
	require.NotNil(t, a.TargetType)
	assert.Equal(t, "int", a.TargetType.Name)
}

func TestParseCompoundAssignment(t *testing.T) {
	prog := parseOK(t, "total += 1\n")
	c := prog.Statements[0].(*ast.CompoundAssignment)
	assert.Equal(t, ast.OpAddAssign, c.Op)
}

func TestParseIfElifElse(t *testing.T) {
	src := "if x > 0:\n    pass\nelif x < 0:\n    pass\nelse:\n    pass\n"
	prog := parseOK(t, src)
	ifs := prog.Statements[0].(*ast.IfStatement)
	assert.Len(t, ifs.Elifs, 1)
	assert.NotNil(t, ifs.Else)
}

func TestParseFuncDef(t *testing.T) {
	src := "def add(a: int, b: int = 1) -> int:\n    return a + b\n"
	prog := parseOK(t, src)
	fd := prog.Statements[0].(*ast.FuncDef)
	assert.Equal(t, "add", fd.Name)
	require.Len(t, fd.Params, 2)
	assert.Equal(t, "b", fd.Params[1].Name)
	require.NotNil(t, fd.Params[1].Default)
	require.NotNil(t, fd.ReturnType)
	assert.Equal(t, "int", fd.ReturnType.Name)
}

func TestParseMethodDef(t *testing.T) {
	src := "def (a: Agent) greet(msg: string):\n    pass\n"
	prog := parseOK(t, src)
	fd := prog.Statements[0].(*ast.FuncDef)
	assert.Equal(t, "a", fd.ReceiverName)
	require.NotNil(t, fd.ReceiverType)
	assert.Equal(t, "Agent", fd.ReceiverType.Name)
	assert.Equal(t, "greet", fd.Name)
}

func TestParseStructDef(t *testing.T) {
	src := "struct Point:\n    x: int\n    y: int = 0\n"
	prog := parseOK(t, src)
	sd := prog.Statements[0].(*ast.StructDef)
	assert.Equal(t, "Point", sd.Name)
	require.Len(t, sd.Fields, 2)
	assert.Equal(t, "y", sd.Fields[1].Name)
	require.NotNil(t, sd.Fields[1].Default)
}

func TestParseWithBinding(t *testing.T) {
	src := "with db = use(\"mcp.postgres\"):\n    db.query(\"select 1\")\n"
	prog := parseOK(t, src)
	ws := prog.Statements[0].(*ast.WithStatement)
	require.Len(t, ws.Bindings, 1)
	assert.Equal(t, "db", ws.Bindings[0].Name)
}

func TestParseMultiBindingWith(t *testing.T) {
	src := "with a = use(\"mcp.a\"), b = use(\"mcp.b\"):\n    pass\n"
	prog := parseOK(t, src)
	ws := prog.Statements[0].(*ast.WithStatement)
	require.Len(t, ws.Bindings, 2)
}

func TestParseTryExceptFinally(t *testing.T) {
	src := "try:\n    risky()\nexcept Timeout as e:\n    pass\nfinally:\n    cleanup()\n"
	prog := parseOK(t, src)
	ts := prog.Statements[0].(*ast.TryStatement)
	require.Len(t, ts.Excepts, 1)
	assert.Equal(t, "Timeout", ts.Excepts[0].Type)
	assert.Equal(t, "e", ts.Excepts[0].As)
	assert.NotNil(t, ts.Finally)
}

func TestParseBareExceptCatchesAny(t *testing.T) {
	src := "try:\n    risky()\nexcept:\n    pass\n"
	prog := parseOK(t, src)
	ts := prog.Statements[0].(*ast.TryStatement)
	assert.Equal(t, "", ts.Excepts[0].Type)
}

func TestParsePipelineLeftAssociative(t *testing.T) {
	prog := parseOK(t, "result = f | g | h\n")
	a := prog.Statements[0].(*ast.Assignment)
	outer, ok := a.Value.(*ast.Pipeline)
	require.True(t, ok)
	_, ok = outer.Left.(*ast.Pipeline)
	assert.True(t, ok)
}

func TestParsePowerRightAssociative(t *testing.T) {
	prog := parseOK(t, "x = 2 ** 3 ** 2\n")
	a := prog.Statements[0].(*ast.Assignment)
	outer := a.Value.(*ast.BinaryOp)
	assert.Equal(t, "**", outer.Op)
	_, ok := outer.Right.(*ast.BinaryOp)
	assert.True(t, ok)
}

func TestParseComprehension(t *testing.T) {
	prog := parseOK(t, "evens = [x for x in items if x % 2 == 0]\n")
	a := prog.Statements[0].(*ast.Assignment)
	c, ok := a.Value.(*ast.Comprehension)
	require.True(t, ok)
	require.NotNil(t, c.Cond)
}

func TestParseLambda(t *testing.T) {
	prog := parseOK(t, "double = lambda x: x * 2\n")
	a := prog.Statements[0].(*ast.Assignment)
	l, ok := a.Value.(*ast.Lambda)
	require.True(t, ok)
	require.Len(t, l.Params, 1)
}

func TestParseCallWithKeywordArgs(t *testing.T) {
	prog := parseOK(t, "p = Point(x=1, y=2)\n")
	a := prog.Statements[0].(*ast.Assignment)
	call, ok := a.Value.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "x", call.Args[0].Name)
}

func TestParseNotInMembership(t *testing.T) {
	prog := parseOK(t, "ok = role not in banned\n")
	a := prog.Statements[0].(*ast.Assignment)
	b := a.Value.(*ast.BinaryOp)
	assert.Equal(t, "not in", b.Op)
}

func TestParseForLoop(t *testing.T) {
	src := "for item in items:\n    process(item)\n"
	prog := parseOK(t, src)
	fs := prog.Statements[0].(*ast.ForStatement)
	tgt := fs.Target.(*ast.Identifier)
	assert.Equal(t, "item", tgt.Name)
}

func TestParseImportWithNamespace(t *testing.T) {
	prog := parseOK(t, "import tools.search as search\n")
	is := prog.Statements[0].(*ast.ImportStatement)
	assert.Equal(t, "tools.search", is.Path)
	assert.Equal(t, "search", is.Namespace)
}

func TestParseAttributeAndSubscriptChain(t *testing.T) {
	prog := parseOK(t, "x = obj.items[0].name\n")
	a := prog.Statements[0].(*ast.Assignment)
	attr, ok := a.Value.(*ast.Attribute)
	require.True(t, ok)
	assert.Equal(t, "name", attr.Field)
	sub, ok := attr.X.(*ast.Subscript)
	require.True(t, ok)
	_, ok = sub.X.(*ast.Attribute)
	assert.True(t, ok)
}

func TestParseReportsSyntaxError(t *testing.T) {
	_, errs := Parse("bad.na", "x = = 1\n")
	assert.NotEmpty(t, errs)
}

func TestParseVariadicParam(t *testing.T) {
	src := "def log(*args):\n    pass\n"
	prog := parseOK(t, src)
	fd := prog.Statements[0].(*ast.FuncDef)
	require.Len(t, fd.Params, 1)
	assert.True(t, fd.Params[0].Variadic)
}
