package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/parser"
	"github.com/dana-lang/dana/internal/values"
)

func run(t *testing.T, src string) *Interpreter {
	t.Helper()
	prog, errs := parser.Parse("test.na", src)
	require.Empty(t, errs)
	ip := New("test.na")
	err := ip.Run(prog)
	require.NoError(t, err)
	return ip
}

func TestBareAssignmentAndArithmetic(t *testing.T) {
	ip := run(t, "x = 1 + 2 * 3\n")
	v, err := ip.Ctx.Get(context.Local, "x")
	require.NoError(t, err)
	assert.Equal(t, values.Int(7), v)
}

func TestScopedAssignment(t *testing.T) {
	context.ResetSystemScopeForTest()
	ip := run(t, "public:shared = \"hi\"\n")
	v, err := ip.Ctx.Get(context.Public, "shared")
	require.NoError(t, err)
	assert.Equal(t, values.Str("hi"), v)
}

func TestIfElifElse(t *testing.T) {
	ip := run(t, `
x = 2
if x == 1:
    y = "one"
elif x == 2:
    y = "two"
else:
    y = "other"
`)
	v, err := ip.Ctx.Get(context.Local, "y")
	require.NoError(t, err)
	assert.Equal(t, values.Str("two"), v)
}

func TestWhileBreakContinue(t *testing.T) {
	ip := run(t, `
total = 0
i = 0
while i < 10:
    i = i + 1
    if i % 2 == 0:
        continue
    if i > 7:
        break
    total = total + i
`)
	v, err := ip.Ctx.Get(context.Local, "total")
	require.NoError(t, err)
	assert.Equal(t, values.Int(1+3+5+7), v)
}

func TestForOverList(t *testing.T) {
	ip := run(t, `
total = 0
for x in [1, 2, 3]:
    total = total + x
`)
	v, err := ip.Ctx.Get(context.Local, "total")
	require.NoError(t, err)
	assert.Equal(t, values.Int(6), v)
}

func TestFuncDefAndCall(t *testing.T) {
	ip := run(t, `
def add(a, b):
    return a + b

result = add(3, 4)
`)
	v, err := ip.Ctx.Get(context.Local, "result")
	require.NoError(t, err)
	assert.Equal(t, values.Int(7), v)
}

func TestClosureCapturesDeclaringFrame(t *testing.T) {
	ip := run(t, `
def make_adder(n):
    def adder(x):
        return x + n
    return adder

add5 = make_adder(5)
result = add5(10)
`)
	v, err := ip.Ctx.Get(context.Local, "result")
	require.NoError(t, err)
	assert.Equal(t, values.Int(15), v)
}

func TestStructDefaultsAndConstruction(t *testing.T) {
	ip := run(t, `
struct Point:
    x: int
    y: int = 0

p = Point(3)
`)
	v, err := ip.Ctx.Get(context.Local, "p")
	require.NoError(t, err)
	inst, ok := v.(*values.StructInstance)
	require.True(t, ok)
	assert.Equal(t, values.Int(3), inst.Fields["x"])
	assert.Equal(t, values.Int(0), inst.Fields["y"])
}

func TestStructMethodDispatch(t *testing.T) {
	ip := run(t, `
struct Counter:
    n: int

def (c: Counter) bump(by):
    c.n = c.n + by
    return c.n

counter = Counter(0)
result = counter.bump(4)
`)
	v, err := ip.Ctx.Get(context.Local, "result")
	require.NoError(t, err)
	assert.Equal(t, values.Int(4), v)
}

func TestPipelineApplicationAndComposition(t *testing.T) {
	ip := run(t, `
def double(x):
    return x * 2

def inc(x):
    return x + 1

applied = 5 | double
pipeline = double | inc
composed = 5 | pipeline
`)
	applied, err := ip.Ctx.Get(context.Local, "applied")
	require.NoError(t, err)
	assert.Equal(t, values.Int(10), applied)

	composed, err := ip.Ctx.Get(context.Local, "composed")
	require.NoError(t, err)
	assert.Equal(t, values.Int(11), composed)
}

func TestComprehensionScopesGeneratorVariable(t *testing.T) {
	ip := run(t, `
x = 99
squares = [x * x for x in [1, 2, 3]]
`)
	v, err := ip.Ctx.Get(context.Local, "squares")
	require.NoError(t, err)
	list, ok := v.(*values.List)
	require.True(t, ok)
	assert.Equal(t, []values.Value{values.Int(1), values.Int(4), values.Int(9)}, list.Elems)

	x, err := ip.Ctx.Get(context.Local, "x")
	require.NoError(t, err)
	assert.Equal(t, values.Int(99), x, "comprehension target must not leak into the enclosing frame")
}

func TestTryExceptBindsErrorValue(t *testing.T) {
	ip := run(t, `
caught = "none"
try:
    missing_name_reference
except NameNotBound as e:
    caught = e.kind
`)
	v, err := ip.Ctx.Get(context.Local, "caught")
	require.NoError(t, err)
	assert.Equal(t, values.Str("NameNotBound"), v)
}

func TestTryFinallyAlwaysRuns(t *testing.T) {
	ip := run(t, `
log = []
try:
    log.append("try")
    x = 1 / 0
except TypeError:
    log.append("except")
finally:
    log.append("finally")
`)
	v, err := ip.Ctx.Get(context.Local, "log")
	require.NoError(t, err)
	list, ok := v.(*values.List)
	require.True(t, ok)
	assert.Equal(t, []values.Value{values.Str("try"), values.Str("except"), values.Str("finally")}, list.Elems)
}

func TestBareExceptCatchesAnyDanaError(t *testing.T) {
	ip := run(t, `
caught = false
try:
    x = 1 / 0
except:
    caught = true
`)
	v, err := ip.Ctx.Get(context.Local, "caught")
	require.NoError(t, err)
	assert.Equal(t, values.Bool(true), v)
}

type fakeHooks struct {
	log *[]string
	tag string
}

func (h *fakeHooks) InitializeResource(ctx any) error {
	*h.log = append(*h.log, "init:"+h.tag)
	return nil
}
func (h *fakeHooks) CleanupResource(ctx any) error {
	*h.log = append(*h.log, "cleanup:"+h.tag)
	return nil
}
func (h *fakeHooks) EmergencyCleanup(ctx any, cause error) {
	*h.log = append(*h.log, "emergency:"+h.tag)
}

type fakeResourceFactory struct {
	log *[]string
}

func (f *fakeResourceFactory) Create(kind, name string, config map[string]values.Value) (*values.Resource, error) {
	r := values.NewResource(kind, name, &fakeHooks{log: f.log, tag: kind + "." + name})
	r.Ops["ping"] = func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		return values.Str("pong"), nil
	}
	return r, nil
}

func TestWithAcquiresAndCleansUpInReverseOrder(t *testing.T) {
	var log []string
	prog, errs := parser.Parse("test.na", `
with db = use("mcp.db"), cache = use("mcp.cache"):
    result = db.ping()
`)
	require.Empty(t, errs)
	ip := New("test.na")
	ip.Resources = &fakeResourceFactory{log: &log}
	require.NoError(t, ip.Run(prog))

	result, err := ip.Ctx.Get(context.Local, "result")
	require.NoError(t, err)
	assert.Equal(t, values.Str("pong"), result)

	assert.Equal(t, []string{
		"init:mcp.db", "init:mcp.cache",
		"cleanup:mcp.cache", "cleanup:mcp.db",
	}, log)
}

func TestResourceOperationRequiresRunningState(t *testing.T) {
	r := values.NewResource("mcp", "db", nil)
	r.Ops["ping"] = func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		return values.Str("pong"), nil
	}
	ip := New("test.na")
	ip.Ctx.Set(context.Local, "db", r)

	prog, errs := parser.Parse("test.na", "db.ping()\n")
	require.Empty(t, errs)
	err := ip.Run(prog)
	require.Error(t, err)
	assert.True(t, danaerr.Of(err, danaerr.KindResourceNotActive))
}

type fakeReasoner struct {
	gotHint *ast.TypeExpr
}

func (f *fakeReasoner) Reason(ctx *context.Context, prompt string, promptCtx values.Value, options map[string]values.Value, hint *ast.TypeExpr) (values.Value, error) {
	f.gotHint = hint
	return values.Str("answer: " + prompt), nil
}

func TestReasonCallRoutesThroughReasonerWithTypeHint(t *testing.T) {
	prog, errs := parser.Parse("test.na", "answer: str = reason(\"what is 2+2\")\n")
	require.Empty(t, errs)
	ip := New("test.na")
	reasoner := &fakeReasoner{}
	ip.Reasoner = reasoner
	require.NoError(t, ip.Run(prog))

	v, err := ip.Ctx.Get(context.Local, "answer")
	require.NoError(t, err)
	assert.Equal(t, values.Str("answer: what is 2+2"), v)
	require.NotNil(t, reasoner.gotHint)
	assert.Equal(t, "str", reasoner.gotHint.Name)
}

func TestBuiltinFunctions(t *testing.T) {
	ip := run(t, `
n = len([1, 2, 3])
s = str(42)
i = int("7")
doubled = [x * 2 for x in range(3)]
`)
	n, err := ip.Ctx.Get(context.Local, "n")
	require.NoError(t, err)
	assert.Equal(t, values.Int(3), n)

	s, err := ip.Ctx.Get(context.Local, "s")
	require.NoError(t, err)
	assert.Equal(t, values.Str("42"), s)

	i, err := ip.Ctx.Get(context.Local, "i")
	require.NoError(t, err)
	assert.Equal(t, values.Int(7), i)

	doubled, err := ip.Ctx.Get(context.Local, "doubled")
	require.NoError(t, err)
	list, ok := doubled.(*values.List)
	require.True(t, ok)
	assert.Equal(t, []values.Value{values.Int(0), values.Int(2), values.Int(4)}, list.Elems)
}

func TestListMethodCall(t *testing.T) {
	ip := run(t, `
xs = [1, 2]
xs.append(3)
last = xs.pop()
`)
	xs, err := ip.Ctx.Get(context.Local, "xs")
	require.NoError(t, err)
	list, ok := xs.(*values.List)
	require.True(t, ok)
	assert.Equal(t, []values.Value{values.Int(1), values.Int(2)}, list.Elems)

	last, err := ip.Ctx.Get(context.Local, "last")
	require.NoError(t, err)
	assert.Equal(t, values.Int(3), last)
}

func TestNotInOperator(t *testing.T) {
	ip := run(t, `
xs = [1, 2, 3]
missing = 9 not in xs
present = 2 not in xs
`)
	missing, err := ip.Ctx.Get(context.Local, "missing")
	require.NoError(t, err)
	assert.Equal(t, values.Bool(true), missing)

	present, err := ip.Ctx.Get(context.Local, "present")
	require.NoError(t, err)
	assert.Equal(t, values.Bool(false), present)
}

func TestCompoundAssignmentEvaluatesSubscriptTargetOnce(t *testing.T) {
	prog, errs := parser.Parse("test.na", `
arr[next_index()] += 1
`)
	require.Empty(t, errs)

	ip := New("test.na")
	calls := 0
	native := values.NativeFunc(func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		calls++
		return values.Int(0), nil
	})
	require.NoError(t, ip.Registry.Register(registryDefaultNamespace, "next_index", &values.Function{Name: "next_index", Native: native}, false, false))
	ip.Ctx.Set(context.Local, "arr", &values.List{Elems: []values.Value{values.Int(10)}})

	require.NoError(t, ip.Run(prog))

	assert.Equal(t, 1, calls)
	arr, err := ip.Ctx.Get(context.Local, "arr")
	require.NoError(t, err)
	assert.Equal(t, values.Int(11), arr.(*values.List).Elems[0])
}

func TestCompoundAssignmentEvaluatesAttributeTargetOnce(t *testing.T) {
	prog, errs := parser.Parse("test.na", `
get_counter().n += 1
`)
	require.Empty(t, errs)

	ip := New("test.na")
	calls := 0
	native := values.NativeFunc(func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		calls++
		return &values.StructInstance{TypeName: "Counter", Fields: map[string]values.Value{"n": values.Int(5)}}, nil
	})
	require.NoError(t, ip.Registry.Register(registryDefaultNamespace, "get_counter", &values.Function{Name: "get_counter", Native: native}, false, false))

	require.NoError(t, ip.Run(prog))

	assert.Equal(t, 1, calls)
}
