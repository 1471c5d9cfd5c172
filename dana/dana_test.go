package dana_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/dana"
	"github.com/dana-lang/dana/internal/config"
	"github.com/dana-lang/dana/internal/values"
)

func newTestInterpreter(t *testing.T) *dana.Interpreter {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.LLM.Mock = true
	d, err := dana.New(dana.Options{Config: cfg})
	require.NoError(t, err)
	return d
}

func TestRun_BasicProgram(t *testing.T) {
	d := newTestInterpreter(t)
	err := d.Run("x = 1 + 2\n")
	assert.NoError(t, err)
}

func TestRun_ParseError(t *testing.T) {
	d := newTestInterpreter(t)
	err := d.Run("def (\n")
	assert.Error(t, err)
}

func TestRegisterFunction_CallFunction(t *testing.T) {
	d := newTestInterpreter(t)

	err := d.RegisterFunction("double", func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		n := args[0].(values.Int)
		return values.Int(n * 2), nil
	}, "", false)
	require.NoError(t, err)

	result, err := d.CallFunction("double", []values.Value{values.Int(21)}, nil)
	require.NoError(t, err)
	assert.Equal(t, values.Int(42), result)
}

func TestRun_DefinedFunctionCallableFromHost(t *testing.T) {
	d := newTestInterpreter(t)
	require.NoError(t, d.Run("def greet(name: str) -> str:\n    return \"hi \" + name\n"))

	result, err := d.CallFunction("greet", []values.Value{values.Str("dana")}, nil)
	require.NoError(t, err)
	assert.Equal(t, values.Str("hi dana"), result)
}

func TestClose_IsIdempotentSafeWithoutAuditOrWatcher(t *testing.T) {
	d := newTestInterpreter(t)
	require.NoError(t, d.Run("x = 1\n"))
	assert.NoError(t, d.Close())
}
