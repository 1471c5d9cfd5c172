package context

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

func TestBareAssignmentWritesLocal(t *testing.T) {
	c := New()
	c.Set(Local, "x", values.Int(1))
	v, err := c.Get(Local, "x")
	require.NoError(t, err)
	assert.Equal(t, values.Int(1), v)
}

func TestScopeIsolationAcrossFrames(t *testing.T) {
	c := New()
	c.Set(Local, "x", values.Int(1))
	c.PushFrame("callee", nil)
	_, err := c.Get(Local, "x")
	assert.True(t, danaerr.Of(err, danaerr.KindNameNotBound))
	require.NoError(t, c.PopFrame())
	v, err := c.Get(Local, "x")
	require.NoError(t, err)
	assert.Equal(t, values.Int(1), v)
}

func TestResolveSearchOrder(t *testing.T) {
	ResetSystemScopeForTest()
	c := New()
	c.Set(System, "x", values.Int(100))
	c.Set(Public, "x", values.Int(10))
	scope, v, err := c.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, Public, scope)
	assert.Equal(t, values.Int(10), v)

	c.Set(Local, "x", values.Int(1))
	scope, v, err = c.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, Local, scope)
	assert.Equal(t, values.Int(1), v)
}

func TestResolveUnboundRaisesNameNotBound(t *testing.T) {
	c := New()
	_, _, err := c.Resolve("missing")
	assert.True(t, danaerr.Of(err, danaerr.KindNameNotBound))
}

func TestSystemScopeSharedAcrossContexts(t *testing.T) {
	ResetSystemScopeForTest()
	a := New()
	b := New()
	a.Set(System, "shared", values.Str("hi"))
	v, err := b.Get(System, "shared")
	require.NoError(t, err)
	assert.Equal(t, values.Str("hi"), v)
}

func TestPopFrameRunsOwnedCleanupInReverseOrder(t *testing.T) {
	c := New()
	var order []string
	mkResource := func(name string) *values.Resource {
		r := values.NewResource("mcp", name, nil)
		r.SetState(values.StateRunning)
		r.Hooks = &recordingHooks{name: name, order: &order}
		return r
	}
	c.PushFrame("f", nil)
	r1 := mkResource("r1")
	r2 := mkResource("r2")
	r3 := mkResource("r3")
	c.OwnResource(r1)
	c.OwnResource(r2)
	c.OwnResource(r3)
	require.NoError(t, c.PopFrame())
	assert.Equal(t, []string{"r3", "r2", "r1"}, order)
	assert.Equal(t, values.StateTerminated, r1.State())
}

func TestPopFrameCannotPopModuleFrame(t *testing.T) {
	c := New()
	err := c.PopFrame()
	assert.True(t, danaerr.Of(err, danaerr.KindInternalError))
}

type recordingHooks struct {
	name  string
	order *[]string
}

func (h *recordingHooks) InitializeResource(ctx any) error { return nil }
func (h *recordingHooks) CleanupResource(ctx any) error {
	*h.order = append(*h.order, h.name)
	return nil
}
func (h *recordingHooks) EmergencyCleanup(ctx any, cause error) {}
