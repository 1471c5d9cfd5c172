package interp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/values"
)

type initHooks struct {
	initErr        error
	emergencyCalls []error
	cleanupCalls   int
}

func (h *initHooks) InitializeResource(ctx any) error { return h.initErr }
func (h *initHooks) CleanupResource(ctx any) error    { h.cleanupCalls++; return nil }
func (h *initHooks) EmergencyCleanup(ctx any, cause error) {
	h.emergencyCalls = append(h.emergencyCalls, cause)
}

func TestInitializeWithRunsEmergencyCleanupOnInitError(t *testing.T) {
	ip := New("test.na")
	hooks := &initHooks{initErr: errors.New("handshake failed")}
	r := values.NewResource("mcp", "x", hooks)

	err := ip.initializeWith(r)

	require.Error(t, err)
	assert.Equal(t, values.StateFailed, r.State())
	require.Len(t, hooks.emergencyCalls, 1)
	assert.ErrorContains(t, hooks.emergencyCalls[0], "handshake failed")
	assert.Zero(t, hooks.cleanupCalls)
}

func TestInitializeWithSucceedsWithoutEmergencyCleanup(t *testing.T) {
	ip := New("test.na")
	hooks := &initHooks{}
	r := values.NewResource("mcp", "x", hooks)

	err := ip.initializeWith(r)

	require.NoError(t, err)
	assert.Equal(t, values.StateRunning, r.State())
	assert.Empty(t, hooks.emergencyCalls)
}
