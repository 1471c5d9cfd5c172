package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func resetForTest() {
	mu.Lock()
	settings = Settings{}
	loggers = make(map[Category]*zap.SugaredLogger)
	base = nil
	mu.Unlock()
}

func TestIsEnabledDefaultsOffWithoutConfigure(t *testing.T) {
	resetForTest()
	assert.False(t, IsEnabled(CategoryParser))
}

func TestConfigureEnablesDebugCategories(t *testing.T) {
	resetForTest()
	err := Configure(Settings{
		DebugMode:  true,
		Categories: map[string]bool{"parser": true, "interp": false},
	})
	assert.NoError(t, err)
	assert.True(t, IsEnabled(CategoryParser))
	assert.False(t, IsEnabled(CategoryInterp))
	// Unlisted categories default to enabled when DebugMode is set.
	assert.True(t, IsEnabled(CategoryRegistry))
}

func TestGetReturnsNopLoggerWhenDisabled(t *testing.T) {
	resetForTest()
	l := Get(CategoryParser)
	assert.NotNil(t, l)
	// Should not panic even though nothing is configured.
	l.Debugf("no-op")
}

func TestTimerStopReturnsNonNegativeDuration(t *testing.T) {
	resetForTest()
	timer := StartTimer(CategoryInterp, "test-op")
	d := timer.Stop()
	assert.GreaterOrEqual(t, d.Nanoseconds(), int64(0))
}
