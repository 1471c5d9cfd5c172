package module

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/values"
)

func TestLoader_Invalidate(t *testing.T) {
	l := New(nil)
	l.cache["/abs/path/foo.na"] = &cacheEntry{state: stateReady, funcs: map[string]*values.Function{}}

	require.True(t, l.Invalidate("/abs/path/foo.na"))
	require.False(t, l.Invalidate("/abs/path/foo.na"))
	require.False(t, l.Invalidate("/never/cached.na"))
}

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "greet.na")
	require.NoError(t, os.WriteFile(file, []byte("def hello(): pass\n"), 0o644))

	abs, err := filepath.Abs(file)
	require.NoError(t, err)

	l := New([]string{dir})
	l.cache[abs] = &cacheEntry{state: stateReady}

	w, err := NewWatcher(l)
	require.NoError(t, err)
	w.debounceDur = 20 * time.Millisecond
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(file, []byte("def hello(): return 1\n"), 0o644))

	require.Eventually(t, func() bool {
		_, ok := l.cache[abs]
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}
