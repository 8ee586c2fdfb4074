package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, opts Options) *atomic.Int32 {
	t.Helper()
	w, err := New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var calls atomic.Int32
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(context.Context) { calls.Add(1) })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return &calls
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "com", "example")
	require.NoError(t, os.MkdirAll(src, 0o750))

	calls := startWatcher(t, Options{Dirs: []string{filepath.Join(dir, "src")}, Debounce: 150 * time.Millisecond})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(src, fmt.Sprintf("F%d.java", i)), []byte("class F {}"), 0o600))
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "build")
	require.NoError(t, os.MkdirAll(out, 0o750))

	calls := startWatcher(t, Options{Dirs: []string{dir}, Ignore: []string{out}, Debounce: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(filepath.Join(out, "a.jar"), []byte("x"), 0o600))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_IndividualFiles(t *testing.T) {
	dir := t.TempDir()
	descriptor := filepath.Join(dir, "jarbuilder.yaml")
	require.NoError(t, os.WriteFile(descriptor, []byte("project: {}"), 0o600))

	calls := startWatcher(t, Options{Files: []string{descriptor}, Debounce: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, os.WriteFile(descriptor, []byte("project: {name: x}"), 0o600))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestNew_MissingDirectoryIsIgnored(t *testing.T) {
	w, err := New(Options{Dirs: []string{filepath.Join(t.TempDir(), "missing")}})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx, func(context.Context) {}))
}
