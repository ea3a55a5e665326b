package fsnotify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// fsnotify Watcher Adapter : detect pattern file changes, trigger rebuild
// Expectation: a save fires one debounced callback for the watched file;
// sibling files and stopped watchers stay silent.
// =============================================================================

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := NewWatcher()
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)
	t.Cleanup(func() { w.Stop() })
	return w
}

func TestWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "patterns.txt")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))

	w := newTestWatcher(t)
	changed := make(chan string, 10)
	require.NoError(t, w.Watch([]string{file}, func(path string) { changed <- path }))

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("a\nb\n"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for file change")
	assert.Equal(t, file, path)
}

func TestWatcher_DetectsAtomicRename(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "patterns.txt")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))

	w := newTestWatcher(t)
	changed := make(chan string, 10)
	require.NoError(t, w.Watch([]string{file}, func(path string) { changed <- path }))
	time.Sleep(50 * time.Millisecond)

	tmp := filepath.Join(dir, ".patterns.txt.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("b\n"), 0644))
	require.NoError(t, os.Rename(tmp, file))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback after rename over watched file")
	assert.Equal(t, file, path)
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "patterns.txt")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))

	w := newTestWatcher(t)
	changed := make(chan string, 10)
	require.NoError(t, w.Watch([]string{file}, func(path string) { changed <- path }))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "sibling file must not trigger callback")
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "patterns.txt")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))

	w := newTestWatcher(t)
	w.SetDebounce(150 * time.Millisecond)

	var mu sync.Mutex
	count := 0
	require.NoError(t, w.Watch([]string{file}, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	}))
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(file, []byte{byte('a' + i)}, 0644))
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count, "burst of writes should collapse into one callback")
}

func TestWatcher_StopSilences(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "patterns.txt")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))

	w := newTestWatcher(t)
	changed := make(chan string, 10)
	require.NoError(t, w.Watch([]string{file}, func(path string) { changed <- path }))

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop()) // idempotent

	require.NoError(t, os.WriteFile(file, []byte("b\n"), 0644))
	_, ok := waitForCallback(changed, 200*time.Millisecond)
	assert.False(t, ok)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := newTestWatcher(t)
	err := w.Watch([]string{filepath.Join(t.TempDir(), "nope", "patterns.txt")}, func(string) {})
	assert.Error(t, err)
}
