package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitBatch(t *testing.T, w *Watcher) []string {
	t.Helper()
	select {
	case batch, ok := <-w.Changes():
		require.True(t, ok, "changes channel closed")
		return batch
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
		return nil
	}
}

func TestWatcherFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "keys.toml", "")
	other := filepath.Join(dir, "other.txt")

	w, err := NewWatcher(20*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.AddFile(path))

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("ab"), 0o644))

	batch := waitBatch(t, w)
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, batch)
}

func TestWatcherDir(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(20*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.AddDir(dir))
	path := writeFile(t, dir, "new.yaml", "bindings: []\n")

	batch := waitBatch(t, w)
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Contains(t, batch, abs)
}

func TestWatcherClose(t *testing.T) {
	w, err := NewWatcher(0, nil)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Changes()
	assert.False(t, ok)
	assert.ErrorIs(t, w.AddDir(t.TempDir()), ErrWatcherClosed)
	assert.ErrorIs(t, w.AddFile("x.toml"), ErrWatcherClosed)
}

func TestWatcherMissingDir(t *testing.T) {
	w, err := NewWatcher(0, nil)
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.AddDir(filepath.Join(t.TempDir(), "missing")))
}
