package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"shaderscope/internal/shader"
)

func writeUnitFile(t *testing.T, dir, name string, units ...shader.ParsedUnit) string {
	t.Helper()
	data, err := json.Marshal(units)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestWatcherTriggersRebuild(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	s := NewSession(Options{DirectParentsOnly: true})
	defer s.Close()

	loader := NewFileLoader([]string{dir}, 4)
	w, err := NewUnitWatcher(s, loader, []string{dir}, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.True(t, w.IsWatching())

	writeUnitFile(t, dir, "base.json", shader.ParsedUnit{
		Name: "Base", FileIdentity: "Base.sdsl",
	})

	deadline := time.After(5 * time.Second)
	for s.Count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("rebuild never fired; stats: %+v", w.Stats())
		case <-time.After(20 * time.Millisecond):
		}
	}

	_, ok := s.Lookup("Base")
	assert.True(t, ok)
	assert.GreaterOrEqual(t, w.Stats().RebuildsTriggered, 1)
	s.WaitIdle()
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	s := NewSession(Options{})
	defer s.Close()

	w, err := NewUnitWatcher(s, NewFileLoader([]string{dir}, 1), []string{dir}, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "shader.sdsl"), []byte("shader X {}"), 0644))
	time.Sleep(250 * time.Millisecond)

	w.Stop()
	assert.Zero(t, w.Stats().RebuildsTriggered)
	assert.Zero(t, s.Count())
	s.WaitIdle()
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	s := NewSession(Options{})
	w, err := NewUnitWatcher(s, NewFileLoader([]string{dir}, 1), []string{dir}, 0)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
	assert.False(t, w.IsWatching())
}
