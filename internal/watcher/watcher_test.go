package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change event")
		return Event{}
	}
}

func TestWatcherEmitsDebouncedEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channels: []\n"), 0o644))

	w := New(path, 50*time.Millisecond)
	events := make(chan Event, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, events))
	defer w.Stop()

	// A burst of writes collapses into one event.
	require.NoError(t, os.WriteFile(path, []byte("channels: []\n# 1\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("channels: []\n# 2\n"), 0o644))

	event := waitForEvent(t, events)
	assert.Equal(t, path, event.Path)

	select {
	case <-events:
		t.Fatal("burst produced more than one event")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherSeparateWritesSeparateEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	w := New(path, 20*time.Millisecond)
	events := make(chan Event, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, events))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))
	waitForEvent(t, events)

	require.NoError(t, os.WriteFile(path, []byte("a: 3\n"), 0o644))
	waitForEvent(t, events)
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	w := New(path, 20*time.Millisecond)
	events := make(chan Event, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, events))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b: 1\n"), 0o644))

	select {
	case e := <-events:
		t.Fatalf("unexpected event for %s", e.Path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.yaml")

	w := New(path, 0)
	assert.Equal(t, DefaultDebounceInterval, w.debounceInterval)

	events := make(chan Event)
	require.NoError(t, w.Start(context.Background(), events))
	w.Stop()
	w.Stop()
}
