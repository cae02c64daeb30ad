package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestIgnored(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"src/main.go", false},
		{"node_modules/react/index.js", true},
		{"web/node_modules/x.js", true},
		{"pkg/__pycache__/mod.pyc", true},
		{"target/debug/app", true},
		{".git/index", false},
		{".git/HEAD", false},
		{".git/refs/heads/main", false},
		{".git/objects/ab/cdef", true},
		{".git/index.lock", true},
		{".git", true},
		{"dist", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, Ignored(tt.path))
		})
	}
}

func TestWatcher_SkipsNoisyDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "lib"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "refs", "heads"), 0o755))

	w, err := New(root, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Stop()

	// root, src, src/pkg, .git, .git/refs, .git/refs/heads
	assert.Equal(t, 6, w.WatchedCount())
}

func TestWatcher_DebouncesChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))

	w, err := New(root, 50*time.Millisecond, nil)
	require.NoError(t, err)

	calls := make(chan []string, 4)
	w.Start(context.Background(), func(_ context.Context, changed []string) {
		calls <- changed
	})

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "util.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "x.js"), []byte("1"), 0o644))

	select {
	case changed := <-calls:
		assert.Equal(t, []string{"main.go", "util.go"}, changed)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case changed := <-calls:
		t.Fatalf("unexpected second run: %v", changed)
	case <-time.After(200 * time.Millisecond):
	}

	w.Stop()
	w.Stop()
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()

	w, err := New(root, 30*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Stop()

	calls := make(chan []string, 8)
	w.Start(context.Background(), func(_ context.Context, changed []string) {
		calls <- changed
	})

	require.NoError(t, os.Mkdir(filepath.Join(root, "pkg"), 0o755))
	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("directory creation not reported")
	}

	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "a.go"), []byte("package pkg\n"), 0o644))
	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-calls:
			if assert.NotEmpty(t, changed) && changed[len(changed)-1] == "pkg/a.go" {
				return
			}
		case <-deadline:
			t.Fatal("change in new directory not reported")
		}
	}
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	w, err := New(t.TempDir(), 10*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx, func(context.Context, []string) {})
	cancel()
	w.Stop()
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	w, err := New(t.TempDir(), 10*time.Millisecond, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		w.Stop()
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked without a running loop")
	}

	called := false
	w.Start(context.Background(), func(context.Context, []string) { called = true })
	assert.False(t, called)
}
