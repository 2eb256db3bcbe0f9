package treeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startWatch runs e.Watch in the background and returns its result channel.
func startWatch(t *testing.T, ctx context.Context, e *Engine, dir string) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- e.Watch(ctx, dir) }()
	// Give the watcher time to register the directory tree.
	time.Sleep(250 * time.Millisecond)
	return done
}

func TestWatch_AtomicSaveReindexes(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "example.go", addSource)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, e.IndexFiles(ctx, []string{path}))
	done := startWatch(t, ctx, e, dir)

	// Editors like vim save by renaming the old file away and writing a
	// replacement, firing Rename and Create on the same path back to back.
	require.NoError(t, os.Rename(path, filepath.Join(dir, "example.go.bak")))
	writeFile(t, dir, "example.go", `package main

func Sub(a int, b int) int {
	return a - b
}
`)

	require.Eventually(t, func() bool {
		syms, err := e.Query().SymbolsByName("Sub")
		return err == nil && len(syms) == 1
	}, 5*time.Second, 25*time.Millisecond, "replacement file must be indexed")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_RemovesDeletedFile(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "example.go", addSource)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, e.IndexFiles(ctx, []string{path}))
	done := startWatch(t, ctx, e, dir)

	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		docs, err := e.Query().Documents()
		return err == nil && len(docs) == 0
	}, 5*time.Second, 25*time.Millisecond, "deleted file must leave the index")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_KeepsRunningAfterIndexError(t *testing.T) {
	t.Parallel()
	rulesDir := t.TempDir()
	writeFile(t, rulesDir, "go.risor", "1 +")
	e := newTestEngine(t, WithRulesDir(rulesDir))
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := startWatch(t, ctx, e, dir)

	// The broken script fails every Go file; the watch must report that and
	// keep indexing other files.
	broken := writeFile(t, dir, "a.go", addSource)
	writeFile(t, dir, "b.py", "def greet(name):\n    return name\n")

	require.Eventually(t, func() bool {
		syms, err := e.Query().SymbolsByName("greet")
		return err == nil && len(syms) == 1
	}, 5*time.Second, 25*time.Millisecond, "other files still indexed after an error")

	doc, err := e.Store().DocumentByPath(broken)
	require.NoError(t, err)
	assert.Nil(t, doc)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
