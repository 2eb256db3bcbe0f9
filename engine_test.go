package treeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/treeline/internal/scip"
)

const addSource = `package main

func Add(a int, b int) int {
	return a + b
}
`

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "index.db")
	e, err := New(dbPath, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEngine_IndexFiles(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "example.go", addSource)

	require.NoError(t, e.IndexFiles(context.Background(), []string{path}))

	syms, err := e.Query().SymbolsByName("Add")
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "function", syms[0].Kind)
	assert.Equal(t, "scip-treeline . . . main/Add().", syms[0].Symbol)

	docs, err := e.Query().Documents()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, path, docs[0].Path)
	assert.Equal(t, "go", docs[0].Language)
	assert.Equal(t, 6, docs[0].LineCount)

	occs, err := e.Query().OccurrencesOf("scip-treeline . . . main/Add().")
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, 2, occs[0].StartLine)
	assert.Equal(t, 5, occs[0].StartCol)

	defs, err := e.Query().DefinitionsInFile(path)
	require.NoError(t, err)
	// main, Add, and the two parameters.
	assert.Len(t, defs, 4)
}

func TestEngine_SerialMatchesParallel(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "example.go", addSource)

	parallel := newTestEngine(t)
	serial := newTestEngine(t, WithParallel(false))

	require.NoError(t, parallel.IndexFiles(context.Background(), []string{path}))
	require.NoError(t, serial.IndexFiles(context.Background(), []string{path}))

	pOccs, err := parallel.Query().OccurrencesOf("local 0")
	require.NoError(t, err)
	sOccs, err := serial.Query().OccurrencesOf("local 0")
	require.NoError(t, err)

	require.Equal(t, len(pOccs), len(sOccs))
	for i := range pOccs {
		assert.Equal(t, pOccs[i].StartLine, sOccs[i].StartLine)
		assert.Equal(t, pOccs[i].StartCol, sOccs[i].StartCol)
		assert.Equal(t, pOccs[i].Roles, sOccs[i].Roles)
	}
}

func TestEngine_UnchangedFileSkipped(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "example.go", addSource)
	ctx := context.Background()

	require.NoError(t, e.IndexFiles(ctx, []string{path}))
	docs, err := e.Query().Documents()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	firstID := docs[0].ID

	require.NoError(t, e.IndexFiles(ctx, []string{path}))
	docs, err = e.Query().Documents()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, firstID, docs[0].ID, "unchanged file must not be re-inserted")
}

func TestEngine_ChangedFileReindexed(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "example.go", addSource)
	ctx := context.Background()

	require.NoError(t, e.IndexFiles(ctx, []string{path}))

	writeFile(t, dir, "example.go", `package main

func Sub(a int, b int) int {
	return a - b
}
`)
	require.NoError(t, e.IndexFiles(ctx, []string{path}))

	added, err := e.Query().SymbolsByName("Sub")
	require.NoError(t, err)
	assert.Len(t, added, 1)

	removed, err := e.Query().SymbolsByName("Add")
	require.NoError(t, err)
	assert.Empty(t, removed, "stale symbols must be deleted on reindex")

	docs, err := e.Query().Documents()
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestEngine_FailedFileRetriedAfterError(t *testing.T) {
	t.Parallel()
	for _, serial := range []bool{false, true} {
		serial := serial
		name := "parallel"
		if serial {
			name = "serial"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rulesDir := t.TempDir()
			script := writeFile(t, rulesDir, "go.risor", "1 +")
			e := newTestEngine(t, WithRulesDir(rulesDir), WithParallel(!serial))
			dir := t.TempDir()
			path := writeFile(t, dir, "example.go", addSource)
			ctx := context.Background()

			require.Error(t, e.IndexFiles(ctx, []string{path}))

			doc, err := e.Store().DocumentByPath(path)
			require.NoError(t, err)
			assert.Nil(t, doc, "a failed file must not keep its document row")

			// With the script repaired, the same content is indexed on the
			// next run instead of being hash-skipped.
			require.NoError(t, os.WriteFile(script, []byte("x := 1"), 0o644))
			require.NoError(t, e.IndexFiles(ctx, []string{path}))

			syms, err := e.Query().SymbolsByName("Add")
			require.NoError(t, err)
			assert.Len(t, syms, 1)
		})
	}
}

func TestEngine_LanguageFilter(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, WithLanguages("python"))
	dir := t.TempDir()
	path := writeFile(t, dir, "example.go", addSource)

	require.NoError(t, e.IndexFiles(context.Background(), []string{path}))

	docs, err := e.Query().Documents()
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestEngine_RemoveFile(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "example.go", addSource)
	ctx := context.Background()

	require.NoError(t, e.IndexFiles(ctx, []string{path}))
	require.NoError(t, e.RemoveFile(path))

	docs, err := e.Query().Documents()
	require.NoError(t, err)
	assert.Empty(t, docs)

	// Removing an unindexed file is a no-op.
	require.NoError(t, e.RemoveFile(filepath.Join(dir, "missing.go")))
}

func TestEngine_IndexDirectoryHonorsGitignore(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	writeFile(t, dir, "kept.go", addSource)
	writeFile(t, dir, "ignored.go", addSource)
	writeFile(t, dir, "vendor/dep.go", addSource)
	writeFile(t, dir, ".gitignore", "ignored.go\n")

	require.NoError(t, e.IndexDirectory(context.Background(), dir))

	docs, err := e.Query().Documents()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, filepath.Join(dir, "kept.go"), docs[0].Path)
}

func TestEngine_EmbeddedRulesTagTestFiles(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "example_test.go", addSource)

	require.NoError(t, e.IndexFiles(context.Background(), []string{path}))

	occs, err := e.Query().OccurrencesOf("scip-treeline . . . main/Add().")
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.NotZero(t, occs[0].Roles&scip.RoleTest, "occurrences in _test.go files carry the test role")
}

func TestEngine_RulesChanged(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "example.go", addSource)

	assert.True(t, e.RulesChanged(), "fresh database has no stored hash")

	require.NoError(t, e.IndexFiles(context.Background(), []string{path}))
	assert.False(t, e.RulesChanged())
}

func TestEngine_Stats(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.go", addSource)
	writeFile(t, dir, "b.py", "def greet(name):\n    return name\n")

	require.NoError(t, e.IndexDirectory(context.Background(), dir))

	stats, err := e.Query().Stats()
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "go", stats[0].Language)
	assert.Equal(t, 1, stats[0].DocumentCount)
	assert.Equal(t, "python", stats[1].Language)

	langs, err := e.Query().Languages()
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "python"}, langs)
}
