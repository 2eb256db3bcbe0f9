package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.Error(t, validateFormat("yaml"))
	assert.Error(t, validateFormat(""))
}

func TestFindRepoRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, root, findRepoRoot(nested))

	// Without a .git directory, the starting directory is returned.
	plain := t.TempDir()
	assert.Equal(t, plain, findRepoRoot(plain))
}

func TestResolveDBPath(t *testing.T) {
	orig := flagDB
	defer func() { flagDB = orig }()

	flagDB = ""
	assert.Equal(t, filepath.Join("/repo", ".treeline", "index.db"), resolveDBPath("/repo"))

	flagDB = "custom.db"
	assert.Equal(t, filepath.Join("/repo", "custom.db"), resolveDBPath("/repo"))

	flagDB = "/abs/custom.db"
	assert.Equal(t, "/abs/custom.db", resolveDBPath("/repo"))
}

func TestResolveTargetDir(t *testing.T) {
	dir := t.TempDir()

	got, err := resolveTargetDir([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = resolveTargetDir([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)

	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = resolveTargetDir([]string{file})
	assert.Error(t, err)
}
