package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/treeline/internal/scip"
)

func testDoc() *scip.Document {
	return &scip.Document{
		RelativePath: "src/example_test.go",
		Language:     "go",
		Occurrences: []*scip.Occurrence{
			{Range: []int32{0, 8, 12}, Symbol: "scip-treeline . . . main/", Roles: scip.RoleDefinition, SyntaxKind: scip.SyntaxIdentifierModule},
			{Range: []int32{2, 5, 8}, Symbol: "local 0", Roles: scip.RoleReadAccess, SyntaxKind: scip.SyntaxIdentifierLocal},
		},
		Symbols: []*scip.SymbolInformation{
			{Symbol: "scip-treeline . . . main/", DisplayName: "main", Kind: scip.KindNamespace},
		},
	}
}

func TestApplySource_DropOccurrence(t *testing.T) {
	t.Parallel()
	doc := testDoc()
	rt := NewRuntime("")

	err := rt.ApplySource(context.Background(), `drop_occurrence(0)`, doc)
	require.NoError(t, err)
	require.Len(t, doc.Occurrences, 1)
	assert.Equal(t, "local 0", doc.Occurrences[0].Symbol)
}

func TestApplySource_AddRole(t *testing.T) {
	t.Parallel()
	doc := testDoc()
	rt := NewRuntime("")

	script := `
for i := 0; i < occurrence_count(); i++ {
    add_role(i, 32)
}
`
	require.NoError(t, rt.ApplySource(context.Background(), script, doc))
	assert.Equal(t, scip.RoleDefinition|scip.RoleTest, doc.Occurrences[0].Roles)
	assert.Equal(t, scip.RoleReadAccess|scip.RoleTest, doc.Occurrences[1].Roles)
}

func TestApplySource_SetRoleReplaces(t *testing.T) {
	t.Parallel()
	doc := testDoc()
	rt := NewRuntime("")

	require.NoError(t, rt.ApplySource(context.Background(), `set_role(0, 8)`, doc))
	assert.Equal(t, scip.RoleReadAccess, doc.Occurrences[0].Roles)
}

func TestApplySource_SetSyntaxKind(t *testing.T) {
	t.Parallel()
	doc := testDoc()
	rt := NewRuntime("")

	script := `
if doc_language() == "go" {
    set_syntax_kind(1, "identifier.builtin")
}
`
	require.NoError(t, rt.ApplySource(context.Background(), script, doc))
	assert.Equal(t, scip.SyntaxIdentifierBuiltin, doc.Occurrences[1].SyntaxKind)
}

func TestApplySource_OccurrenceFields(t *testing.T) {
	t.Parallel()
	doc := testDoc()
	rt := NewRuntime("")

	// Reading an occurrence and branching on its fields.
	script := `
occ := occurrence(0)
if occ["symbol"] == "scip-treeline . . . main/" && occ["start_col"] == 8 {
    set_syntax_kind(0, "identifier")
}
`
	require.NoError(t, rt.ApplySource(context.Background(), script, doc))
	assert.Equal(t, scip.SyntaxIdentifier, doc.Occurrences[0].SyntaxKind)
}

func TestApplySource_SymbolDisplay(t *testing.T) {
	t.Parallel()
	doc := testDoc()
	rt := NewRuntime("")

	script := `
if symbol_display(occurrence(0)["symbol"]) == "main" {
    drop_occurrence(0)
}
`
	require.NoError(t, rt.ApplySource(context.Background(), script, doc))
	assert.Len(t, doc.Occurrences, 1)
}

func TestApplySource_IndexOutOfRange(t *testing.T) {
	t.Parallel()
	doc := testDoc()
	rt := NewRuntime("")

	err := rt.ApplySource(context.Background(), `drop_occurrence(99)`, doc)
	assert.Error(t, err)
}

func TestApply_FromFS(t *testing.T) {
	t.Parallel()
	doc := testDoc()

	fsys := fstest.MapFS{
		"rules/go.risor": &fstest.MapFile{Data: []byte(`
if doc_path().has_suffix("_test.go") {
    for i := 0; i < occurrence_count(); i++ {
        add_role(i, 32)
    }
}
`)},
	}
	rt := NewRuntime("", WithFS(fsys))

	require.NoError(t, rt.Apply(context.Background(), doc))
	assert.NotZero(t, doc.Occurrences[0].Roles&scip.RoleTest)
}

func TestApply_MissingScriptIsNoop(t *testing.T) {
	t.Parallel()
	doc := testDoc()
	doc.Language = "python"

	rt := NewRuntime("", WithFS(fstest.MapFS{}))
	require.NoError(t, rt.Apply(context.Background(), doc))
	assert.Equal(t, scip.RoleDefinition, doc.Occurrences[0].Roles)
}

func TestApply_FromDisk(t *testing.T) {
	t.Parallel()
	doc := testDoc()

	dir := t.TempDir()
	script := []byte(`drop_occurrence(0)`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.risor"), script, 0o644))

	rt := NewRuntime(dir)
	require.NoError(t, rt.Apply(context.Background(), doc))
	assert.Len(t, doc.Occurrences, 1)
}

func TestApply_ScriptErrorPropagates(t *testing.T) {
	t.Parallel()
	doc := testDoc()

	fsys := fstest.MapFS{
		"rules/go.risor": &fstest.MapFile{Data: []byte(`this is not risor(`)},
	}
	rt := NewRuntime("", WithFS(fsys))
	assert.Error(t, rt.Apply(context.Background(), doc))
}
