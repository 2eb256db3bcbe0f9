// Package treeline builds SCIP-style syntax indexes on top of tree-sitter.
// It parses source files, emits occurrences and symbol information for each
// document, and can render the result as a human-readable snapshot or persist
// it to SQLite for querying.
//
// # Pipeline
//
// Indexing a file runs three steps:
//
//  1. Parse: tree-sitter parses the file with the grammar matching its
//     extension (or an explicit language override).
//  2. Index: declarative queries over the syntax tree produce a document of
//     occurrences (definitions, locals, references) and symbol information.
//  3. Rules: an optional per-language Risor script post-processes the
//     document, dropping or re-tagging occurrences.
//
// # Usage
//
// For a one-off snapshot of a single file, no database is needed:
//
//	out, err := treeline.SnapshotFile(ctx, "main.go")
//
// For a persistent index, create an Engine, index, and query:
//
//	e, err := treeline.New("index.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	err = e.IndexDirectory(ctx, "path/to/project")
//
//	q := e.Query()
//	syms, err := q.SymbolsByName("ParseFile")
//
// [Engine.IndexFiles] detects unchanged files via content hashing and skips
// them. Use [WithLanguages] to restrict which languages the Engine processes,
// and [WithParallel] to control the worker-pool indexing pipeline.
//
// # Snapshot format
//
// Snapshots interleave source lines (indented two spaces) with annotation
// lines marking each occurrence:
//
//	  func Add(a int, b int) int {
//	//     ^^^ definition scip-treeline . . . main/Add().
//
// # Rules
//
// Per-language rule scripts live in a rules directory as
// rules/{language}.risor. Defaults are embedded in the binary; pass
// [WithRulesDir] to override them from disk.
package treeline
