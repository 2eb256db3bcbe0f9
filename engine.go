package treeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/jward/treeline/internal/rules"
	"github.com/jward/treeline/internal/scip"
	"github.com/jward/treeline/internal/store"
	"github.com/jward/treeline/internal/syntax"
	"github.com/jward/treeline/scripts"
)

// Engine orchestrates the indexing pipeline: file discovery, change
// detection, tree-sitter indexing, rule scripts, and query access.
type Engine struct {
	store     *store.Store
	rules     *rules.Runtime
	rulesDir  string
	rulesFS   fs.FS
	languages map[string]bool // nil means all languages

	// useParallel enables the worker-pool indexing pipeline.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages restricts which languages the Engine will process.
func WithLanguages(languages ...string) Option {
	return func(e *Engine) {
		e.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			e.languages[lang] = true
		}
	}
}

// WithParallel controls parallel indexing. When true (default), IndexFiles
// uses a worker pool for parsing and rule execution, with batches committed
// serially to SQLite. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithRulesDir loads rule scripts from a directory on disk instead of the
// embedded defaults.
func WithRulesDir(dir string) Option {
	return func(e *Engine) {
		e.rulesDir = dir
	}
}

// WithRulesFS loads rule scripts from the given filesystem. Takes
// precedence over WithRulesDir.
func WithRulesFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.rulesFS = fsys
	}
}

// New creates an Engine backed by a SQLite database at dbPath. Rule script
// loading priority:
//  1. If WithRulesFS is set, the provided fs.FS
//  2. If WithRulesDir is set, that directory on disk
//  3. Otherwise, the embedded default scripts
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("treeline: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("treeline: migrate: %w", err)
	}

	e := &Engine{
		store:       s,
		useParallel: true, // default to parallel indexing
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rulesFS == nil && e.rulesDir == "" {
		e.rulesFS = scripts.FS
	}
	e.rules = e.newRules()

	return e, nil
}

// newRules builds a rules Runtime with the Engine's configured script
// source. Workers in the parallel pipeline each get their own.
func (e *Engine) newRules() *rules.Runtime {
	if e.rulesFS != nil {
		return rules.NewRuntime(e.rulesDir, rules.WithFS(e.rulesFS))
	}
	return rules.NewRuntime(e.rulesDir)
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Query returns a new QueryBuilder wrapping the Store.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store}
}

// rulesHash computes a SHA-256 hash of all rule scripts. Walks the rulesFS
// or rulesDir for .risor files, sorts them by path, and hashes their
// concatenated contents.
func (e *Engine) rulesHash() string {
	type script struct {
		path string
		data []byte
	}
	var found []script

	if e.rulesFS != nil {
		fs.WalkDir(e.rulesFS, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".risor") {
				return nil
			}
			data, err := fs.ReadFile(e.rulesFS, path)
			if err == nil {
				found = append(found, script{path, data})
			}
			return nil
		})
	} else if e.rulesDir != "" {
		filepath.WalkDir(e.rulesDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".risor") {
				return nil
			}
			data, err := os.ReadFile(path)
			if err == nil {
				rel, _ := filepath.Rel(e.rulesDir, path)
				found = append(found, script{rel, data})
			}
			return nil
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].path < found[j].path })

	h := sha256.New()
	for _, s := range found {
		h.Write([]byte(s.path))
		h.Write(s.data)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// RulesChanged reports whether the rule scripts differ from what was used
// to build the current database. Returns true if the DB has no stored hash
// (first run) or if the hash doesn't match. When true, the caller should
// reindex with Force.
func (e *Engine) RulesChanged() bool {
	stored, err := e.store.GetMetadata("rules_hash")
	if err != nil || stored == "" {
		return true
	}
	return e.rulesHash() != stored
}

// storeRulesHash persists the current rules hash to the database.
func (e *Engine) storeRulesHash() {
	_ = e.store.SetMetadata("rules_hash", e.rulesHash())
}

// IndexFiles indexes the given file paths. When WithParallel is enabled,
// uses a worker pool for concurrent parsing with batched SQLite writes.
// Otherwise falls back to the serial path.
//
// For each file:
//  1. Detect language from extension
//  2. Skip unsupported or filtered-out languages
//  3. Skip unchanged files (same content hash)
//  4. Delete stale data, insert the document record
//  5. Run the tree-sitter indexing pass and rule script
//  6. Persist symbols and occurrences
func (e *Engine) IndexFiles(ctx context.Context, paths []string) error {
	var err error
	if e.useParallel {
		err = e.indexFilesParallel(ctx, paths)
	} else {
		err = e.indexFilesSerial(ctx, paths)
	}
	if err != nil {
		return err
	}
	e.storeRulesHash()
	return nil
}

func (e *Engine) indexFilesSerial(ctx context.Context, paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := e.indexFile(ctx, path); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", path, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

func (e *Engine) indexFile(ctx context.Context, path string) error {
	docID, content, lang, skip, err := e.prepareDocument(path)
	if err != nil || skip {
		return err
	}

	doc, err := syntax.IndexDocument(ctx, path, content, lang)
	if err != nil {
		e.discardDocument(docID)
		return fmt.Errorf("index document: %w", err)
	}
	if err := e.rules.Apply(ctx, doc); err != nil {
		e.discardDocument(docID)
		return fmt.Errorf("rules: %w", err)
	}
	if err := writeDocument(e.store, docID, doc); err != nil {
		e.discardDocument(docID)
		return err
	}
	return nil
}

// discardDocument drops the document row inserted by prepareDocument when a
// later pipeline stage fails. Leaving the row behind would store the new
// content hash and suppress the retry on the next run.
func (e *Engine) discardDocument(docID int64) {
	_ = e.store.DeleteDocumentData(docID)
}

// prepareDocument does the serial bookkeeping for one file: language
// detection and filtering, content hashing, stale-data cleanup, and the
// document record insert. skip=true means unchanged or out of scope.
func (e *Engine) prepareDocument(path string) (docID int64, content []byte, lang string, skip bool, err error) {
	lang, ok := syntax.LanguageForFile(path)
	if !ok {
		return 0, nil, "", true, nil // unsupported extension
	}
	if e.languages != nil && !e.languages[lang] {
		return 0, nil, "", true, nil // filtered out
	}

	content, err = os.ReadFile(path)
	if err != nil {
		return 0, nil, "", false, fmt.Errorf("read file: %w", err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := e.store.DocumentByPath(path)
	if err != nil {
		return 0, nil, "", false, fmt.Errorf("lookup document: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		return 0, nil, "", true, nil // unchanged
	}
	if existing != nil {
		if err := e.store.DeleteDocumentData(existing.ID); err != nil {
			return 0, nil, "", false, fmt.Errorf("delete old data: %w", err)
		}
	}

	lineCount := bytes.Count(content, []byte{'\n'}) + 1
	docID, err = e.store.InsertDocument(&store.Document{
		Path:        path,
		Language:    lang,
		Hash:        hash,
		LineCount:   lineCount,
		LastIndexed: time.Now(),
	})
	if err != nil {
		return 0, nil, "", false, fmt.Errorf("insert document: %w", err)
	}
	return docID, content, lang, false, nil
}

// writeDocument converts an indexed document into store rows. ds is either
// the Store itself (serial path) or a BatchedStore (parallel path).
func writeDocument(ds store.DataStore, docID int64, doc *scip.Document) error {
	for _, si := range doc.Symbols {
		if _, err := ds.InsertSymbol(&store.Symbol{
			DocumentID:      docID,
			Symbol:          si.Symbol,
			DisplayName:     si.DisplayName,
			Kind:            string(si.Kind),
			EnclosingSymbol: si.EnclosingSymbol,
			Documentation:   si.Documentation,
		}); err != nil {
			return fmt.Errorf("insert symbol %q: %w", si.DisplayName, err)
		}
	}
	for _, occ := range doc.Occurrences {
		startLine, startCol, endLine, endCol := scip.RangeBounds(occ.Range)
		if _, err := ds.InsertOccurrence(&store.Occurrence{
			DocumentID: docID,
			Symbol:     occ.Symbol,
			Roles:      occ.Roles,
			SyntaxKind: string(occ.SyntaxKind),
			StartLine:  int(startLine),
			StartCol:   int(startCol),
			EndLine:    int(endLine),
			EndCol:     int(endCol),
		}); err != nil {
			return fmt.Errorf("insert occurrence %q: %w", occ.Symbol, err)
		}
	}
	return nil
}

// RemoveFile deletes a file's document, symbols, and occurrences from the
// index. Removing an unindexed file is a no-op.
func (e *Engine) RemoveFile(path string) error {
	existing, err := e.store.DocumentByPath(path)
	if err != nil {
		return fmt.Errorf("treeline: lookup document: %w", err)
	}
	if existing == nil {
		return nil
	}
	return e.store.DeleteDocumentData(existing.ID)
}

// skipDirs are directories excluded from the filesystem-walk fallback.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// IndexDirectory walks root and indexes all files with supported
// extensions. If root is inside a git repository, uses git ls-files to
// respect .gitignore. Falls back to a filesystem walk (honoring a root
// .gitignore and skipping hidden dirs, node_modules, vendor, __pycache__)
// if git is unavailable.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	paths, err := e.gitListFiles(root)
	if err != nil {
		// Not a git repo or git not available.
		paths, err = e.walkListFiles(root)
		if err != nil {
			return err
		}
	}
	return e.IndexFiles(ctx, paths)
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered to supported languages.
func (e *Engine) gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(root, line)
		if _, ok := syntax.LanguageForFile(absPath); ok {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a
// fallback when git is not available. Honors a .gitignore at root if one
// exists.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var ignore *gitignore.GitIgnore
	if gi, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		ignore = gi
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			if ignore != nil && path != root && ignore.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignore != nil && ignore.MatchesPath(rel) {
			return nil
		}
		if _, ok := syntax.LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
