// Package rules embeds a Risor VM and runs per-language rule scripts that
// post-process a freshly indexed document: filtering occurrences, adjusting
// syntax kinds, or tagging roles.
package rules

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"

	"github.com/jward/treeline/internal/scip"
)

// Runtime loads and executes rule scripts. Scripts come from an fs.FS
// (usually the embedded defaults) or a directory on disk.
type Runtime struct {
	rulesDir string
	fsys     fs.FS
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithFS configures the Runtime to load scripts from an fs.FS instead of
// from disk. This enables embedding scripts via go:embed.
func WithFS(fsys fs.FS) Option {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// NewRuntime creates a Runtime. rulesDir may be empty when WithFS is used.
func NewRuntime(rulesDir string, opts ...Option) *Runtime {
	r := &Runtime{rulesDir: rulesDir}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ScriptPath returns the path to a language's rule script.
func ScriptPath(language string) string {
	return filepath.Join("rules", language+".risor")
}

// Apply runs the rule script for doc's language over the document. A
// missing script is not an error; a script failure is.
func (r *Runtime) Apply(ctx context.Context, doc *scip.Document) error {
	src, ok, err := r.loadScript(ScriptPath(doc.Language))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return r.eval(ctx, src, ScriptPath(doc.Language), doc)
}

// ApplySource executes rule source code directly against doc. Useful for
// testing without script files.
func (r *Runtime) ApplySource(ctx context.Context, source string, doc *scip.Document) error {
	return r.eval(ctx, source, "<inline>", doc)
}

func (r *Runtime) eval(ctx context.Context, source, label string, doc *scip.Document) error {
	h := &docHandle{doc: doc}
	var opts []risor.Option
	for name, val := range buildGlobals(h) {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return fmt.Errorf("rules: script %s: %w", label, err)
	}
	return nil
}

// loadScript reads a .risor file. Returns ok=false when the script does
// not exist for this language.
func (r *Runtime) loadScript(path string) (string, bool, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("rules: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), true, nil
	}

	if r.rulesDir == "" {
		return "", false, nil
	}
	fullPath := filepath.Join(r.rulesDir, filepath.Base(path))
	data, err := os.ReadFile(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("rules: loading script %s: %w", fullPath, err)
	}
	return string(data), true, nil
}
