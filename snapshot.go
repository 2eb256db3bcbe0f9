package treeline

import (
	"context"
	"fmt"
	"os"

	"github.com/jward/treeline/internal/rules"
	"github.com/jward/treeline/internal/scip"
	"github.com/jward/treeline/internal/syntax"
	"github.com/jward/treeline/scripts"
)

// SnapshotOption configures a SnapshotFile call.
type SnapshotOption func(*snapshotConfig)

type snapshotConfig struct {
	language string
	rulesDir string
}

// WithSnapshotLanguage overrides extension-based language detection.
func WithSnapshotLanguage(language string) SnapshotOption {
	return func(c *snapshotConfig) {
		c.language = language
	}
}

// WithSnapshotRulesDir loads rule scripts from a directory on disk instead
// of the embedded defaults.
func WithSnapshotRulesDir(dir string) SnapshotOption {
	return func(c *snapshotConfig) {
		c.rulesDir = dir
	}
}

// SnapshotFile indexes a single file and renders the result in snapshot
// format: every source line indented two spaces, followed by annotation
// lines marking each occurrence with its role and symbol. No database is
// involved.
func SnapshotFile(ctx context.Context, path string, opts ...SnapshotOption) (string, error) {
	var cfg snapshotConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("treeline: read %s: %w", path, err)
	}

	lang := cfg.language
	if lang == "" {
		detected, ok := syntax.LanguageForFile(path)
		if !ok {
			return "", fmt.Errorf("treeline: unsupported file type: %s", path)
		}
		lang = detected
	}

	doc, err := syntax.IndexDocument(ctx, path, source, lang)
	if err != nil {
		return "", fmt.Errorf("treeline: index %s: %w", path, err)
	}

	rt := newRulesRuntime(cfg.rulesDir)
	if err := rt.Apply(ctx, doc); err != nil {
		return "", fmt.Errorf("treeline: rules for %s: %w", path, err)
	}

	return scip.FormatSnapshot(doc, source), nil
}

// newRulesRuntime builds a rules Runtime: scripts from dir when given,
// otherwise the embedded defaults.
func newRulesRuntime(dir string) *rules.Runtime {
	if dir != "" {
		return rules.NewRuntime(dir)
	}
	return rules.NewRuntime("", rules.WithFS(scripts.FS))
}
