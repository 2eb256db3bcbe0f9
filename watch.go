package treeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jward/treeline/internal/syntax"
)

// watchIgnoreDirs are directories never watched for changes.
var watchIgnoreDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	"target":       true,
}

// Watch monitors root recursively and keeps the index current: changed and
// created files are re-indexed, deleted files are removed from the index.
// Editors often fire several events per save (atomic-save editors rename the
// old file away and create a replacement), so events are debounced per path
// and the file's state on disk once events settle decides whether the path
// is re-indexed or removed. Per-file errors are reported to stderr and do
// not stop the watch. Blocks until ctx is cancelled.
func (e *Engine) Watch(ctx context.Context, root string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("treeline: create watcher: %w", err)
	}
	defer fw.Close()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("treeline: resolve %s: %w", root, err)
	}

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if info.IsDir() {
			name := info.Name()
			if path != absRoot && (watchIgnoreDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("treeline: watch %s: %w", absRoot, err)
	}

	// Trailing-edge debounce: each event resets the path's timer, and the
	// path is reconciled only after a quiet interval. A leading-edge skip
	// would lose the Create that follows a Rename during an atomic save.
	const quiet = 50 * time.Millisecond
	pending := make(map[string]*time.Timer)
	var pmu sync.Mutex
	settled := make(chan string)

	defer func() {
		pmu.Lock()
		defer pmu.Unlock()
		for _, t := range pending {
			t.Stop()
		}
	}()

	schedule := func(path string) {
		pmu.Lock()
		defer pmu.Unlock()
		if t, ok := pending[path]; ok {
			t.Reset(quiet)
			return
		}
		pending[path] = time.AfterFunc(quiet, func() {
			pmu.Lock()
			delete(pending, path)
			pmu.Unlock()
			select {
			case settled <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case path := <-settled:
			if err := e.syncPath(ctx, path); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: watch %s: %s\n", path, err)
			}

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			path := event.Name

			// New directories join the watch list.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					if !watchIgnoreDirs[info.Name()] && !strings.HasPrefix(info.Name(), ".") {
						fw.Add(path)
					}
					continue
				}
			}

			if watchIgnorePath(path) {
				continue
			}
			if _, supported := syntax.LanguageForFile(path); !supported {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				schedule(path)
			}

		case _, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			// fsnotify recovers on its own; keep watching.
		}
	}
}

// syncPath reconciles the index with the file's state on disk: re-index if
// the file exists, drop it from the index otherwise.
func (e *Engine) syncPath(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return e.RemoveFile(path)
	}
	return e.IndexFiles(ctx, []string{path})
}

// watchIgnorePath reports whether any component of path is an ignored
// directory.
func watchIgnorePath(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if watchIgnoreDirs[part] {
			return true
		}
	}
	return false
}
