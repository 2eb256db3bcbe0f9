package treeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jward/treeline/internal/store"
	"github.com/jward/treeline/internal/syntax"
)

// workItem holds everything a parallel indexing worker needs.
type workItem struct {
	path    string
	lang    string
	docID   int64
	content []byte
	batch   *store.BatchedStore
}

// indexFilesParallel indexes files using a three-phase pipeline:
//
//	Phase A (serial):  Hash check, delete old data, insert document records.
//	Phase B (parallel): Parse, index, and run rules via worker pool.
//	Phase C (serial):  Commit batches to SQLite.
func (e *Engine) indexFilesParallel(ctx context.Context, paths []string) error {
	// ---- Phase A: Serial document preparation ----
	var items []workItem
	for _, path := range paths {
		docID, content, lang, skip, err := e.prepareDocument(path)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", path, err)
		}
		if skip {
			continue
		}
		items = append(items, workItem{
			path:    path,
			lang:    lang,
			docID:   docID,
			content: content,
			batch:   store.NewBatchedStore(),
		})
	}

	if len(items) == 0 {
		return nil
	}

	// ---- Phase B: Parallel indexing ----
	numWorkers := min(runtime.NumCPU(), len(items))
	if numWorkers < 1 {
		numWorkers = 1
	}

	workCh := make(chan workItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	type result struct {
		item workItem
		err  error
	}
	resultCh := make(chan result, len(items))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker gets its own rules Runtime; IndexDocument creates
			// its own parser, so no tree-sitter state is shared.
			rt := e.newRules()
			for item := range workCh {
				err := func() error {
					doc, err := syntax.IndexDocument(ctx, item.path, item.content, item.lang)
					if err != nil {
						return fmt.Errorf("index document: %w", err)
					}
					if err := rt.Apply(ctx, doc); err != nil {
						return fmt.Errorf("rules: %w", err)
					}
					return writeDocument(item.batch, item.docID, doc)
				}()
				resultCh <- result{item: item, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// ---- Phase C: Serial commit ----
	// Failed items also drop their Phase A document row, so the stored
	// content hash cannot suppress a retry on the next run.
	var errs []error
	for res := range resultCh {
		if res.err != nil {
			e.discardDocument(res.item.docID)
			errs = append(errs, fmt.Errorf("index %s: %w", res.item.path, res.err))
			continue
		}
		if err := e.store.CommitBatch(res.item.batch); err != nil {
			e.discardDocument(res.item.docID)
			errs = append(errs, fmt.Errorf("commit %s: %w", res.item.path, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("parallel indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}
