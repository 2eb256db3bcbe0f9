package treeline

import (
	"fmt"

	"github.com/jward/treeline/internal/scip"
	"github.com/jward/treeline/internal/store"
)

// QueryBuilder provides read access over an indexed Store.
type QueryBuilder struct {
	store *store.Store
}

// Location represents a source code position range.
type Location struct {
	Path      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// SymbolsByName finds all symbols whose display name matches name exactly.
func (q *QueryBuilder) SymbolsByName(name string) ([]*Symbol, error) {
	syms, err := q.store.SymbolsByName(name)
	if err != nil {
		return nil, fmt.Errorf("symbols by name: %w", err)
	}
	return syms, nil
}

// SymbolsByKind finds all symbols of the given kind (namespace, type,
// function, method, variable, parameter).
func (q *QueryBuilder) SymbolsByKind(kind string) ([]*Symbol, error) {
	syms, err := q.store.SymbolsByKind(kind)
	if err != nil {
		return nil, fmt.Errorf("symbols by kind: %w", err)
	}
	return syms, nil
}

// OccurrencesOf finds every indexed occurrence of the given symbol string,
// across all documents.
func (q *QueryBuilder) OccurrencesOf(symbol string) ([]*Occurrence, error) {
	occs, err := q.store.OccurrencesForSymbol(symbol)
	if err != nil {
		return nil, fmt.Errorf("occurrences of: %w", err)
	}
	return occs, nil
}

// DefinitionsInFile returns the locations of all definition occurrences in
// the given file, in source order. Returns nil for unindexed files.
func (q *QueryBuilder) DefinitionsInFile(path string) ([]Location, error) {
	doc, err := q.store.DocumentByPath(path)
	if err != nil {
		return nil, fmt.Errorf("definitions in file: lookup document: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	occs, err := q.store.OccurrencesByDocument(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("definitions in file: %w", err)
	}

	var locations []Location
	for _, occ := range occs {
		if occ.Roles&scip.RoleDefinition == 0 {
			continue
		}
		locations = append(locations, Location{
			Path:      doc.Path,
			StartLine: occ.StartLine,
			StartCol:  occ.StartCol,
			EndLine:   occ.EndLine,
			EndCol:    occ.EndCol,
		})
	}
	return locations, nil
}

// Documents returns all indexed documents ordered by path.
func (q *QueryBuilder) Documents() ([]*Document, error) {
	docs, err := q.store.AllDocuments()
	if err != nil {
		return nil, fmt.Errorf("documents: %w", err)
	}
	return docs, nil
}

// Languages returns the distinct languages present in the index.
func (q *QueryBuilder) Languages() ([]string, error) {
	langs, err := q.store.DistinctLanguages()
	if err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}
	return langs, nil
}

// Stats returns per-language document, symbol and occurrence counts.
func (q *QueryBuilder) Stats() ([]*LanguageStat, error) {
	stats, err := q.store.LanguageStats()
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}
