package store

import "time"

// Document is one indexed source file.
type Document struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	LineCount   int
	LastIndexed time.Time
}

// Symbol is one symbol-table entry of a document.
type Symbol struct {
	ID              int64
	DocumentID      int64
	Symbol          string
	DisplayName     string
	Kind            string
	EnclosingSymbol string
	Documentation   []string
}

// Occurrence is one symbol occurrence in a document. Positions are
// 0-based with an exclusive end column, as in the SCIP encoding.
type Occurrence struct {
	ID         int64
	DocumentID int64
	Symbol     string
	Roles      int32
	SyntaxKind string
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
}

// LanguageStat aggregates index contents for one language.
type LanguageStat struct {
	Language        string
	DocumentCount   int
	SymbolCount     int
	OccurrenceCount int
}
