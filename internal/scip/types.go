package scip

// Symbol role bit flags, matching the SCIP protocol values.
const (
	RoleDefinition  int32 = 1
	RoleImport      int32 = 2
	RoleWriteAccess int32 = 4
	RoleReadAccess  int32 = 8
	RoleGenerated   int32 = 16
	RoleTest        int32 = 32
)

// SymbolKind classifies a definition.
type SymbolKind string

const (
	KindNamespace SymbolKind = "namespace"
	KindType      SymbolKind = "type"
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindVariable  SymbolKind = "variable"
	KindParameter SymbolKind = "parameter"
	KindUnknown   SymbolKind = "unknown"
)

// SyntaxKind labels how an occurrence should be highlighted.
type SyntaxKind string

const (
	SyntaxIdentifier         SyntaxKind = "identifier"
	SyntaxIdentifierFunction SyntaxKind = "identifier.function"
	SyntaxIdentifierType     SyntaxKind = "identifier.type"
	SyntaxIdentifierModule   SyntaxKind = "identifier.module"
	SyntaxIdentifierLocal    SyntaxKind = "identifier.local"
	SyntaxIdentifierBuiltin  SyntaxKind = "identifier.builtin"
)

// Occurrence is a single appearance of a symbol in a document.
type Occurrence struct {
	// Range is SCIP-encoded: [startLine, startCol, endCol] for single-line
	// occurrences, [startLine, startCol, endLine, endCol] otherwise.
	// Positions are 0-based; end column is exclusive.
	Range      []int32
	Symbol     string
	Roles      int32
	SyntaxKind SyntaxKind
}

// IsDefinition reports whether the definition role bit is set.
func (o *Occurrence) IsDefinition() bool {
	return o.Roles&RoleDefinition != 0
}

// SymbolInformation describes a symbol defined in a document.
type SymbolInformation struct {
	Symbol          string
	DisplayName     string
	Kind            SymbolKind
	EnclosingSymbol string
	Documentation   []string
}

// Document is the result of indexing one source file: its occurrences in
// range order plus a symbol table for the definitions it contains.
type Document struct {
	RelativePath string
	Language     string
	Occurrences  []*Occurrence
	Symbols      []*SymbolInformation
}

// SymbolInfo returns the SymbolInformation for a symbol, or nil.
func (d *Document) SymbolInfo(symbol string) *SymbolInformation {
	for _, si := range d.Symbols {
		if si.Symbol == symbol {
			return si
		}
	}
	return nil
}
