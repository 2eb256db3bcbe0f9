package main

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLISymbol is a JSON-friendly symbol representation.
type CLISymbol struct {
	ID              int64    `json:"id"`
	Symbol          string   `json:"symbol"`
	Name            string   `json:"name"`
	Kind            string   `json:"kind"`
	EnclosingSymbol string   `json:"enclosing_symbol,omitempty"`
	File            string   `json:"file,omitempty"`
	Documentation   []string `json:"documentation,omitempty"`
}

// CLIOccurrence is a JSON-friendly occurrence representation.
type CLIOccurrence struct {
	Symbol     string `json:"symbol"`
	Roles      int32  `json:"roles"`
	SyntaxKind string `json:"syntax_kind,omitempty"`
	File       string `json:"file,omitempty"`
	StartLine  int    `json:"start_line"`
	StartCol   int    `json:"start_col"`
	EndLine    int    `json:"end_line"`
	EndCol     int    `json:"end_col"`
}

// CLIDocument is a JSON-friendly document representation.
type CLIDocument struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	Language  string `json:"language"`
	LineCount int    `json:"line_count"`
}

// CLILanguageStat is a JSON-friendly per-language stats row.
type CLILanguageStat struct {
	Language        string `json:"language"`
	DocumentCount   int    `json:"document_count"`
	SymbolCount     int    `json:"symbol_count"`
	OccurrenceCount int    `json:"occurrence_count"`
}

// CLILanguage is a supported-language row for the languages command.
type CLILanguage struct {
	Language   string   `json:"language"`
	Extensions []string `json:"extensions"`
}
