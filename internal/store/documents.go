package store

import (
	"database/sql"
	"fmt"
)

// --- Document operations ---

func (s *Store) InsertDocument(d *Document) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO documents (path, language, hash, line_count, last_indexed) VALUES (?, ?, ?, ?, ?)",
		d.Path, d.Language, d.Hash, d.LineCount, d.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	d.ID = id
	return id, nil
}

func (s *Store) DocumentByPath(path string) (*Document, error) {
	d := &Document{}
	err := s.db.QueryRow(
		"SELECT id, path, language, hash, line_count, last_indexed FROM documents WHERE path = ?", path,
	).Scan(&d.ID, &d.Path, &d.Language, &d.Hash, &d.LineCount, &d.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("document by path: %w", err)
	}
	return d, nil
}

func (s *Store) queryDocuments(query string, args ...any) ([]*Document, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()
	var docs []*Document
	for rows.Next() {
		d := &Document{}
		if err := rows.Scan(&d.ID, &d.Path, &d.Language, &d.Hash, &d.LineCount, &d.LastIndexed); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

const documentCols = "id, path, language, hash, line_count, last_indexed"

func (s *Store) DocumentsByLanguage(language string) ([]*Document, error) {
	return s.queryDocuments("SELECT "+documentCols+" FROM documents WHERE language = ? ORDER BY path", language)
}

func (s *Store) AllDocuments() ([]*Document, error) {
	return s.queryDocuments("SELECT " + documentCols + " FROM documents ORDER BY path")
}

// --- Symbol operations ---

func (s *Store) InsertSymbol(sym *Symbol) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO symbols (document_id, symbol, display_name, kind, enclosing_symbol, documentation)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sym.DocumentID, sym.Symbol, sym.DisplayName, sym.Kind, sym.EnclosingSymbol,
		marshalDocumentation(sym.Documentation),
	)
	if err != nil {
		return 0, fmt.Errorf("insert symbol: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	sym.ID = id
	return id, nil
}

const symbolCols = "id, document_id, symbol, display_name, kind, enclosing_symbol, documentation"

func (s *Store) scanSymbol(scanner interface{ Scan(...any) error }) (*Symbol, error) {
	sym := &Symbol{}
	var docs string
	err := scanner.Scan(
		&sym.ID, &sym.DocumentID, &sym.Symbol, &sym.DisplayName, &sym.Kind,
		&sym.EnclosingSymbol, &docs,
	)
	if err != nil {
		return nil, err
	}
	sym.Documentation = unmarshalDocumentation(docs)
	return sym, nil
}

func (s *Store) querySymbols(query string, args ...any) ([]*Symbol, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var symbols []*Symbol
	for rows.Next() {
		sym, err := s.scanSymbol(rows)
		if err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

func (s *Store) SymbolsByDocument(documentID int64) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+symbolCols+" FROM symbols WHERE document_id = ?", documentID)
}

func (s *Store) SymbolsByName(name string) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+symbolCols+" FROM symbols WHERE display_name = ?", name)
}

func (s *Store) SymbolsByKind(kind string) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+symbolCols+" FROM symbols WHERE kind = ?", kind)
}

// --- Occurrence operations ---

func (s *Store) InsertOccurrence(occ *Occurrence) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO occurrences (document_id, symbol, roles, syntax_kind,
			start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		occ.DocumentID, occ.Symbol, occ.Roles, occ.SyntaxKind,
		occ.StartLine, occ.StartCol, occ.EndLine, occ.EndCol,
	)
	if err != nil {
		return 0, fmt.Errorf("insert occurrence: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	occ.ID = id
	return id, nil
}

const occurrenceCols = "id, document_id, symbol, roles, syntax_kind, start_line, start_col, end_line, end_col"

func (s *Store) queryOccurrences(query string, args ...any) ([]*Occurrence, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var occs []*Occurrence
	for rows.Next() {
		occ := &Occurrence{}
		if err := rows.Scan(
			&occ.ID, &occ.DocumentID, &occ.Symbol, &occ.Roles, &occ.SyntaxKind,
			&occ.StartLine, &occ.StartCol, &occ.EndLine, &occ.EndCol,
		); err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		occs = append(occs, occ)
	}
	return occs, rows.Err()
}

func (s *Store) OccurrencesByDocument(documentID int64) ([]*Occurrence, error) {
	return s.queryOccurrences(
		"SELECT "+occurrenceCols+" FROM occurrences WHERE document_id = ? ORDER BY start_line, start_col",
		documentID,
	)
}

func (s *Store) OccurrencesForSymbol(symbol string) ([]*Occurrence, error) {
	return s.queryOccurrences(
		"SELECT "+occurrenceCols+" FROM occurrences WHERE symbol = ? ORDER BY document_id, start_line, start_col",
		symbol,
	)
}

// --- Aggregates ---

func (s *Store) DistinctLanguages() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT language FROM documents ORDER BY language")
	if err != nil {
		return nil, fmt.Errorf("distinct languages: %w", err)
	}
	defer rows.Close()
	var langs []string
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		langs = append(langs, lang)
	}
	return langs, rows.Err()
}

// LanguageStats returns per-language document, symbol and occurrence counts.
func (s *Store) LanguageStats() ([]*LanguageStat, error) {
	rows, err := s.db.Query(`
		SELECT d.language,
		       COUNT(DISTINCT d.id),
		       (SELECT COUNT(*) FROM symbols sy JOIN documents dd ON dd.id = sy.document_id WHERE dd.language = d.language),
		       (SELECT COUNT(*) FROM occurrences oc JOIN documents dd ON dd.id = oc.document_id WHERE dd.language = d.language)
		FROM documents d
		GROUP BY d.language
		ORDER BY d.language`)
	if err != nil {
		return nil, fmt.Errorf("language stats: %w", err)
	}
	defer rows.Close()
	var stats []*LanguageStat
	for rows.Next() {
		st := &LanguageStat{}
		if err := rows.Scan(&st.Language, &st.DocumentCount, &st.SymbolCount, &st.OccurrenceCount); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
