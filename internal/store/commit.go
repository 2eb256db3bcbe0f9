package store

import (
	"database/sql"
	"fmt"
)

// CommitBatch inserts all buffered data from a BatchedStore into SQLite
// within a single transaction. Rows already carry real document IDs, so
// the fake buffer IDs are simply discarded in favor of SQLite's.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	for i := range batch.Symbols {
		sym := &batch.Symbols[i]
		if err := insertSymbolTx(tx, sym); err != nil {
			return fmt.Errorf("commit batch: symbol %q: %w", sym.DisplayName, err)
		}
	}
	for i := range batch.Occurrences {
		occ := &batch.Occurrences[i]
		if err := insertOccurrenceTx(tx, occ); err != nil {
			return fmt.Errorf("commit batch: occurrence %q: %w", occ.Symbol, err)
		}
	}
	return tx.Commit()
}

func insertSymbolTx(tx *sql.Tx, sym *Symbol) error {
	res, err := tx.Exec(
		`INSERT INTO symbols (document_id, symbol, display_name, kind, enclosing_symbol, documentation)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sym.DocumentID, sym.Symbol, sym.DisplayName, sym.Kind, sym.EnclosingSymbol,
		marshalDocumentation(sym.Documentation),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sym.ID = id
	return nil
}

func insertOccurrenceTx(tx *sql.Tx, occ *Occurrence) error {
	res, err := tx.Exec(
		`INSERT INTO occurrences (document_id, symbol, roles, syntax_kind,
			start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		occ.DocumentID, occ.Symbol, occ.Roles, occ.SyntaxKind,
		occ.StartLine, occ.StartCol, occ.EndLine, occ.EndCol,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	occ.ID = id
	return nil
}
