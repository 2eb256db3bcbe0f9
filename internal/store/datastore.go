package store

// DataStore is the interface for index-write data access. Both Store
// (direct SQLite) and BatchedStore (in-memory buffering for the parallel
// pipeline) implement this interface.
type DataStore interface {
	InsertSymbol(sym *Symbol) (int64, error)
	InsertOccurrence(occ *Occurrence) (int64, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
