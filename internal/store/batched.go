package store

import "sync"

// BatchedStore buffers index writes in memory using fake (negative) IDs.
// It implements DataStore so the indexing pipeline can write to it without
// knowing whether it's hitting SQLite or an in-memory buffer.
//
// Symbols and occurrences reference their document by a real document ID
// (assigned before extraction starts) and reference other symbols only by
// symbol string, so committing a batch needs no ID rewriting.
type BatchedStore struct {
	mu sync.Mutex

	Symbols     []Symbol
	Occurrences []Occurrence

	nextFakeID int64 // starts at -1, decrements
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates an empty BatchedStore.
func NewBatchedStore() *BatchedStore {
	return &BatchedStore{nextFakeID: -1}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

func (b *BatchedStore) InsertSymbol(sym *Symbol) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	sym.ID = fakeID
	b.Symbols = append(b.Symbols, *sym)
	return fakeID, nil
}

func (b *BatchedStore) InsertOccurrence(occ *Occurrence) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	occ.ID = fakeID
	b.Occurrences = append(b.Occurrences, *occ)
	return fakeID, nil
}
