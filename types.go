package treeline

import "github.com/jward/treeline/internal/store"

// Public type aliases for internal store types used in the QueryBuilder API.
// These are Go type aliases (=) — identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Store = store.Store
type Document = store.Document
type Symbol = store.Symbol
type Occurrence = store.Occurrence
type LanguageStat = store.LanguageStat
