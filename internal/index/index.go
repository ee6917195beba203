// Package index provides the in-memory hash table implementation for the
// ignite key-value store. It embodies the core Bitcask architectural
// principle: keep every key in memory with minimal per-key metadata, while
// values live on disk and are fetched only on demand.
package index

// New returns an empty Index ready for use, pre-sized for a modest working
// set; Go's map growth handles anything larger without further tuning here.
func New() *Index {
	return &Index{entries: make(map[string]Entry, 1024)}
}

// Get returns the entry for key, if present.
func (idx *Index) Get(key string) (Entry, bool) {
	e, ok := idx.entries[key]
	return e, ok
}

// Has reports whether key is present in the index.
func (idx *Index) Has(key string) bool {
	_, ok := idx.entries[key]
	return ok
}

// Put inserts or replaces the entry for key, returning the entry it
// displaced (if any) so the caller can account for the bytes it orphans
// into deleted_size.
func (idx *Index) Put(key string, e Entry) (old Entry, existed bool) {
	old, existed = idx.entries[key]
	idx.entries[key] = e
	return old, existed
}

// Delete removes key from the index entirely.
//
// The engine's delete operation does NOT call this: a tombstone keeps the
// key in the index, pointing at the tombstone record, rather than removing
// it outright. Delete exists for a compactor that chooses to drop
// tombstoned keys entirely during a rewrite.
func (idx *Index) Delete(key string) {
	delete(idx.entries, key)
}

// Len returns the number of keys currently tracked.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Keys returns all tracked keys in no particular order; callers needing
// order (range reads) sort on demand.
func (idx *Index) Keys() []string {
	keys := make([]string, 0, len(idx.entries))
	for k := range idx.entries {
		keys = append(keys, k)
	}
	return keys
}

// Clear empties the index, releasing references to its backing map.
func (idx *Index) Clear() {
	clear(idx.entries)
}
