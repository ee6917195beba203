package index

// Entry records where a key's latest record lives in the log file. It is the
// Bitcask "keydir" entry: just enough metadata to jump directly to a record
// on disk without scanning for it.
//
// This Entry carries no segment ID: the engine addresses a single
// append-only log file, so there is nothing to disambiguate between files.
// The key itself is also not duplicated here, since it is already the map
// key that owns this Entry.
type Entry struct {
	// Offset is the byte position of the record's header in the log file.
	// A read seeks (or positioned-reads) directly here with no scanning.
	Offset int64

	// Length is the total on-disk size of the record (header + key + value),
	// letting a read fetch the whole entry with a single positioned read.
	Length int64

	// Timestamp is the record's write-time tag. It is informational only:
	// with one log file, offset order already determines recency.
	Timestamp uint64
}

// Index is the in-memory key -> Entry mapping that backs the engine.
//
// The index performs no synchronization of its own: the engine holds a
// single exclusive lock across every mutation (put, delete, batch,
// compaction) and across the snapshot phase of a range read, so an
// internal mutex here would only add contention without adding safety.
type Index struct {
	entries map[string]Entry
}
