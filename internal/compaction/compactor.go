// Package compaction implements the rewrite that reclaims space orphaned by
// overwrites and deletes: it copies every record the index still points to
// into a fresh file, then hands that file to the log for an atomic
// rename-over. Tombstones are carried forward rather than dropped: a delete
// is itself a record the log retains until a rewrite carries it into the
// new file too, so a concurrent reader racing the swap never observes a key
// vanish without ever having seen its deletion.
package compaction

import (
	"go.uber.org/zap"

	"github.com/emberkv/ignite/internal/codec"
	"github.com/emberkv/ignite/internal/index"
	"github.com/emberkv/ignite/pkg/errors"
)

// source is the minimal read surface the compactor needs from the log being
// compacted.
type source interface {
	ReadAt(p []byte, off int64) (int, error)
}

// sink is the minimal write surface the compactor needs to build the
// rewritten file.
type sink interface {
	Append(data []byte) (int64, error)
}

// Result reports the outcome of a single rewrite pass.
type Result struct {
	// LiveRecords is how many keys were carried forward.
	LiveRecords int
	// Bytes is the total size of the rewritten file.
	Bytes int64
}

// Run reads every entry currently in idx out of src (the log being
// compacted) and appends it, verbatim, to dst (a freshly opened file at the
// log's .tmp path). It rewrites idx in place so each key's offset points
// into dst instead of src — callers must hold the engine's lock for the
// entire call, since a concurrent Put racing the rewrite would otherwise be
// silently lost.
//
// Run does not decide whether compaction should happen (the
// deleted_size/data_size threshold lives in the engine, which is the only
// place that tracks those counters) and does not perform the rename-over
// (that is storage.Log.Replace, called by the engine after Run returns
// successfully).
func Run(src source, dst sink, idx *index.Index, log *zap.SugaredLogger) (Result, error) {
	keys := idx.Keys()
	result := Result{}

	for _, key := range keys {
		entry, ok := idx.Get(key)
		if !ok {
			// Deleted concurrently by a path that bypasses the lock contract;
			// treat as already gone rather than fail the whole rewrite.
			continue
		}

		rec, _, err := codec.Decode(src, entry.Offset)
		if err != nil {
			return result, errors.NewStorageError(
				err, errors.ErrorCodeIO, "failed to read record during compaction",
			).WithOffset(int(entry.Offset))
		}

		buf := codec.Encode(rec.Timestamp, rec.Key, rec.Value)
		newOffset, err := dst.Append(buf)
		if err != nil {
			return result, errors.NewStorageError(
				err, errors.ErrorCodeIO, "failed to write record during compaction",
			).WithOffset(int(newOffset))
		}

		idx.Put(key, index.Entry{
			Offset:    newOffset,
			Length:    int64(len(buf)),
			Timestamp: rec.Timestamp,
		})

		result.LiveRecords++
		result.Bytes += int64(len(buf))
	}

	log.Infow("compaction rewrite complete", "liveRecords", result.LiveRecords, "bytes", result.Bytes)
	return result, nil
}
