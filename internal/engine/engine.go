// Package engine orchestrates the log file, the index, and compaction into
// the put/read/delete/batch-put/range-read operations the protocol layer
// calls. It is the one place that holds the lock serializing every
// mutation and every compaction pass.
package engine

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/emberkv/ignite/internal/codec"
	"github.com/emberkv/ignite/internal/compaction"
	"github.com/emberkv/ignite/internal/index"
	"github.com/emberkv/ignite/internal/storage"
	"github.com/emberkv/ignite/pkg/errors"
)

// ErrKeyNotFound is returned by Delete for a key absent from the index or
// whose latest record is already a tombstone. Read
// does not return it: an absent or tombstoned key is reported as a boolean,
// matching the convention that reading a missing key is OK NULL, not ERROR.
var ErrKeyNotFound = errors.NewValidationError(nil, errors.ErrorCodeInvalidInput, "key not found").
	WithField("key").WithRule("must exist")

// Open opens (or creates) the data file at config.Path, replays it to
// rebuild the index and counters, and returns a ready Engine.
func Open(config *Config) (*Engine, error) {
	threshold := config.CompactionThreshold
	if threshold <= 0 {
		threshold = defaultCompactionThreshold
	}

	log, err := storage.Open(&storage.Config{Path: config.Path, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		log:                 log,
		idx:                 index.New(),
		compactionThreshold: threshold,
		logger:              config.Logger,
	}

	if err := e.recover(); err != nil {
		log.Close()
		return nil, err
	}

	return e, nil
}

// recover replays the log from offset 0, rebuilding the index and both
// counters. A torn tail — an incomplete header or a body shorter than the
// declared key/value lengths — ends replay without error and is truncated
// away, since a torn tail carries no recoverable information.
func (e *Engine) recover() error {
	var offset int64

	for {
		rec, n, err := codec.Decode(e.log, offset)
		if err == codec.ErrIncomplete {
			break
		}
		if err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeRecoveryFailed, "failed to replay log during recovery").
				WithPath(e.log.Path()).WithOffset(int(offset))
		}

		key := string(rec.Key)
		if old, existed := e.idx.Get(key); existed {
			e.deletedSize += old.Length
		}
		e.idx.Put(key, index.Entry{Offset: offset, Length: n, Timestamp: rec.Timestamp})
		e.dataSize += n
		offset += n
	}

	if offset < e.log.Size() {
		e.logger.Infow("truncating torn tail found during recovery",
			"path", e.log.Path(), "validBytes", offset, "fileSize", e.log.Size())
		if err := e.log.Truncate(offset); err != nil {
			return err
		}
	}

	e.logger.Infow("recovery complete", "keys", e.idx.Len(), "dataSize", e.dataSize, "deletedSize", e.deletedSize)
	return nil
}

// Close releases the log file's handle and advisory lock.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Close()
}

// Put installs value for key, appending a record to the log.
func (e *Engine) Put(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.maybeCompact(); err != nil {
		return err
	}
	return e.appendLocked(key, value)
}

// appendLocked performs the common append-and-index-update sequence shared
// by Put, Delete (which appends a tombstone), and each item of BatchPut.
// Callers must hold mu.
func (e *Engine) appendLocked(key, value string) error {
	ts := uint64(time.Now().Unix())
	buf := codec.Encode(ts, []byte(key), []byte(value))

	offset, err := e.log.Append(buf)
	if err != nil {
		return err
	}

	n := int64(len(buf))
	if old, existed := e.idx.Get(key); existed {
		e.deletedSize += old.Length
	}
	e.idx.Put(key, index.Entry{Offset: offset, Length: n, Timestamp: ts})
	e.dataSize += n
	return nil
}

// Read returns the value for key and true if it is present and not
// tombstoned. It returns ("", false, nil) for an absent or deleted key —
// an absent key and a deleted key look identical from the caller's point of view.
func (e *Engine) Read(key string) (string, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.idx.Get(key)
	if !ok {
		return "", false, nil
	}

	rec, _, err := codec.Decode(e.log, entry.Offset)
	if err != nil {
		return "", false, errors.NewIndexCorruptionError("Read", e.idx.Len(), err).
			WithKey(key).WithDetail("offset", entry.Offset)
	}

	if rec.IsTombstone() {
		return "", false, nil
	}
	return string(rec.Value), true, nil
}

// Delete appends a tombstone for key. It returns ErrKeyNotFound if key is
// not in the index or its latest record is already a tombstone: the index
// keeps a deleted key, pointing at its tombstone, so a key that was deleted
// and never re-put returns ErrKeyNotFound on a second Delete.
func (e *Engine) Delete(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.idx.Get(key)
	if !ok {
		return ErrKeyNotFound
	}
	rec, _, err := codec.Decode(e.log, entry.Offset)
	if err != nil {
		return errors.NewIndexCorruptionError("Delete", e.idx.Len(), err).
			WithKey(key).WithDetail("offset", entry.Offset)
	}
	if rec.IsTombstone() {
		return ErrKeyNotFound
	}

	if err := e.maybeCompact(); err != nil {
		return err
	}
	if err := e.appendLocked(key, codec.Tombstone); err != nil {
		return err
	}
	return e.maybeCompact()
}

// BatchPut appends every item under a single lock acquisition, considering
// compaction once up front. It is not all-or-nothing on crash:
// items already appended to the OS buffer survive individually.
func (e *Engine) BatchPut(items []KV) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.maybeCompact(); err != nil {
		return err
	}
	for _, item := range items {
		if err := e.appendLocked(item.Key, item.Value); err != nil {
			return err
		}
	}
	return nil
}

// RangeRead returns every live (key, value) pair with start <= key <= end,
// in ascending key order. The lock is held across both the index snapshot
// and the per-record file reads, so a compaction triggered by a concurrent
// write cannot move or replace records between the two.
func (e *Engine) RangeRead(start, end string) ([]KV, error) {
	type snapshotEntry struct {
		key   string
		entry index.Entry
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var snapshot []snapshotEntry
	for _, key := range e.idx.Keys() {
		if key < start || key > end {
			continue
		}
		entry, ok := e.idx.Get(key)
		if !ok {
			continue
		}
		snapshot = append(snapshot, snapshotEntry{key: key, entry: entry})
	}

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].key < snapshot[j].key })

	results := make([]KV, 0, len(snapshot))
	for _, s := range snapshot {
		rec, _, err := codec.Decode(e.log, s.entry.Offset)
		if err != nil {
			return nil, errors.NewIndexCorruptionError("RangeRead", e.idx.Len(), err).
				WithKey(s.key).WithDetail("offset", s.entry.Offset)
		}
		if rec.IsTombstone() {
			continue
		}
		results = append(results, KV{Key: s.key, Value: string(rec.Value)})
	}
	return results, nil
}

// maybeCompact runs a synchronous rewrite if deleted_size/data_size exceeds
// the configured threshold. Callers must hold mu.
func (e *Engine) maybeCompact() error {
	if e.dataSize == 0 || float64(e.deletedSize)/float64(e.dataSize) <= e.compactionThreshold {
		return nil
	}

	tmpPath := e.log.TmpPath()
	tmpLog, err := storage.Open(&storage.Config{Path: tmpPath, Logger: e.logger})
	if err != nil {
		return err
	}

	result, err := compaction.Run(e.log, tmpLog, e.idx, e.logger)
	tmpLog.Close()
	if err != nil {
		return err
	}

	newSize, err := e.log.Replace(tmpPath)
	if err != nil {
		return err
	}

	e.dataSize = newSize
	e.deletedSize = 0
	e.logger.Infow("compaction complete", "liveRecords", result.LiveRecords, "newSize", newSize)
	return nil
}
