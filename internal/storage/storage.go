// Package storage provides the append-only data file the engine reads and
// writes through. A Log owns exactly one os.File: writes land via WriteAt at
// the tracked logical end (so the engine's exclusive lock, not O_APPEND, is
// what makes each append land at the true end of file); reads use ReadAt so
// they never disturb a shared file offset, which is what lets range reads
// and ordinary reads safely interleave without their own locking.
//
// An advisory flock on the data file's descriptor guards against two
// ignited processes opening the same file at once — a failure mode the
// engine's in-process mutex cannot prevent on its own.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/emberkv/ignite/pkg/errors"
	"github.com/emberkv/ignite/pkg/filesys"
)

var (
	// ErrLogClosed is returned when attempting to use a Log after Close.
	ErrLogClosed = fmt.Errorf("operation failed: cannot access closed log")
	// ErrLocked is returned when the data file is already locked by another process.
	ErrLocked = fmt.Errorf("operation failed: data file is locked by another process")
)

// tmpSuffix is the well-known suffix for a compaction's rewrite target: a
// sibling file with this suffix exists transiently during a rewrite, and
// any stale one left behind by a crash is removed on startup.
const tmpSuffix = ".tmp"

// Open opens (creating if necessary) the data file at config.Path, takes a
// non-blocking advisory lock on it, and removes any stale .tmp file left
// behind by a compaction that crashed before its rename-over step.
func Open(config *Config) (*Log, error) {
	if config == nil || config.Path == "" || config.Logger == nil {
		return nil, errors.NewConfigurationValidationError("config", "path and logger are required")
	}

	dir := filepath.Dir(config.Path)
	if dir != "." {
		if err := filesys.CreateDir(dir, 0o755, true); err != nil {
			return nil, errors.NewStorageError(
				err, errors.ErrorCodeIO, "failed to create data directory",
			).WithPath(dir)
		}
	}

	if err := cleanStaleTmp(config.Path); err != nil {
		config.Logger.Warnw("failed to remove stale compaction temp file", "error", err)
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, config.Path, filepath.Base(config.Path))
	}

	if err := flockExclusive(file); err != nil {
		file.Close()
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "data file is already in use").
			WithPath(config.Path)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat data file").
			WithPath(config.Path)
	}

	config.Logger.Infow("opened data file", "path", config.Path, "size", stat.Size())

	return &Log{path: config.Path, file: file, size: stat.Size(), log: config.Logger}, nil
}

// Path returns the data file's location.
func (l *Log) Path() string { return l.path }

// TmpPath returns the well-known sibling path compaction writes its rewrite
// into before the atomic rename-over.
func (l *Log) TmpPath() string { return l.path + tmpSuffix }

// Size returns the log's current logical length.
func (l *Log) Size() int64 { return l.size }

// ReadAt reads len(p) bytes starting at off without disturbing any shared
// file offset, so it may safely run concurrently with other reads and with
// an in-progress append under the same file handle.
func (l *Log) ReadAt(p []byte, off int64) (int, error) {
	if l.closed.Load() {
		return 0, ErrLogClosed
	}
	return l.file.ReadAt(p, off)
}

// Append writes data to the absolute end of the log file in a single write
// call — so the record lands whole or not at all from the perspective of
// anything reading the file concurrently — and returns the offset it was
// written at. Callers must hold the engine's lock; Append itself does not
// serialize concurrent callers.
func (l *Log) Append(data []byte) (int64, error) {
	if l.closed.Load() {
		return 0, ErrLogClosed
	}

	offset := l.size
	n, err := l.file.WriteAt(data, offset)
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append record").
			WithPath(l.path).WithOffset(int(offset))
	}
	if n != len(data) {
		return 0, errors.NewStorageError(
			io.ErrShortWrite, errors.ErrorCodeIO, "short write appending record",
		).WithPath(l.path).WithOffset(int(offset))
	}

	l.size += int64(n)
	return offset, nil
}

// Truncate discards any bytes in the file beyond size. It is used once,
// after recovery, to drop a torn tail left by a crash mid-append.
func (l *Log) Truncate(size int64) error {
	if err := l.file.Truncate(size); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to truncate torn tail").
			WithPath(l.path)
	}
	l.size = size
	return nil
}

// Replace closes the current file handle, atomically renames tmpPath over
// the log's path, and reopens the (now-replaced) path fresh. A rename does
// not affect already-open descriptors on POSIX systems, so the reopen is
// required: without it, the engine would keep appending to the unlinked old
// inode instead of the compacted file now sitting at l.path.
func (l *Log) Replace(tmpPath string) (int64, error) {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.log.Warnw("failed to release advisory lock before compaction swap", "error", err)
	}
	if err := l.file.Close(); err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to close log before replace").
			WithPath(l.path)
	}

	if err := os.Rename(tmpPath, l.path); err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to rename compacted file into place").
			WithPath(l.path).WithFileName(filepath.Base(tmpPath))
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return 0, errors.ClassifyFileOpenError(err, l.path, filepath.Base(l.path))
	}
	if err := flockExclusive(file); err != nil {
		file.Close()
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to relock data file after compaction").
			WithPath(l.path)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat compacted file").
			WithPath(l.path)
	}

	l.file = file
	l.size = stat.Size()
	l.log.Infow("compaction swap complete", "path", l.path, "newSize", l.size)
	return l.size, nil
}

// Close releases the advisory lock and closes the underlying file handle.
func (l *Log) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return ErrLogClosed
	}
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.log.Warnw("failed to release advisory lock on close", "error", err)
	}
	return l.file.Close()
}

// flockExclusive takes a non-blocking exclusive advisory lock on file's
// descriptor, translating the "already locked" errno into ErrLocked.
func flockExclusive(file *os.File) error {
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if err == unix.EWOULDBLOCK {
			return ErrLocked
		}
		return err
	}
	return nil
}

// cleanStaleTmp removes a leftover compaction temp file from a prior crash
// that occurred before the rename-over step.
func cleanStaleTmp(path string) error {
	tmp := path + tmpSuffix
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
