package storage

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
)

// Log represents the single append-only data file backing the engine. It
// owns the one open file handle used for both positioned reads and
// positioned appends, plus the bookkeeping compaction needs to swap that
// file out from under a running engine via rename-over.
//
// A Log never rotates or splits into segments — there is exactly one data
// file, so there is nothing here analogous to an active-segment ID or
// automatic rotation.
type Log struct {
	path   string             // Path to the data file.
	file   *os.File           // The single open handle; reopened after Replace.
	size   int64              // Current logical length of the data file.
	closed atomic.Bool        // Whether the log has been closed.
	log    *zap.SugaredLogger // Structured logger for operational visibility.
}

// Config encapsulates the parameters required to open a Log.
type Config struct {
	// Path is the data file's location. Its parent directory is created on
	// demand if missing.
	Path string
	// Logger provides structured logging for file-level operations.
	Logger *zap.SugaredLogger
}
