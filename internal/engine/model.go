package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/emberkv/ignite/internal/index"
	"github.com/emberkv/ignite/internal/storage"
)

// defaultCompactionThreshold is the deleted_size/data_size ratio that
// triggers a synchronous rewrite before the next append.
const defaultCompactionThreshold = 0.5

// Engine is the single orchestration point for the store: it owns the log
// file handle, the in-memory index, and the live/garbage byte counters, and
// is the only place a mutation or a compaction pass may happen. Every
// exported method that touches the log, the index, or either counter
// acquires mu for its entire duration.
type Engine struct {
	mu sync.Mutex

	log *storage.Log
	idx *index.Index

	dataSize    int64
	deletedSize int64

	compactionThreshold float64

	logger *zap.SugaredLogger
}

// Config carries the parameters required to open an Engine.
type Config struct {
	// Path is the data file's location (default "store.dat" is the caller's
	// responsibility to supply; the engine itself has no default).
	Path string
	// CompactionThreshold is the deleted_size/data_size ratio that triggers
	// a rewrite before the next append. Zero selects the default of 0.5.
	CompactionThreshold float64
	// Logger provides structured logging for engine-level operations.
	Logger *zap.SugaredLogger
}

// KV is a single key/value pair, used by BatchPut and returned by RangeRead.
type KV struct {
	Key   string
	Value string
}
