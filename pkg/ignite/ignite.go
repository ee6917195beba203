// Package ignite provides a high-performance key/value data store designed
// for fast read and write operations, inspired by Bitcask. It combines an
// in-memory hash table (the index) with an append-only log structure on
// disk to achieve high throughput, and is meant to be embedded directly
// into a Go program rather than accessed only over the wire protocol.
package ignite

import (
	"github.com/emberkv/ignite/internal/engine"
	"github.com/emberkv/ignite/pkg/logger"
	"github.com/emberkv/ignite/pkg/options"
)

// Instance is the primary entry point for embedding ignite directly into a
// Go program: it wraps the engine and exposes the same put/read/delete/
// batch-put/range-read operations the wire protocol dispatches onto,
// without requiring a running server.
type Instance struct {
	engine *engine.Engine
}

// NewInstance opens (or creates) an Instance backed by the data file and
// compaction threshold named in opts, logging under service.
func NewInstance(service string, opts ...options.OptionFunc) (*Instance, error) {
	o := options.Apply(opts...)
	log := logger.New(service, false)

	eng, err := engine.Open(&engine.Config{
		Path:                o.DataFile,
		CompactionThreshold: o.CompactionThreshold,
		Logger:              log,
	})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng}, nil
}

// Set stores value for key, overwriting any prior value.
func (i *Instance) Set(key, value string) error {
	return i.engine.Put(key, value)
}

// Get retrieves the value for key. The second return value is false if the
// key is absent or has been deleted.
func (i *Instance) Get(key string) (string, bool, error) {
	return i.engine.Read(key)
}

// Delete removes key, returning engine.ErrKeyNotFound if it was not present.
func (i *Instance) Delete(key string) error {
	return i.engine.Delete(key)
}

// BatchSet stores every item under a single lock acquisition.
func (i *Instance) BatchSet(items []engine.KV) error {
	return i.engine.BatchPut(items)
}

// Range returns every live key/value pair in [start, end], ascending.
func (i *Instance) Range(start, end string) ([]engine.KV, error) {
	return i.engine.RangeRead(start, end)
}

// Close releases the underlying log file's handle and advisory lock.
func (i *Instance) Close() error {
	return i.engine.Close()
}
