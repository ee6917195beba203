// Package options provides data structures and functions for configuring
// an ignited instance: which address to listen on, where the data file
// lives, and at what deleted/data ratio to compact.
package options

import "strings"

// Options defines the configuration parameters for an ignited instance.
type Options struct {
	// ListenHost is the interface the TCP server binds to.
	//
	// Default: "127.0.0.1"
	ListenHost string `json:"listenHost"`

	// ListenPort is the TCP port the server listens on.
	//
	// Default: 11211
	ListenPort int `json:"listenPort"`

	// DataFile is the path to the single append-only log file.
	//
	// Default: "store.dat"
	DataFile string `json:"dataFile"`

	// CompactionThreshold is the deleted_size/data_size ratio that triggers
	// a compaction pass before the next append.
	//
	// Default: 0.5
	CompactionThreshold float64 `json:"compactionThreshold"`
}

// OptionFunc modifies an Options value. Overrides are applied defaults <
// config file < flags < functional options.
type OptionFunc func(*Options)

// WithDefaultOptions resets o to the package defaults.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithListenHost overrides the bind interface.
func WithListenHost(host string) OptionFunc {
	return func(o *Options) {
		host = strings.TrimSpace(host)
		if host != "" {
			o.ListenHost = host
		}
	}
}

// WithListenPort overrides the bind port.
func WithListenPort(port int) OptionFunc {
	return func(o *Options) {
		if port > 0 {
			o.ListenPort = port
		}
	}
}

// WithDataFile overrides the data file path.
func WithDataFile(path string) OptionFunc {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.DataFile = path
		}
	}
}

// WithCompactionThreshold overrides the compaction trigger ratio.
func WithCompactionThreshold(threshold float64) OptionFunc {
	return func(o *Options) {
		if threshold > 0 {
			o.CompactionThreshold = threshold
		}
	}
}

// Apply builds an Options value by layering fns over the package defaults.
func Apply(fns ...OptionFunc) Options {
	o := NewDefaultOptions()
	for _, fn := range fns {
		fn(&o)
	}
	return o
}
