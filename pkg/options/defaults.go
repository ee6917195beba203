package options

const (
	// DefaultListenHost is the interface ignited binds to when none is configured.
	DefaultListenHost = "127.0.0.1"

	// DefaultListenPort is the TCP port ignited listens on when none is configured.
	DefaultListenPort = 11211

	// DefaultDataFile is the data file path used when none is configured.
	DefaultDataFile = "store.dat"

	// DefaultCompactionThreshold is the deleted_size/data_size ratio that
	// triggers a compaction pass.
	DefaultCompactionThreshold = 0.5
)

// defaultOptions holds the baseline configuration for an ignited instance.
var defaultOptions = Options{
	ListenHost:          DefaultListenHost,
	ListenPort:          DefaultListenPort,
	DataFile:            DefaultDataFile,
	CompactionThreshold: DefaultCompactionThreshold,
}

// NewDefaultOptions returns a copy of the baseline configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
