package options_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberkv/ignite/pkg/options"
)

func TestApplyLayersOverDefaults(t *testing.T) {
	o := options.Apply(
		options.WithListenPort(9000),
		options.WithDataFile("custom.dat"),
	)

	assert.Equal(t, 9000, o.ListenPort)
	assert.Equal(t, "custom.dat", o.DataFile)
	assert.Equal(t, options.DefaultListenHost, o.ListenHost)
	assert.Equal(t, options.DefaultCompactionThreshold, o.CompactionThreshold)
}

func TestWithListenPortIgnoresNonPositive(t *testing.T) {
	o := options.Apply(options.WithListenPort(-1))
	assert.Equal(t, options.DefaultListenPort, o.ListenPort)
}

func TestLoadFileParsesJWCC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ignite.jsonc")
	contents := `{
		// listen on every interface in containers
		"listenHost": "0.0.0.0",
		"listenPort": 9999,
		"compactionThreshold": 0.7, // trailing comma below is allowed
	}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	o, err := options.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", o.ListenHost)
	assert.Equal(t, 9999, o.ListenPort)
	assert.Equal(t, 0.7, o.CompactionThreshold)
	assert.Equal(t, options.DefaultDataFile, o.DataFile)
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	o, err := options.LoadFile(filepath.Join(t.TempDir(), "missing.jsonc"))
	require.NoError(t, err)
	assert.Equal(t, options.NewDefaultOptions(), o)
}
