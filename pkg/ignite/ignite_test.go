package ignite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberkv/ignite/pkg/ignite"
	"github.com/emberkv/ignite/pkg/options"
)

func TestInstanceSetGetDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	inst, err := ignite.NewInstance("ignite-test", options.WithDataFile(path))
	require.NoError(t, err)
	defer inst.Close()

	require.NoError(t, inst.Set("k", "v"))

	v, ok, err := inst.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, inst.Delete("k"))
	_, ok, err = inst.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}
