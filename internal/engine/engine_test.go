package engine_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberkv/ignite/internal/engine"
)

func openEngine(t *testing.T, path string) *engine.Engine {
	t.Helper()
	e, err := engine.Open(&engine.Config{Path: path, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestReadYourWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	e := openEngine(t, path)

	require.NoError(t, e.Put("k", "v1"))
	require.NoError(t, e.Put("k", "v2"))

	v, ok, err := e.Read("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestDeleteHides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	e := openEngine(t, path)

	require.NoError(t, e.Put("k", "v"))
	require.NoError(t, e.Delete("k"))

	_, ok, err := e.Read("k")
	require.NoError(t, err)
	assert.False(t, ok)

	err = e.Delete("k")
	assert.ErrorIs(t, err, engine.ErrKeyNotFound)

	require.NoError(t, e.Put("k", "v3"))
	v, ok, err := e.Read("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v3", v)
}

func TestRecoveryEquivalence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	e := openEngine(t, path)

	require.NoError(t, e.Put("a", "1"))
	require.NoError(t, e.Put("b", "2"))
	require.NoError(t, e.Put("a", "3"))
	require.NoError(t, e.Delete("b"))
	require.NoError(t, e.Close())

	reopened, err := engine.Open(&engine.Config{Path: path, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Read("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	_, ok, err = reopened.Read("b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRangeReadReturnsInclusiveSortedLiveKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	e := openEngine(t, path)

	require.NoError(t, e.Put("c", "3"))
	require.NoError(t, e.Put("a", "1"))
	require.NoError(t, e.Put("b", "2"))
	require.NoError(t, e.Delete("c"))

	results, err := e.RangeRead("a", "b")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Key)
	assert.Equal(t, "1", results[0].Value)
	assert.Equal(t, "b", results[1].Key)
	assert.Equal(t, "2", results[1].Value)
}

func TestBatchPutAppliesAllItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	e := openEngine(t, path)

	require.NoError(t, e.BatchPut([]engine.KV{
		{Key: "x", Value: "1"},
		{Key: "y", Value: "2"},
	}))

	vx, ok, err := e.Read("x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", vx)

	vy, ok, err := e.Read("y")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", vy)
}

func TestCompactionShrinksFileAndRetainsLatestValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	// At this threshold the 100 overwrites never compact: their garbage
	// ratio peaks just below 0.99.
	e, err := engine.Open(&engine.Config{Path: path, CompactionThreshold: 0.999, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, e.Put("k", fmt.Sprintf("v%d", i)))
	}
	require.NoError(t, e.Close())

	// Reopened at 0.5, recovery counts 99 superseded records, so the next
	// put compacts before it appends.
	e, err = engine.Open(&engine.Config{Path: path, CompactionThreshold: 0.5, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	defer e.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	sizeBeforeExtra := info.Size()

	require.NoError(t, e.Put("k", "final"))

	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Less(t, info.Size(), sizeBeforeExtra)

	v, ok, err := e.Read("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "final", v)
}

func TestRecoveryIgnoresTrailingGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	e := openEngine(t, path)

	require.NoError(t, e.Put("a", "1"))
	require.NoError(t, e.Put("b", "2"))
	require.NoError(t, e.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, err := engine.Open(&engine.Config{Path: path, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	defer reopened.Close()

	va, ok, err := reopened.Read("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", va)

	vb, ok, err := reopened.Read("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", vb)
}
