package compaction_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberkv/ignite/internal/codec"
	"github.com/emberkv/ignite/internal/compaction"
	"github.com/emberkv/ignite/internal/index"
	"github.com/emberkv/ignite/internal/storage"
)

func openLog(t *testing.T, name string) *storage.Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	l, err := storage.Open(&storage.Config{Path: path, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRunRewritesLiveRecordsAndUpdatesIndex(t *testing.T) {
	src := openLog(t, "src.dat")
	dst := openLog(t, "dst.dat")
	idx := index.New()

	staleBuf := codec.Encode(1, []byte("k1"), []byte("stale-value"))
	staleOff, err := src.Append(staleBuf)
	require.NoError(t, err)
	_ = staleOff

	freshBuf := codec.Encode(2, []byte("k1"), []byte("fresh-value"))
	freshOff, err := src.Append(freshBuf)
	require.NoError(t, err)
	idx.Put("k1", index.Entry{Offset: freshOff, Length: int64(len(freshBuf)), Timestamp: 2})

	tombBuf := codec.Encode(3, []byte("k2"), []byte(codec.Tombstone))
	tombOff, err := src.Append(tombBuf)
	require.NoError(t, err)
	idx.Put("k2", index.Entry{Offset: tombOff, Length: int64(len(tombBuf)), Timestamp: 3})

	result, err := compaction.Run(src, dst, idx, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, 2, result.LiveRecords)
	assert.Equal(t, int64(len(freshBuf)+len(tombBuf)), result.Bytes)

	e1, ok := idx.Get("k1")
	require.True(t, ok)
	rec, _, err := codec.Decode(dst, e1.Offset)
	require.NoError(t, err)
	assert.Equal(t, "fresh-value", string(rec.Value))
	assert.False(t, rec.IsTombstone())

	e2, ok := idx.Get("k2")
	require.True(t, ok)
	rec2, _, err := codec.Decode(dst, e2.Offset)
	require.NoError(t, err)
	assert.True(t, rec2.IsTombstone())
}

func TestRunOnEmptyIndexProducesNothing(t *testing.T) {
	src := openLog(t, "src.dat")
	dst := openLog(t, "dst.dat")
	idx := index.New()

	result, err := compaction.Run(src, dst, idx, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, 0, result.LiveRecords)
	assert.Equal(t, int64(0), result.Bytes)
}
