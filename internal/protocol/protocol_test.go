package protocol_test

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberkv/ignite/internal/engine"
	"github.com/emberkv/ignite/internal/protocol"
)

// fakeStore is an in-memory stand-in for *engine.Engine, letting protocol
// tests exercise parsing and response formatting without a real log file.
type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore { return &fakeStore{data: map[string]string{}} }

func (f *fakeStore) Put(key, value string) error {
	f.data[key] = value
	return nil
}

func (f *fakeStore) Read(key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStore) Delete(key string) error {
	if _, ok := f.data[key]; !ok {
		return engine.ErrKeyNotFound
	}
	delete(f.data, key)
	return nil
}

func (f *fakeStore) BatchPut(items []engine.KV) error {
	for _, item := range items {
		f.data[item.Key] = item.Value
	}
	return nil
}

func (f *fakeStore) RangeRead(start, end string) ([]engine.KV, error) {
	var out []engine.KV
	for k, v := range f.data {
		if k >= start && k <= end {
			out = append(out, engine.KV{Key: k, Value: v})
		}
	}
	return out, nil
}

func parse(t *testing.T, line string) *protocol.Request {
	t.Helper()
	req, err := protocol.Read(bufio.NewReader(strings.NewReader(line + "\n")))
	require.NoError(t, err)
	return req
}

func TestPutThenRead(t *testing.T) {
	store := newFakeStore()

	resp, shutdown := protocol.Dispatch(parse(t, "PUT key1 hello"), store)
	assert.Equal(t, "OK", resp)
	assert.False(t, shutdown)

	resp, _ = protocol.Dispatch(parse(t, "READ key1"), store)
	assert.Equal(t, "OK hello", resp)
}

func TestPutValueMayContainSpaces(t *testing.T) {
	store := newFakeStore()
	protocol.Dispatch(parse(t, "PUT key hello world"), store)

	resp, _ := protocol.Dispatch(parse(t, "READ key"), store)
	assert.Equal(t, "OK hello world", resp)
}

func TestReadMissingKeyReturnsNull(t *testing.T) {
	store := newFakeStore()
	resp, _ := protocol.Dispatch(parse(t, "READ missing"), store)
	assert.Equal(t, "OK NULL", resp)
}

func TestDeleteMissingKeyReturnsError(t *testing.T) {
	store := newFakeStore()
	resp, _ := protocol.Dispatch(parse(t, "DELETE missing"), store)
	assert.Equal(t, "ERROR Key not found", resp)
}

func TestBatchPutFramingConsumesExactlyNLines(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("BATCHPUT 2\nk1 v1\nk2 v2\nREAD k1\n"))
	store := newFakeStore()

	req, err := protocol.Read(reader)
	require.NoError(t, err)
	resp, _ := protocol.Dispatch(req, store)
	assert.Equal(t, "OK", resp)

	next, err := protocol.Read(reader)
	require.NoError(t, err)
	resp, _ = protocol.Dispatch(next, store)
	assert.Equal(t, "OK v1", resp)
}

func TestReadRangeJSONPairsWithinRange(t *testing.T) {
	store := newFakeStore()
	protocol.Dispatch(parse(t, "PUT a 1"), store)
	protocol.Dispatch(parse(t, "PUT b 2"), store)
	protocol.Dispatch(parse(t, "PUT c 3"), store)

	resp, _ := protocol.Dispatch(parse(t, "READRANGE a b"), store)
	assert.Contains(t, resp, `["a","1"]`)
	assert.Contains(t, resp, `["b","2"]`)
	assert.NotContains(t, resp, `"c"`)
}

func TestShutdownSignalsClose(t *testing.T) {
	store := newFakeStore()
	resp, shutdown := protocol.Dispatch(parse(t, "SHUTDOWN"), store)
	assert.Equal(t, "OK", resp)
	assert.True(t, shutdown)
}

func TestUnknownVerbIsBadRequest(t *testing.T) {
	_, err := protocol.Read(bufio.NewReader(strings.NewReader("FROBNICATE x\n")))
	require.Error(t, err)
	var badReq *protocol.ErrBadRequest
	assert.ErrorAs(t, err, &badReq)
}
