// Package codec encodes and decodes the on-disk record format shared by the
// log file and the compactor: a fixed 16-byte header (timestamp, key size,
// value size) followed by the raw key and value bytes.
package codec

import (
	"encoding/binary"
	"errors"
	"io"
)

// HeaderSize is the width in bytes of the fixed-size record header:
// an 8-byte timestamp, a 4-byte key size, and a 4-byte value size.
const HeaderSize = 16

// Tombstone is the sentinel value written in place of a deleted key's value.
// A record whose value is exactly this string marks its key as logically
// absent; it is not a distinct record type.
const Tombstone = "DELETED"

// ErrIncomplete is returned by Decode when fewer bytes are available at the
// requested offset than the record declares it needs — either because the
// offset is at the true end of the log, or because the trailing record was
// torn by a crash mid-append. Both cases are handled identically by callers:
// replay stops without treating this as an error.
var ErrIncomplete = errors.New("codec: incomplete record")

// Record is the decoded form of a single log entry.
type Record struct {
	Timestamp uint64
	Key       []byte
	Value     []byte
}

// IsTombstone reports whether this record's value is the delete sentinel.
func (r *Record) IsTombstone() bool {
	return string(r.Value) == Tombstone
}

// Len returns the total on-disk size of the record: header plus key plus value.
func (r *Record) Len() int64 {
	return HeaderSize + int64(len(r.Key)) + int64(len(r.Value))
}

// Encode serializes the record into a single contiguous buffer, suitable for
// one write call so the append is atomic from the caller's point of view.
func Encode(timestamp uint64, key, value []byte) []byte {
	buf := make([]byte, HeaderSize+len(key)+len(value))
	binary.BigEndian.PutUint64(buf[0:8], timestamp)
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(key)))
	binary.BigEndian.PutUint32(buf[12:16], uint32(len(value)))
	copy(buf[HeaderSize:], key)
	copy(buf[HeaderSize+len(key):], value)
	return buf
}

// reader is the minimal interface Decode needs: a positioned read that does
// not disturb any shared file offset, matching *os.File's ReadAt.
type reader interface {
	ReadAt(p []byte, off int64) (int, error)
}

// Decode reads a single record starting at off. It returns the record and the
// number of bytes consumed. If fewer than HeaderSize bytes are available at
// off, or the declared key/value lengths run past the readable bytes,
// ErrIncomplete is returned and the record is nil — this is the torn-tail
// case and is not an error condition during recovery (see internal/engine).
func Decode(r reader, off int64) (*Record, int64, error) {
	header := make([]byte, HeaderSize)
	n, err := r.ReadAt(header, off)
	if n < HeaderSize {
		if err != nil && err != io.EOF {
			return nil, 0, err
		}
		return nil, 0, ErrIncomplete
	}

	timestamp := binary.BigEndian.Uint64(header[0:8])
	keySize := binary.BigEndian.Uint32(header[8:12])
	valueSize := binary.BigEndian.Uint32(header[12:16])

	body := make([]byte, int64(keySize)+int64(valueSize))
	n, err = r.ReadAt(body, off+HeaderSize)
	if int64(n) < int64(len(body)) {
		if err != nil && err != io.EOF {
			return nil, 0, err
		}
		return nil, 0, ErrIncomplete
	}

	rec := &Record{
		Timestamp: timestamp,
		Key:       body[:keySize],
		Value:     body[keySize:],
	}
	return rec, rec.Len(), nil
}
