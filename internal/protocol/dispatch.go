package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/emberkv/ignite/internal/engine"
)

// Store is the subset of *engine.Engine the protocol layer dispatches onto.
// Declaring it here (rather than importing engine.Engine directly into
// every call site) keeps Dispatch testable against a fake.
type Store interface {
	Put(key, value string) error
	Read(key string) (string, bool, error)
	Delete(key string) error
	BatchPut(items []engine.KV) error
	RangeRead(start, end string) ([]engine.KV, error)
}

// Dispatch executes req against store and returns the single response line
// to write back (without its trailing newline), plus whether the connection
// should close after sending it (true only for SHUTDOWN).
func Dispatch(req *Request, store Store) (response string, shutdown bool) {
	switch req.Verb {
	case VerbPut:
		if err := store.Put(req.Key, req.Value); err != nil {
			return errorLine(err), false
		}
		return "OK", false

	case VerbRead:
		value, ok, err := store.Read(req.Key)
		if err != nil {
			return errorLine(err), false
		}
		if !ok {
			return "OK NULL", false
		}
		return "OK " + value, false

	case VerbDelete:
		if err := store.Delete(req.Key); err != nil {
			if err == engine.ErrKeyNotFound {
				return "ERROR Key not found", false
			}
			return errorLine(err), false
		}
		return "OK", false

	case VerbReadRange:
		pairs, err := store.RangeRead(req.Start, req.End)
		if err != nil {
			return errorLine(err), false
		}
		return "OK " + encodeRange(pairs), false

	case VerbBatchPut:
		items := make([]engine.KV, len(req.Items))
		for i, item := range req.Items {
			items[i] = engine.KV{Key: item.Key, Value: item.Value}
		}
		if err := store.BatchPut(items); err != nil {
			return errorLine(err), false
		}
		return "OK", false

	case VerbShutdown:
		return "OK", true

	default:
		return "ERROR unknown command", false
	}
}

// errorLine formats any engine/storage error as the generic ERROR <detail>
// response: I/O and codec failures surface to the client as plain errors.
func errorLine(err error) string {
	return fmt.Sprintf("ERROR %s", err.Error())
}

// encodeRange renders a RangeRead result as a JSON array of [key, value]
// pairs in the order they were returned (already key-ascending).
func encodeRange(pairs []engine.KV) string {
	out := make([][2]string, len(pairs))
	for i, p := range pairs {
		out[i] = [2]string{p.Key, p.Value}
	}
	buf, err := json.Marshal(out)
	if err != nil {
		// out is always a slice of [2]string, which always marshals cleanly.
		return "[]"
	}
	return string(buf)
}
