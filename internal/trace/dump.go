package trace

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Current snapshot schema version - increment when the payload changes.
const dumpSchemaVersion uint16 = 1

// dumpPayload is the on-disk form of a ring snapshot.
type dumpPayload struct {
	Schema uint16
	Events []Event
}

// Dump serializes the ring's current contents to w.
func (t *RingTracer) Dump(w io.Writer) error {
	payload := dumpPayload{
		Schema: dumpSchemaVersion,
		Events: t.Snapshot(),
	}
	return msgpack.NewEncoder(w).Encode(&payload)
}

// Load reads back a snapshot written by Dump.
func Load(r io.Reader) ([]Event, error) {
	var payload dumpPayload
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Events, nil
}
