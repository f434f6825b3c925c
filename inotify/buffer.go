//go:build linux

package inotify

// eventBuffer holds bytes returned by the last kernel read. The records
// still to be delivered are data[start:end], with
// 0 <= start <= end <= len(data).
type eventBuffer struct {
	data  []byte
	start int
	end   int
}

func newEventBuffer(size int) *eventBuffer {
	return &eventBuffer{data: make([]byte, size)}
}

func (b *eventBuffer) pending() bool {
	return b.start < b.end
}

// reset marks data[:n] as freshly read.
func (b *eventBuffer) reset(n int) {
	b.start, b.end = 0, n
}

// discard drops everything still buffered.
func (b *eventBuffer) discard() {
	b.start = b.end
}

// decode parses the record at the cursor. With consume set the cursor moves
// past it, otherwise the next decode returns the same record.
func (b *eventBuffer) decode(consume bool) (Event, error) {
	ev, n, err := decodeEvent(b.data[b.start:b.end])
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.Offset = b.start
		}
		return Event{}, err
	}
	if consume {
		b.start += n
	}
	return ev, nil
}
