//go:build linux

package inotify

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// Watch identifies a watch on the Channel that returned it. It carries no
// resources; dropping it does not remove the watch.
type Watch int32

// Event represents a notification
type Event struct {
	Watch  Watch     // Watch the event was reported for
	Mask   EventMask // Mask of events
	Cookie uint32    // Unique cookie associating related events (for rename(2))
	Name   string    // File name inside a watched directory (optional)
}

// HasEvent reports whether all flags in m are set on the event.
func (e Event) HasEvent(m EventMask) bool {
	return e.Mask&m == m
}

func (e Event) String() string {
	if e.Name == "" {
		return fmt.Sprintf("wd=%d %s", e.Watch, e.Mask)
	}
	return fmt.Sprintf("wd=%d %q %s", e.Watch, e.Name, e.Mask)
}

// headerSize is the size of struct inotify_event without its name.
const headerSize = unix.SizeofInotifyEvent

// maxNameLen is NAME_MAX; the kernel pads names to at most this plus one.
const maxNameLen = 255

// decodeEvent parses the record at the start of p and returns it with the
// number of bytes it occupies. Layout, in host byte order:
//
//	int32 wd | uint32 mask | uint32 cookie | uint32 len | name[len]
//
// The name is NUL padded; it ends at the first NUL byte.
func decodeEvent(p []byte) (Event, int, error) {
	if len(p) < headerSize {
		return Event{}, 0, &DecodeError{Need: headerSize, Have: len(p)}
	}
	ev := Event{
		Watch:  Watch(int32(binary.NativeEndian.Uint32(p[0:4]))),
		Mask:   EventMask(binary.NativeEndian.Uint32(p[4:8])),
		Cookie: binary.NativeEndian.Uint32(p[8:12]),
	}
	nameLen := uint64(binary.NativeEndian.Uint32(p[12:16]))
	if nameLen > uint64(len(p)-headerSize) {
		return Event{}, 0, &DecodeError{Need: headerSize + int(min(nameLen, 1<<30)), Have: len(p)}
	}
	size := headerSize + int(nameLen)
	if nameLen > 0 {
		name := p[headerSize:size]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		ev.Name = string(name)
	}
	return ev, size, nil
}
