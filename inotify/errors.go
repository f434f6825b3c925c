//go:build linux

package inotify

import (
	"errors"
	"fmt"
)

// ErrChannelClosed is returned by blocking reads, and by watch management,
// once the channel has been closed and no buffered event remains.
var ErrChannelClosed = errors.New("inotify: channel closed")

// OSError records a failed call into the kernel.
type OSError struct {
	Op   string
	Path string
	Err  error
}

func (e *OSError) Error() string {
	if e.Path == "" {
		return "inotify: " + e.Op + ": " + e.Err.Error()
	}
	return fmt.Sprintf("inotify: %s %q: %s", e.Op, e.Path, e.Err)
}

func (e *OSError) Unwrap() error { return e.Err }

// DecodeError is returned when the bytes at the buffer cursor do not hold
// a complete record. The kernel never produces one; seeing it means the
// buffer was corrupted or truncated.
type DecodeError struct {
	Offset int // buffer offset of the record
	Need   int // bytes the record claims to occupy
	Have   int // bytes available from Offset
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("inotify: malformed record at offset %d: need %d bytes, have %d", e.Offset, e.Need, e.Have)
}
