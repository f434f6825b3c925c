// Package inotify turns a Linux inotify descriptor into a stream of
// decoded events that any number of goroutines can read from.
//
// A Channel has no reader goroutine. Callers pull events with one of three
// families of reads:
//
//   - ReadEvent and PeekEvent block until an event is available or the
//     channel is closed.
//   - TryReadEvent and TryPeekEvent make at most one read from the kernel
//     and report whether an event was available.
//   - ReadEventFromBuffer and PeekEventFromBuffer only consult records
//     already fetched from the kernel and never touch the descriptor.
//
// Close is the only way to release a goroutine blocked in ReadEvent or
// PeekEvent. Records already buffered when Close runs stay readable
// through the buffer-only reads. Records the kernel has queued but not yet
// handed over are lost.
package inotify
