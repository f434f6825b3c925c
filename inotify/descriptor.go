//go:build linux

package inotify

import (
	"fmt"
	"os"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// descriptor owns the inotify file descriptor.
//
// The descriptor is registered with the runtime poller through an
// *os.File, so a goroutine parked in waitReadable is woken when close runs,
// and the OS close is deferred until every in-flight withDescriptor call
// has returned.
type descriptor struct {
	cur atomic.Pointer[descriptorFile] // nil once closed
}

type descriptorFile struct {
	file *os.File
	raw  syscall.RawConn
}

func newDescriptor(fd int) (*descriptor, error) {
	f := os.NewFile(uintptr(fd), "inotify")
	if f == nil {
		return nil, fmt.Errorf("inotify: invalid descriptor %d", fd)
	}
	raw, err := f.SyscallConn()
	if err != nil {
		f.Close()
		return nil, err
	}
	d := &descriptor{}
	d.cur.Store(&descriptorFile{file: f, raw: raw})
	return d, nil
}

func (d *descriptor) isClosed() bool {
	return d.cur.Load() == nil
}

// close invalidates the descriptor and releases it. Only the first call
// releases anything; it reports released=true.
func (d *descriptor) close() (released bool, err error) {
	f := d.cur.Swap(nil)
	if f == nil {
		return false, nil
	}
	return true, f.file.Close()
}

// withDescriptor runs action with the raw descriptor, which stays open
// until action returns. It returns fallback without running action if the
// descriptor is closed.
func withDescriptor[T any](d *descriptor, fallback T, action func(fd int) T) T {
	f := d.cur.Load()
	if f == nil {
		return fallback
	}
	result := fallback
	if err := f.raw.Control(func(fd uintptr) {
		result = action(int(fd))
	}); err != nil {
		// Lost the race with close.
		return fallback
	}
	return result
}

// waitReadable parks until the descriptor becomes readable or is closed.
// A close is not an error here; the caller sees it on its next refill.
func (d *descriptor) waitReadable() error {
	f := d.cur.Load()
	if f == nil {
		return nil
	}
	// The poller forgets earlier readiness when Read starts, so readable
	// has to look at the descriptor itself before parking.
	err := f.raw.Read(readable)
	if err != nil && !d.isClosed() {
		return err
	}
	return nil
}

func readable(fd uintptr) bool {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil {
		// Let the caller find out what is wrong on its next read.
		return true
	}
	return n > 0
}
