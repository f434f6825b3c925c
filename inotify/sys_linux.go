//go:build linux

package inotify

import (
	"golang.org/x/sys/unix"
)

func openDescriptor() (int, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return -1, &OSError{Op: "inotify_init1", Err: err}
	}
	return fd, nil
}

func addWatch(fd int, path string, mask ConfigMask) (Watch, error) {
	wd, err := unix.InotifyAddWatch(fd, path, uint32(mask))
	if err != nil {
		return 0, &OSError{Op: "inotify_add_watch", Path: path, Err: err}
	}
	return Watch(wd), nil
}

// removeWatch reports EINVAL as success: the kernel drops watches on its
// own when the watched inode goes away or a one-shot watch fires.
func removeWatch(fd int, w Watch) (removed bool, err error) {
	_, err = unix.InotifyRmWatch(fd, uint32(w))
	switch err {
	case nil:
		return true, nil
	case unix.EINVAL:
		return false, nil
	default:
		return false, &OSError{Op: "inotify_rm_watch", Err: err}
	}
}

func rawRead(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}
