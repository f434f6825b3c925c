//go:build linux

package inotify

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// Channel represents an inotify instance.
//
// All methods are safe for concurrent use. Reads are serialized on the
// buffer lock; Close and watch management go through the descriptor handle
// only, so they never wait behind a blocked reader.
type Channel struct {
	fd *descriptor

	mu  sync.Mutex // guards buf and every refill into it
	buf *eventBuffer

	read func(fd int, p []byte) (int, error)
	log  *logrus.Entry
}

// Open creates a non-blocking, close-on-exec inotify instance.
func Open(opts ...Option) (*Channel, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.bufferSize < MinBufferSize {
		return nil, fmt.Errorf("inotify: buffer size %d is smaller than the minimum of %d bytes", o.bufferSize, MinBufferSize)
	}
	fd, err := openDescriptor()
	if err != nil {
		return nil, err
	}
	d, err := newDescriptor(fd)
	if err != nil {
		return nil, err
	}
	c := &Channel{
		fd:   d,
		buf:  newEventBuffer(o.bufferSize),
		read: rawRead,
		log:  o.logger.WithField("fd", fd),
	}
	runtime.SetFinalizer(c, (*Channel).finalize)
	return c, nil
}

// AddWatch adds a watch for path, or changes the mask of an existing watch
// on the same inode, in which case the same Watch is returned.
func (c *Channel) AddWatch(path string, mask ConfigMask) (Watch, error) {
	type result struct {
		w   Watch
		err error
	}
	r := withDescriptor(c.fd, result{err: ErrChannelClosed}, func(fd int) result {
		w, err := addWatch(fd, path, mask)
		return result{w, err}
	})
	return r.w, r.err
}

// RemoveWatch removes w. A watch the kernel already dropped is not an
// error.
func (c *Channel) RemoveWatch(w Watch) error {
	type result struct {
		removed bool
		err     error
	}
	r := withDescriptor(c.fd, result{err: ErrChannelClosed}, func(fd int) result {
		removed, err := removeWatch(fd, w)
		return result{removed, err}
	})
	if r.err == nil && !r.removed {
		c.log.WithField("watch", w).Debug("watch already removed")
	}
	return r.err
}

// Close releases the inotify descriptor. It may be called any number of
// times from any goroutine. Blocked readers return ErrChannelClosed;
// already buffered events stay readable with ReadEventFromBuffer.
func (c *Channel) Close() error {
	released, err := c.fd.close()
	if !released {
		return nil
	}
	runtime.SetFinalizer(c, nil)
	metricDescriptorsReleased.Inc()
	if err != nil {
		c.log.WithError(err).Warn("failed to close inotify descriptor")
		return &OSError{Op: "close", Err: err}
	}
	c.log.Debug("inotify channel closed")
	return nil
}

func (c *Channel) finalize() {
	if released, _ := c.fd.close(); released {
		metricDescriptorsReleased.Inc()
		c.log.Warn("inotify channel was not closed before being garbage collected")
	}
}
