//go:build linux

package inotify

import (
	"errors"

	"golang.org/x/sys/unix"
)

// maxInterruptedRetries bounds how often a non-blocking read retries a
// kernel read that failed with EINTR.
const maxInterruptedRetries = 8

type refillStatus int

const (
	refillOK refillStatus = iota
	refillClosed
	refillWouldBlock
	refillInterrupted
	refillFailed
)

func (s refillStatus) String() string {
	switch s {
	case refillOK:
		return "ok"
	case refillClosed:
		return "closed"
	case refillWouldBlock:
		return "would_block"
	case refillInterrupted:
		return "interrupted"
	default:
		return "failed"
	}
}

var errDescriptorClosed = errors.New("descriptor closed")

// refill replaces the buffer contents with a single kernel read. The caller
// must hold c.mu and the buffer must be empty.
func (c *Channel) refill() (refillStatus, error) {
	type result struct {
		n   int
		err error
	}
	r := withDescriptor(c.fd, result{err: errDescriptorClosed}, func(fd int) result {
		n, err := c.read(fd, c.buf.data)
		return result{n, err}
	})

	status := refillFailed
	var err error
	switch {
	case r.err == nil:
		c.buf.reset(r.n)
		metricReadBytes.Add(float64(r.n))
		status = refillOK
	case r.err == errDescriptorClosed:
		status = refillClosed
	case errors.Is(r.err, unix.EAGAIN):
		status = refillWouldBlock
	case errors.Is(r.err, unix.EINTR):
		status = refillInterrupted
	default:
		err = &OSError{Op: "read", Err: r.err}
	}
	metricRefills.WithLabelValues(status.String()).Inc()
	return status, err
}

// decodeLocked decodes the record at the cursor. A malformed record takes
// the rest of the buffer with it, so the next read starts from a fresh
// kernel read instead of failing on the same bytes again.
func (c *Channel) decodeLocked(consume bool) (Event, error) {
	ev, err := c.buf.decode(consume)
	if err != nil {
		c.buf.discard()
		metricDecodeErrors.Inc()
		return Event{}, err
	}
	metricEvents.WithLabelValues(decodeMode(consume)).Inc()
	return ev, nil
}

// ReadEvent returns the next event, blocking until one is available.
// It fails with ErrChannelClosed once the channel is closed and nothing is
// left in the buffer.
func (c *Channel) ReadEvent() (Event, error) {
	return c.readBlocking(true)
}

// PeekEvent is ReadEvent without consuming the event: the next read
// returns it again.
func (c *Channel) PeekEvent() (Event, error) {
	return c.readBlocking(false)
}

func (c *Channel) readBlocking(consume bool) (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if c.buf.pending() {
			return c.decodeLocked(consume)
		}
		status, err := c.refill()
		switch status {
		case refillOK:
			if c.buf.pending() {
				continue
			}
			fallthrough
		case refillWouldBlock:
			// Park without the buffer lock so other readers keep going.
			// Whoever refills in the meantime is picked up by the
			// pending check above.
			c.mu.Unlock()
			metricReadinessWaits.Inc()
			err = c.fd.waitReadable()
			c.mu.Lock()
			if err != nil {
				return Event{}, &OSError{Op: "wait", Err: err}
			}
		case refillInterrupted:
		case refillClosed:
			return Event{}, ErrChannelClosed
		default:
			return Event{}, err
		}
	}
}

// TryReadEvent returns the next event if one is buffered or can be read
// from the kernel without blocking. It makes at most one successful kernel
// read. A closed channel is reported as no event, not as an error.
func (c *Channel) TryReadEvent() (Event, bool, error) {
	return c.tryRead(true)
}

// TryPeekEvent is TryReadEvent without consuming the event.
func (c *Channel) TryPeekEvent() (Event, bool, error) {
	return c.tryRead(false)
}

func (c *Channel) tryRead(consume bool) (Event, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.buf.pending() {
		status, err := c.refillNonBlocking()
		if status == refillFailed {
			return Event{}, false, err
		}
		if status != refillOK || !c.buf.pending() {
			return Event{}, false, nil
		}
	}
	ev, err := c.decodeLocked(consume)
	if err != nil {
		return Event{}, false, err
	}
	return ev, true, nil
}

func (c *Channel) refillNonBlocking() (refillStatus, error) {
	for i := 0; i < maxInterruptedRetries; i++ {
		status, err := c.refill()
		if status != refillInterrupted {
			return status, err
		}
	}
	return refillInterrupted, nil
}

// ReadEventFromBuffer returns the next already buffered event. It never
// reads from the kernel and keeps working after Close.
func (c *Channel) ReadEventFromBuffer() (Event, bool) {
	return c.fromBuffer(true)
}

// PeekEventFromBuffer is ReadEventFromBuffer without consuming the event.
func (c *Channel) PeekEventFromBuffer() (Event, bool) {
	return c.fromBuffer(false)
}

func (c *Channel) fromBuffer(consume bool) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.buf.pending() {
		return Event{}, false
	}
	ev, err := c.decodeLocked(consume)
	if err != nil {
		c.log.WithError(err).Warn("discarding malformed inotify records")
		return Event{}, false
	}
	return ev, true
}
