//go:build linux

package inotify

import (
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBufferSize fits several typical records per kernel read.
	DefaultBufferSize = 2048

	// MinBufferSize holds one record with the longest possible name. The
	// kernel fails reads into anything smaller with EINVAL when such a
	// record is next in its queue.
	MinBufferSize = headerSize + maxNameLen + 1
)

// Option configures a Channel at Open.
type Option func(*options)

type options struct {
	bufferSize int
	logger     *logrus.Entry
}

func defaultOptions() options {
	return options{
		bufferSize: DefaultBufferSize,
		logger:     logrus.WithField("component", "inotify"),
	}
}

// WithBufferSize sets the capacity of the receive buffer. It cannot be
// changed after Open.
func WithBufferSize(n int) Option {
	return func(o *options) {
		o.bufferSize = n
	}
}

// WithLogger sets the entry the channel logs through.
func WithLogger(l *logrus.Entry) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
