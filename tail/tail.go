//go:build linux

// Package tail follows an inotify channel by polling it on a ticker
// instead of blocking in a read.
package tail

import (
	"sync"
	"time"

	"github.com/hawkingrei/inostream/inotify"

	"github.com/sirupsen/logrus"
)

// Handler is called once per event, in order, from the Start goroutine.
type Handler func(inotify.Event)

// LogEvent is a Handler that logs every event at info level.
func LogEvent(event inotify.Event) {
	logrus.WithFields(logrus.Fields{
		"watch":  event.Watch,
		"mask":   event.Mask.String(),
		"cookie": event.Cookie,
	}).Info("event: ", event.Name)
}

type Tailer struct {
	channel  *inotify.Channel
	interval time.Duration
	handler  Handler

	done     chan struct{}
	stopOnce sync.Once
}

// New returns a Tailer that polls channel every interval. The channel stays
// owned by the caller.
func New(channel *inotify.Channel, interval time.Duration, handler Handler) *Tailer {
	if handler == nil {
		handler = LogEvent
	}
	return &Tailer{
		channel:  channel,
		interval: interval,
		handler:  handler,
		done:     make(chan struct{}),
	}
}

// Start polls until Stop is called or a read fails. Events still in the
// channel's buffer when Stop is called are delivered before it returns.
func (t *Tailer) Start() error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			t.drain()
			return nil
		case <-ticker.C:
			if _, err := t.poll(); err != nil {
				logrus.WithError(err).Error("Failed to poll inotify channel")
				return err
			}
		}
	}
}

func (t *Tailer) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

// poll makes at most one kernel read, then hands on everything that read
// buffered.
func (t *Tailer) poll() (int, error) {
	event, ok, err := t.channel.TryReadEvent()
	if err != nil || !ok {
		return 0, err
	}
	t.handler(event)
	return 1 + t.drain(), nil
}

func (t *Tailer) drain() int {
	n := 0
	for {
		event, ok := t.channel.ReadEventFromBuffer()
		if !ok {
			return n
		}
		t.handler(event)
		n++
	}
}
