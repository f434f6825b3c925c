//go:build linux

package inotify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRefills = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inostream",
		Subsystem: "inotify",
		Name:      "refills_total",
		Help:      "Total number of kernel reads into the event buffer, by outcome",
	}, []string{"result"})
	metricReadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inostream",
		Subsystem: "inotify",
		Name:      "read_bytes_total",
		Help:      "Total number of bytes read from inotify descriptors",
	})
	metricEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inostream",
		Subsystem: "inotify",
		Name:      "events_total",
		Help:      "Total number of decoded events, by read mode",
	}, []string{"mode"})
	metricReadinessWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inostream",
		Subsystem: "inotify",
		Name:      "readiness_waits_total",
		Help:      "Total number of times a blocking read parked waiting for data",
	})
	metricDescriptorsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inostream",
		Subsystem: "inotify",
		Name:      "descriptors_released_total",
		Help:      "Total number of inotify descriptors released",
	})
	metricDecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inostream",
		Subsystem: "inotify",
		Name:      "decode_errors_total",
		Help:      "Total number of malformed records discarded",
	})
)

func decodeMode(consume bool) string {
	if consume {
		return "consume"
	}
	return "peek"
}
