//go:build linux

package eviction

import (
	"errors"
	"math"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/hawkingrei/inostream/diskutil"
	"github.com/hawkingrei/inostream/eviction/internal/heavykeeper"
	"github.com/hawkingrei/inostream/inotify"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	metricEvictedFiles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inostream",
		Subsystem: "eviction",
		Name:      "evicted_files_total",
		Help:      "Total number of cache files evicted",
	})
	metricEvictedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inostream",
		Subsystem: "eviction",
		Name:      "evicted_bytes_total",
		Help:      "Total size of cache files evicted",
	})
)

// maxColdKeys caps how many expelled keys are remembered between cleanups.
const maxColdKeys = 100000

const watchMask = inotify.InOpen | inotify.InCreate | inotify.InMovedTo |
	inotify.InDelete | inotify.InMovedFrom | inotify.InOnlyDir

// Notify tracks access to files under a cache directory and evicts cold
// files when the filesystem runs low on space.
type Notify struct {
	path        string
	disk        *diskutil.Cache
	channel     *inotify.Channel
	paths       *watchPaths
	eventCnt    atomic.Int64
	write       atomic.Int64
	heavykeeper heavykeeper.Topk
	// keys pushed out of the hot set; evicted before anything else
	cold map[string]struct{}

	minPercentBlocksFree        float64
	evictUntilPercentBlocksFree float64
}

func New(path string, minPercentBlocksFree, evictUntilPercentBlocksFree float64) (*Notify, error) {
	channel, err := inotify.Open(inotify.WithLogger(logrus.WithField("component", "eviction")))
	if err != nil {
		return nil, err
	}
	const HotKeyCnt = 200000
	factor := uint32(math.Log(float64(HotKeyCnt)))
	if factor < 1 {
		factor = 1
	}
	n := &Notify{
		path:                        path,
		disk:                        diskutil.NewCache(path),
		channel:                     channel,
		paths:                       newWatchPaths(),
		heavykeeper:                 heavykeeper.NewHeavyKeeper(HotKeyCnt, 1024*factor, 4, 0.925, 1024),
		cold:                        make(map[string]struct{}),
		minPercentBlocksFree:        minPercentBlocksFree,
		evictUntilPercentBlocksFree: evictUntilPercentBlocksFree,
	}
	if err := n.Watch(path); err != nil {
		channel.Close()
		return nil, err
	}
	return n, nil
}

// Watch adds a directory to the set of watched cache directories.
// Subdirectories are not watched.
func (n *Notify) Watch(dir string) error {
	w, err := n.channel.AddWatch(dir, watchMask)
	if err != nil {
		return err
	}
	n.paths.add(w, dir)
	return nil
}

// Start processes events until Stop is called.
func (n *Notify) Start() {
	events := make(chan inotify.Event, 128)
	go n.readLoop(events)

	expelledChan := n.heavykeeper.Expelled()
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			n.handle(event)
		case <-ticker.C:
			n.trickWorker()
		case item := <-expelledChan:
			n.markCold(item.Key)
		}
	}
}

// Stop closes the inotify channel, which ends the read loop and Start.
func (n *Notify) Stop() {
	if err := n.channel.Close(); err != nil {
		logrus.WithError(err).Error("Failed to close inotify channel")
	}
}

func (n *Notify) readLoop(events chan<- inotify.Event) {
	defer close(events)
	for {
		event, err := n.channel.ReadEvent()
		if err != nil {
			if !errors.Is(err, inotify.ErrChannelClosed) {
				logrus.WithError(err).Error("Failed to read inotify event")
			}
			return
		}
		events <- event
	}
}

func (n *Notify) handle(event inotify.Event) {
	switch {
	case event.HasEvent(inotify.EvQueueOverflow):
		logrus.Warn("inotify queue overflowed, access counts are incomplete")
		return
	case event.HasEvent(inotify.EvIgnored):
		n.paths.remove(event.Watch)
		return
	case event.HasEvent(inotify.EvIsDir):
		return
	}
	path, ok := n.paths.resolve(event)
	if !ok {
		return
	}
	key := n.disk.PathToKey(path)
	n.eventCnt.Add(1)
	switch {
	case event.Mask.HasOverlap(inotify.EvCreate | inotify.EvMovedTo):
		n.heavykeeper.Add(key, 10)
		n.write.Add(1)
		delete(n.cold, key)
	case event.Mask.HasOverlap(inotify.EvDelete | inotify.EvMovedFrom):
		delete(n.cold, key)
	default:
		n.heavykeeper.Add(key, 1)
	}
}

func (n *Notify) markCold(key string) {
	if len(n.cold) >= maxColdKeys {
		return
	}
	n.cold[key] = struct{}{}
}

// pruneCold forgets expelled keys whose files no longer exist.
func (n *Notify) pruneCold() {
	for key := range n.cold {
		if _, err := os.Lstat(n.disk.KeyToPath(key)); os.IsNotExist(err) {
			delete(n.cold, key)
		}
	}
}

func (n *Notify) trickWorker() {
	if n.eventCnt.Load() > 5000 || n.write.Load() > 2000 {
		n.eventCnt.Store(0)
		n.write.Store(0)
		n.topkCleaner()
	}
}

func (n *Notify) topkCleaner() {
	n.heavykeeper.Fading()
	n.pruneCold()
	topset := make(map[string]uint32)
	for _, item := range n.heavykeeper.List() {
		topset[item.Key] = item.Count
	}

	blocksFree, _, _, err := diskutil.GetDiskUsage(n.path)
	if err != nil {
		logrus.WithError(err).Error("Failed to get disk usage!")
		return
	}
	if blocksFree >= n.minPercentBlocksFree {
		return
	}
	files := n.disk.GetEntries()
	keys := make([]string, len(files))
	for i, entry := range files {
		keys[i] = n.disk.PathToKey(entry.Path)
	}
	idx := make([]int, len(files))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		_, coldA := n.cold[keys[idx[a]]]
		_, coldB := n.cold[keys[idx[b]]]
		if coldA != coldB {
			return coldA
		}
		return files[idx[a]].LastAccess.Before(files[idx[b]].LastAccess)
	})
	for _, i := range idx {
		if blocksFree >= n.evictUntilPercentBlocksFree {
			return
		}
		entry, key := files[i], keys[i]
		if _, hot := topset[key]; hot {
			continue
		}
		if err := n.disk.Delete(key); err != nil {
			logrus.WithError(err).Errorf("Error deleting entry at path: %v", entry.Path)
			continue
		}
		delete(n.cold, key)
		metricEvictedFiles.Inc()
		metricEvictedBytes.Add(float64(entry.Size))
		logrus.Infof("delete %v", entry.Path)
		blocksFree, _, _, err = diskutil.GetDiskUsage(n.path)
		if err != nil {
			logrus.WithError(err).Error("Failed to get disk usage!")
			return
		}
	}
}
