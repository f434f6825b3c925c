// Package heavykeeper implements the HeavyKeeper top-k algorithm
// (Yang et al., "HeavyKeeper: An Accurate Algorithm for Finding Top-k
// Elephant Flows"): a count-with-exponential-decay sketch feeding a
// min-heap of the k heaviest keys.
package heavykeeper

import (
	"container/heap"
	"math"
	"math/rand"
	"sort"

	"github.com/twmb/murmur3"
)

const lookupTableSize = 256

// Item is a tracked key with its estimated count.
type Item struct {
	Key   string
	Count uint32
}

// Topk tracks the most frequent keys of a stream.
type Topk interface {
	// Add records incr occurrences of key and reports whether key is
	// currently among the top k.
	Add(key string, incr uint32) bool
	// List returns the top k items, heaviest first.
	List() []Item
	// Expelled delivers items pushed out of the top k.
	Expelled() <-chan Item
	// Fading halves every count so old activity ages out.
	Fading()
	Total() uint64
}

type bucket struct {
	fingerprint uint32
	count       uint32
}

// HeavyKeeper is not safe for concurrent use.
type HeavyKeeper struct {
	k           uint32
	width       uint32
	depth       uint32
	minCount    uint32
	lookupTable []float64
	buckets     [][]bucket
	minHeap     *minHeap
	expelled    chan Item
	total       uint64
	r           *rand.Rand
}

// NewHeavyKeeper returns a sketch of depth rows of width buckets that keeps
// the k heaviest keys. A colliding bucket is decremented with probability
// decay^count; keys whose estimate stays under minCount are never admitted.
func NewHeavyKeeper(k, width, depth uint32, decay float64, minCount uint32) Topk {
	lookupTable := make([]float64, lookupTableSize)
	for i := range lookupTable {
		lookupTable[i] = math.Pow(decay, float64(i))
	}
	buckets := make([][]bucket, depth)
	for i := range buckets {
		buckets[i] = make([]bucket, width)
	}
	return &HeavyKeeper{
		k:           k,
		width:       width,
		depth:       depth,
		minCount:    minCount,
		lookupTable: lookupTable,
		buckets:     buckets,
		minHeap:     newMinHeap(k),
		expelled:    make(chan Item, 32),
		r:           rand.New(rand.NewSource(0)),
	}
}

func (topk *HeavyKeeper) Add(key string, incr uint32) bool {
	keyBytes := []byte(key)
	itemFingerprint := murmur3.Sum32(keyBytes)
	var maxCount uint32

	for i, row := range topk.buckets {
		b := &row[murmur3.SeedSum32(uint32(i), keyBytes)%topk.width]

		if b.count == 0 {
			b.fingerprint = itemFingerprint
			b.count = incr
			maxCount = max(maxCount, incr)
			continue
		}
		if b.fingerprint == itemFingerprint {
			b.count += incr
			maxCount = max(maxCount, b.count)
			continue
		}
		for localIncr := incr; localIncr > 0; localIncr-- {
			decay := topk.lookupTable[min(b.count, lookupTableSize-1)]
			if topk.r.Float64() < decay {
				b.count--
				if b.count == 0 {
					b.fingerprint = itemFingerprint
					b.count = localIncr
					maxCount = max(maxCount, localIncr)
					break
				}
			}
		}
	}
	topk.total += uint64(incr)

	if maxCount < topk.minCount {
		return false
	}
	if i, ok := topk.minHeap.find(key); ok {
		topk.minHeap.items[i].Count = maxCount
		heap.Fix(topk.minHeap, i)
		return true
	}
	if uint32(topk.minHeap.Len()) < topk.k {
		heap.Push(topk.minHeap, Item{Key: key, Count: maxCount})
		return true
	}
	if maxCount > topk.minHeap.items[0].Count {
		expelled := heap.Pop(topk.minHeap).(Item)
		heap.Push(topk.minHeap, Item{Key: key, Count: maxCount})
		select {
		case topk.expelled <- expelled:
		default:
		}
		return true
	}
	return false
}

func (topk *HeavyKeeper) List() []Item {
	items := make([]Item, len(topk.minHeap.items))
	copy(items, topk.minHeap.items)
	sort.Slice(items, func(i, j int) bool {
		return items[i].Count > items[j].Count
	})
	return items
}

func (topk *HeavyKeeper) Expelled() <-chan Item {
	return topk.expelled
}

func (topk *HeavyKeeper) Fading() {
	for _, row := range topk.buckets {
		for i := range row {
			row[i].count >>= 1
		}
	}
	for i := range topk.minHeap.items {
		topk.minHeap.items[i].Count >>= 1
	}
	heap.Init(topk.minHeap)
	topk.total >>= 1
}

func (topk *HeavyKeeper) Total() uint64 {
	return topk.total
}
