package heavykeeper

type minHeap struct {
	items []Item
	index map[string]int
}

func newMinHeap(k uint32) *minHeap {
	return &minHeap{
		items: make([]Item, 0, min(k, 1024)),
		index: make(map[string]int, min(k, 1024)),
	}
}

func (h *minHeap) find(key string) (int, bool) {
	i, ok := h.index[key]
	return i, ok
}

func (h minHeap) Len() int           { return len(h.items) }
func (h minHeap) Less(i, j int) bool { return h.items[i].Count < h.items[j].Count }

func (h minHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i].Key] = i
	h.index[h.items[j].Key] = j
}

func (h *minHeap) Push(x any) {
	item := x.(Item)
	h.index[item.Key] = len(h.items)
	h.items = append(h.items, item)
}

func (h *minHeap) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]
	delete(h.index, item.Key)
	return item
}
