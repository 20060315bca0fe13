// Package queue provides the priority queue used for top-k selection.
package queue

import (
	"container/heap"
	"slices"
)

// Compile time check to ensure PriorityQueue satisfies the heap interface.
var _ heap.Interface = (*PriorityQueue)(nil)

// Item is a scored position in a scan.
type Item struct {
	Pos      int     // Pos is the position of the item in the scanned snapshot.
	Distance float64 // Distance is the priority of the item in the queue.
}

// Before reports whether a ranks ahead of b: smaller distance first, then
// lower position.
func Before(a, b Item) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Pos < b.Pos
}

// PriorityQueue implements heap.Interface and holds Items.
type PriorityQueue struct {
	Order bool   // Order puts the worst-ranked item on top when true.
	Items []Item // Items contains the elements of the priority queue.
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue) Len() int { return len(pq.Items) }

// Less reports whether the element with index i should sort before the element with index j.
func (pq *PriorityQueue) Less(i, j int) bool {
	if !pq.Order {
		return Before(pq.Items[i], pq.Items[j])
	}
	return Before(pq.Items[j], pq.Items[i])
}

// Swap swaps the elements with indexes i and j.
func (pq *PriorityQueue) Swap(i, j int) {
	pq.Items[i], pq.Items[j] = pq.Items[j], pq.Items[i]
}

// Push adds x to the priority queue.
func (pq *PriorityQueue) Push(x any) {
	pq.Items = append(pq.Items, x.(Item))
}

// Pop removes and returns the last element of the backing slice.
func (pq *PriorityQueue) Pop() any {
	n := len(pq.Items)
	item := pq.Items[n-1]
	pq.Items = pq.Items[:n-1]
	return item
}

// Top returns the top element of the priority queue.
func (pq *PriorityQueue) Top() Item {
	return pq.Items[0]
}

// TopK keeps the k best-ranked items pushed into it.
type TopK struct {
	k  int
	pq PriorityQueue
}

// NewTopK creates a TopK for k > 0.
func NewTopK(k int) *TopK {
	return &TopK{
		k:  k,
		pq: PriorityQueue{Order: true, Items: make([]Item, 0, min(k, 1024))},
	}
}

// Len returns the number of items held.
func (t *TopK) Len() int { return t.pq.Len() }

// Push offers item. It is dropped when k better items are already held.
func (t *TopK) Push(item Item) {
	if t.pq.Len() < t.k {
		heap.Push(&t.pq, item)
		return
	}
	if Before(item, t.pq.Top()) {
		t.pq.Items[0] = item
		heap.Fix(&t.pq, 0)
	}
}

// Merge pushes every item held by o.
func (t *TopK) Merge(o *TopK) {
	for _, item := range o.pq.Items {
		t.Push(item)
	}
}

// Sorted returns the held items, best first.
func (t *TopK) Sorted() []Item {
	out := slices.Clone(t.pq.Items)
	slices.SortFunc(out, func(a, b Item) int {
		if Before(a, b) {
			return -1
		}
		if Before(b, a) {
			return 1
		}
		return 0
	})
	return out
}
