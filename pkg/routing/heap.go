package routing

import (
	"errors"

	"golang.org/x/exp/constraints"
)

type PriorityQueueNode[R constraints.Ordered, T any] struct {
	rank R
	item T
}

func (p *PriorityQueueNode[R, T]) GetItem() T {
	return p.item
}

func (p *PriorityQueueNode[R, T]) GetRank() R {
	return p.rank
}

func NewPriorityQueueNode[R constraints.Ordered, T any](rank R, item T) *PriorityQueueNode[R, T] {
	return &PriorityQueueNode[R, T]{rank: rank, item: item}
}

// MinHeap d-ary heap priorityqueue
type MinHeap[R constraints.Ordered, T any] struct {
	heap []*PriorityQueueNode[R, T]
	d    int
}

func NewBinaryHeap[R constraints.Ordered, T any]() *MinHeap[R, T] {
	return NewdAryHeap[R, T](2)
}

func NewFourAryHeap[R constraints.Ordered, T any]() *MinHeap[R, T] {
	return NewdAryHeap[R, T](4)
}

func NewdAryHeap[R constraints.Ordered, T any](d int) *MinHeap[R, T] {
	return &MinHeap[R, T]{
		heap: make([]*PriorityQueueNode[R, T], 0),
		d:    d,
	}
}

func (h *MinHeap[R, T]) parent(index int) int {
	return (index - 1) / h.d
}

// heapifyUp restore heap property upward from index. O(logN) tree height.
func (h *MinHeap[R, T]) heapifyUp(index int) {
	for index != 0 && h.heap[index].rank < h.heap[h.parent(index)].rank {
		h.swap(index, h.parent(index))
		index = h.parent(index)
	}
}

// heapifyDown restore heap property downward from index. O(logN) tree height.
func (h *MinHeap[R, T]) heapifyDown(index int) {
	leftMostChild := index*h.d + 1
	if leftMostChild >= len(h.heap) {
		return
	}

	sentinel := leftMostChild + h.d
	if sentinel > len(h.heap) {
		sentinel = len(h.heap)
	}

	smallest := leftMostChild
	for i := leftMostChild + 1; i < sentinel; i++ {
		if h.heap[i].rank < h.heap[smallest].rank {
			smallest = i
		}
	}

	if h.heap[smallest].rank < h.heap[index].rank {
		h.swap(index, smallest)
		h.heapifyDown(smallest)
	}
}

func (h *MinHeap[R, T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
}

func (h *MinHeap[R, T]) IsEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[R, T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[R, T]) Insert(key *PriorityQueueNode[R, T]) {
	h.heap = append(h.heap, key)
	h.heapifyUp(h.Size() - 1)
}

// ExtractMin pop the minimum-rank node. O(logN).
func (h *MinHeap[R, T]) ExtractMin() (*PriorityQueueNode[R, T], error) {
	if h.IsEmpty() {
		return &PriorityQueueNode[R, T]{}, errors.New("heap is empty")
	}
	root := h.heap[0]

	h.swap(0, h.Size()-1)

	h.heap = h.heap[:h.Size()-1]
	if len(h.heap) > 0 {
		h.heapifyDown(0)
	}

	return root, nil
}
