package datastructure

import (
	"errors"
)

var (
	ErrHeapEmpty       = errors.New("heap is empty")
	ErrInvalidDecrease = errors.New("decrease key: node not in heap or rank increased")
)

// PriorityQueueNode. handle returned to the caller so the rank can be lowered later.
type PriorityQueueNode[T comparable] struct {
	item T
	rank float64
	seq  uint64 // tie breaker
	pos  int
}

func NewPriorityQueueNode[T comparable](rank float64, item T) *PriorityQueueNode[T] {
	return &PriorityQueueNode[T]{rank: rank, item: item, pos: -1}
}

func (p *PriorityQueueNode[T]) GetItem() T { return p.item }

func (p *PriorityQueueNode[T]) GetRank() float64 { return p.rank }

// GetPos. slot in the heap array, -1 once extracted
func (p *PriorityQueueNode[T]) GetPos() int { return p.pos }

/*
MinHeap. indexed d-ary min heap keyed on (rank, seq).
seq is bumped on Insert & DecreaseKey, so among equal ranks the node touched first pops first.
*/
type MinHeap[T comparable] struct {
	nodes []*PriorityQueueNode[T]
	arity int
	seq   uint64
}

func NewdAryHeap[T comparable](d int) *MinHeap[T] {
	if d < 2 {
		d = 2
	}
	return &MinHeap[T]{arity: d}
}

func NewBinaryHeap[T comparable]() *MinHeap[T] { return NewdAryHeap[T](2) }

func NewFourAryHeap[T comparable]() *MinHeap[T] { return NewdAryHeap[T](4) }

func (h *MinHeap[T]) Size() int { return len(h.nodes) }

func (h *MinHeap[T]) IsEmpty() bool { return len(h.nodes) == 0 }

func (h *MinHeap[T]) before(a, b *PriorityQueueNode[T]) bool {
	if a.rank == b.rank {
		return a.seq < b.seq
	}
	return a.rank < b.rank
}

func (h *MinHeap[T]) place(node *PriorityQueueNode[T], i int) {
	h.nodes[i] = node
	node.pos = i
}

// siftUp. hole technique, node is written once at its final slot
func (h *MinHeap[T]) siftUp(i int) {
	node := h.nodes[i]
	for i > 0 {
		p := (i - 1) / h.arity
		if !h.before(node, h.nodes[p]) {
			break
		}
		h.place(h.nodes[p], i)
		i = p
	}
	h.place(node, i)
}

func (h *MinHeap[T]) siftDown(i int) {
	node := h.nodes[i]
	n := len(h.nodes)
	for {
		first := i*h.arity + 1
		if first >= n {
			break
		}
		best := first
		for c := first + 1; c < first+h.arity && c < n; c++ {
			if h.before(h.nodes[c], h.nodes[best]) {
				best = c
			}
		}
		if !h.before(h.nodes[best], node) {
			break
		}
		h.place(h.nodes[best], i)
		i = best
	}
	h.place(node, i)
}

func (h *MinHeap[T]) Insert(node *PriorityQueueNode[T]) {
	node.seq = h.seq
	h.seq++
	h.nodes = append(h.nodes, node)
	h.siftUp(len(h.nodes) - 1)
}

// ExtractMin. O(d log_d n)
func (h *MinHeap[T]) ExtractMin() (*PriorityQueueNode[T], error) {
	if len(h.nodes) == 0 {
		return nil, ErrHeapEmpty
	}
	root := h.nodes[0]
	last := len(h.nodes) - 1
	tail := h.nodes[last]
	h.nodes[last] = nil
	h.nodes = h.nodes[:last]
	if last > 0 {
		h.place(tail, 0)
		h.siftDown(0)
	}
	root.pos = -1
	return root, nil
}

func (h *MinHeap[T]) DecreaseKey(node *PriorityQueueNode[T], rank float64) error {
	i := node.pos
	if i < 0 || i >= len(h.nodes) || h.nodes[i] != node || rank > node.rank {
		return ErrInvalidDecrease
	}
	node.rank = rank
	node.seq = h.seq
	h.seq++
	h.siftUp(i)
	return nil
}
