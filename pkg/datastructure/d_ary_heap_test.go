package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHeapOrder(t *testing.T) {
	testCases := []struct {
		name  string
		d     int
		ranks []float64
	}{
		{name: "binary", d: 2, ranks: []float64{5, 3, 9, 1, 7, 2, 8}},
		{name: "four-ary", d: 4, ranks: []float64{10, 0.5, 3, 3, 11, 2, 6, 4, 1}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			h := NewdAryHeap[int](tt.d)
			for i, r := range tt.ranks {
				h.Insert(NewPriorityQueueNode(r, i))
			}
			prev := -1.0
			for !h.IsEmpty() {
				node, err := h.ExtractMin()
				require.NoError(t, err)
				assert.GreaterOrEqual(t, node.GetRank(), prev)
				prev = node.GetRank()
			}
			_, err := h.ExtractMin()
			assert.ErrorIs(t, err, ErrHeapEmpty)
		})
	}
}

func TestMinHeapTiesPopInInsertionOrder(t *testing.T) {
	h := NewFourAryHeap[string]()
	for _, item := range []string{"a", "b", "c", "d", "e", "f"} {
		h.Insert(NewPriorityQueueNode(1.0, item))
	}

	got := make([]string, 0, 6)
	for !h.IsEmpty() {
		node, err := h.ExtractMin()
		require.NoError(t, err)
		got = append(got, node.GetItem())
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, got)
}

func TestMinHeapDecreaseKey(t *testing.T) {
	h := NewBinaryHeap[int]()
	nodes := make([]*PriorityQueueNode[int], 5)
	for i := range nodes {
		nodes[i] = NewPriorityQueueNode(float64(10+i), i)
		h.Insert(nodes[i])
	}

	require.NoError(t, h.DecreaseKey(nodes[4], 1))
	assert.ErrorIs(t, h.DecreaseKey(nodes[3], 20), ErrInvalidDecrease)

	// lowered to an existing rank: counts as inserted last
	require.NoError(t, h.DecreaseKey(nodes[2], 1))

	first, _ := h.ExtractMin()
	second, _ := h.ExtractMin()
	assert.Equal(t, 4, first.GetItem())
	assert.Equal(t, 2, second.GetItem())
	assert.Equal(t, -1, first.GetPos())
}
