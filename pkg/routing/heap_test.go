package routing

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHeapOrdering(t *testing.T) {
	h := NewFourAryHeap[float64, string]()

	h.Insert(NewPriorityQueueNode(3.0, "c"))
	h.Insert(NewPriorityQueueNode(1.0, "a"))
	h.Insert(NewPriorityQueueNode(2.0, "b"))

	require.Equal(t, 3, h.Size())

	for _, want := range []string{"a", "b", "c"} {
		node, err := h.ExtractMin()
		require.NoError(t, err)
		assert.Equal(t, want, node.GetItem())
	}

	assert.True(t, h.IsEmpty())
}

func TestMinHeapExtractEmpty(t *testing.T) {
	h := NewBinaryHeap[float64, int]()
	_, err := h.ExtractMin()
	assert.Error(t, err)
}

func TestMinHeapRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	h := NewFourAryHeap[float64, int]()
	ranks := make([]float64, 200)
	for i := range ranks {
		ranks[i] = rng.Float64() * 1000
		h.Insert(NewPriorityQueueNode(ranks[i], i))
	}

	sort.Float64s(ranks)

	for _, want := range ranks {
		node, err := h.ExtractMin()
		require.NoError(t, err)
		assert.Equal(t, want, node.GetRank())
	}
}
