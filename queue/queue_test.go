package queue

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hypervec/testutil"
)

func TestPriorityQueue(t *testing.T) {
	tests := []struct {
		name  string
		order bool
		want  []int
	}{
		{"Ascending", false, []int{1, 0, 3, 2}},
		{"Descending", true, []int{2, 3, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := &PriorityQueue{Order: tt.order}
			heap.Push(pq, Item{Pos: 0, Distance: 2})
			heap.Push(pq, Item{Pos: 1, Distance: 1})
			heap.Push(pq, Item{Pos: 2, Distance: 3})
			heap.Push(pq, Item{Pos: 3, Distance: 2})

			var got []int
			for pq.Len() > 0 {
				got = append(got, heap.Pop(pq).(Item).Pos)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopK(t *testing.T) {
	top := NewTopK(3)
	for i, d := range []float64{5, 1, 4, 1, 3, 9, 2} {
		top.Push(Item{Pos: i, Distance: d})
	}

	require.Equal(t, 3, top.Len())
	assert.Equal(t, []Item{{Pos: 1, Distance: 1}, {Pos: 3, Distance: 1}, {Pos: 6, Distance: 2}}, top.Sorted())
}

func TestTopKTiesKeepPosition(t *testing.T) {
	top := NewTopK(2)
	for i := 9; i >= 0; i-- {
		top.Push(Item{Pos: i, Distance: 0.5})
	}
	assert.Equal(t, []Item{{Pos: 0, Distance: 0.5}, {Pos: 1, Distance: 0.5}}, top.Sorted())
}

func TestTopKMerge(t *testing.T) {
	rng := testutil.NewRNG(3)
	all := NewTopK(5)
	parts := []*TopK{NewTopK(5), NewTopK(5), NewTopK(5)}

	for i := range 300 {
		item := Item{Pos: i, Distance: float64(rng.Intn(50))}
		all.Push(item)
		parts[i%3].Push(item)
	}

	merged := NewTopK(5)
	for _, p := range parts {
		merged.Merge(p)
	}
	assert.Equal(t, all.Sorted(), merged.Sorted())
}

func TestTopKFewerThanK(t *testing.T) {
	top := NewTopK(10)
	top.Push(Item{Pos: 0, Distance: 2})
	top.Push(Item{Pos: 1, Distance: 1})
	assert.Equal(t, []Item{{Pos: 1, Distance: 1}, {Pos: 0, Distance: 2}}, top.Sorted())
}
