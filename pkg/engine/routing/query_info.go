package routing

import (
	da "github.com/lintang-b-s/osmrouter/pkg/datastructure"
)

// vertexInfo. search label of one vertex, private to a single query.
type vertexInfo struct {
	cost       float64
	parentEdge da.Index
	heapNode   *da.PriorityQueueNode[da.Index]
	settled    bool
}

func newVertexInfo(cost float64, parentEdge da.Index, heapNode *da.PriorityQueueNode[da.Index]) *vertexInfo {
	return &vertexInfo{
		cost:       cost,
		parentEdge: parentEdge,
		heapNode:   heapNode,
	}
}

func (vi *vertexInfo) update(cost float64, parentEdge da.Index) {
	vi.cost = cost
	vi.parentEdge = parentEdge
}
