package routing

import (
	"context"
	"fmt"

	"github.com/lintang-b-s/osmrouter/pkg/costfunction"
	da "github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/util"
)

type heuristicFunc func(v da.Index) float64

// Search. unidirectional label-setting search from s to t. with a zero heuristic this is plain dijkstra,
// with a lower bound on the remaining cost it is A*. labels & heap belong to this query only.
type Search struct {
	graph        *da.Graph
	costFunction costfunction.CostFunction
	heuristic    heuristicFunc

	info map[da.Index]*vertexInfo
	pq   *da.MinHeap[da.Index]

	numSettledNodes int
}

func NewDijkstra(graph *da.Graph, costFunction costfunction.CostFunction) *Search {
	return newSearch(graph, costFunction, func(v da.Index) float64 { return 0 })
}

func NewAStar(graph *da.Graph, costFunction costfunction.CostFunction, t da.Index) *Search {
	return newSearch(graph, costFunction, func(v da.Index) float64 {
		return costFunction.GetLowerBound(graph.GetHaversineDistanceFromUtoV(v, t))
	})
}

func newSearch(graph *da.Graph, costFunction costfunction.CostFunction, heuristic heuristicFunc) *Search {
	return &Search{
		graph:        graph,
		costFunction: costFunction,
		heuristic:    heuristic,
		info:         make(map[da.Index]*vertexInfo),
		pq:           da.NewFourAryHeap[da.Index](),
	}
}

func (us *Search) GetNumSettledNodes() int {
	return us.numSettledNodes
}

// ShortestPath. returns the edge ids of the shortest path & its cost.
// ErrUnreachable when the frontier runs out, ErrQueryCancelled when ctx is done. never a partial path.
func (us *Search) ShortestPath(ctx context.Context, s, t da.Index) ([]da.Index, float64, error) {
	sNode := da.NewPriorityQueueNode(us.heuristic(s), s)
	us.info[s] = newVertexInfo(0, da.INVALID_EDGE_ID, sNode)
	us.pq.Insert(sNode)

	found := false
	for !us.pq.IsEmpty() {
		if us.numSettledNodes%CANCEL_CHECK_INTERVAL == 0 && util.StopConcurrentOperation(ctx) {
			return nil, 0, fmt.Errorf("%w: %w", ErrQueryCancelled, ctx.Err())
		}

		node, err := us.pq.ExtractMin()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrSearchState, err)
		}
		u := node.GetItem()
		uInfo := us.info[u]
		uInfo.settled = true
		us.numSettledNodes++

		if u == t {
			found = true
			break
		}

		var relaxErr error
		us.graph.ForOutEdgesOf(u, func(e *da.OutEdge, id da.Index) {
			if relaxErr != nil {
				return
			}
			v := e.GetHead()
			newCost := uInfo.cost + us.costFunction.GetWeight(e)

			vInfo, labelled := us.info[v]
			if labelled && (vInfo.settled || newCost >= vInfo.cost) {
				// only strictly better labels, keeps the first path found among equal ones
				return
			}

			rank := newCost + us.heuristic(v)
			if labelled {
				if err := us.pq.DecreaseKey(vInfo.heapNode, rank); err != nil {
					relaxErr = fmt.Errorf("%w: vertex %d: %w", ErrSearchState, v, err)
					return
				}
				vInfo.update(newCost, id)
				return
			}
			vNode := da.NewPriorityQueueNode(rank, v)
			us.info[v] = newVertexInfo(newCost, id, vNode)
			us.pq.Insert(vNode)
		})
		if relaxErr != nil {
			return nil, 0, relaxErr
		}
	}

	if !found {
		return nil, 0, ErrUnreachable
	}

	path := make([]da.Index, 0)
	for cur := t; cur != s; {
		edgeId := us.info[cur].parentEdge
		path = append(path, edgeId)
		cur = us.graph.GetTailOfOutedge(edgeId)
	}
	return util.ReverseInPlace(path), us.info[t].cost, nil
}
