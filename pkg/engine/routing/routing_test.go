package routing

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/lintang-b-s/osmrouter/pkg"
	"github.com/lintang-b-s/osmrouter/pkg/costfunction"
	da "github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/geo"
	"github.com/lintang-b-s/osmrouter/pkg/osmparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type testArc struct {
	from, to uint32
	weight   float64 // second
	dist     float64 // meter, 0 means straight line length
}

func buildGraph(t *testing.T, coords [][2]float64, arcs []testArc) *da.Graph {
	t.Helper()
	p := osmparser.NewOSMParser(zap.NewNop(), osmparser.DefaultConfig())
	accepted := make(map[int64]osmparser.NodeCoord)
	toOsm := make(map[da.Index]int64)
	for i, c := range coords {
		accepted[int64(i+1)] = osmparser.NewNodeCoord(c[0], c[1])
		toOsm[da.Index(i)] = int64(i + 1)
	}
	p.SetAcceptedNodeMap(accepted)
	p.SetNodeToOsmId(toOsm)

	edges := make([]osmparser.Edge, len(arcs))
	for i, a := range arcs {
		dist := a.dist
		if dist == 0 {
			dist = geo.HaversineMeters(coords[a.from][0], coords[a.from][1], coords[a.to][0], coords[a.to][1])
		}
		edges[i] = osmparser.NewEdge(a.from, a.to, a.weight, dist, 0, pkg.RESIDENTIAL)
	}
	g := p.BuildGraph(edges, da.NewGraphStorage(), uint32(len(coords)))
	require.NoError(t, g.Validate())
	return g
}

func bidirectional(arcs ...testArc) []testArc {
	out := make([]testArc, 0, 2*len(arcs))
	for _, a := range arcs {
		out = append(out, a, testArc{from: a.to, to: a.from, weight: a.weight, dist: a.dist})
	}
	return out
}

func unitSquare(t *testing.T) *da.Graph {
	//  1 --- 2
	//  |     |
	//  0 --- 3
	return buildGraph(t, [][2]float64{{0, 0}, {0.001, 0}, {0.001, 0.001}, {0, 0.001}},
		bidirectional(
			testArc{from: 0, to: 1, weight: 1},
			testArc{from: 1, to: 2, weight: 1},
			testArc{from: 2, to: 3, weight: 1},
			testArc{from: 3, to: 0, weight: 1},
		))
}

func newTestEngine(g *da.Graph, cacheSize int) *RoutingEngine {
	cache, _ := NewRouteCache(cacheSize)
	return NewRoutingEngine(g, zap.NewNop(), cache)
}

func TestUnitSquareOppositeCorners(t *testing.T) {
	re := newTestEngine(unitSquare(t), 0)

	for _, algo := range []Algorithm{DIJKSTRA, ASTAR} {
		t.Run(string(algo), func(t *testing.T) {
			route, err := re.ShortestPath(context.Background(), 0, 2, algo, costfunction.METRIC_TIME)
			require.NoError(t, err)
			assert.Len(t, route.GetEdges(), 2)
			assert.InDelta(t, 2.0, route.GetCost(), 1e-9)
			assert.InDelta(t, 2.0, route.GetTravelTime(), 1e-9)

			coords := route.GetCoordinates()
			require.Len(t, coords, 3)
			assert.Equal(t, da.NewCoordinate(0, 0), coords[0])
			assert.Equal(t, da.NewCoordinate(0.001, 0.001), coords[2])

			// consecutive edges share their joint vertex
			edges := route.GetEdges()
			g := re.GetGraph()
			assert.Equal(t, da.Index(0), g.GetOutEdge(edges[0]).GetTail())
			assert.Equal(t, g.GetOutEdge(edges[0]).GetHead(), g.GetOutEdge(edges[1]).GetTail())
			assert.Equal(t, da.Index(2), g.GetOutEdge(edges[1]).GetHead())
		})
	}
}

func TestSameSourceAndTarget(t *testing.T) {
	re := newTestEngine(unitSquare(t), 0)
	route, err := re.ShortestPath(context.Background(), 3, 3, ASTAR, costfunction.METRIC_DISTANCE)
	require.NoError(t, err)
	assert.Empty(t, route.GetEdges())
	assert.Zero(t, route.GetCost())
	assert.Len(t, route.GetCoordinates(), 1)
}

func TestEqualCostTiesFollowInsertionOrder(t *testing.T) {
	// two paths of cost 2: 0-1-3 and 0-2-3
	g := buildGraph(t, [][2]float64{{0, 0}, {0.001, 0}, {-0.001, 0}, {0, 0.001}}, []testArc{
		{from: 0, to: 1, weight: 1},
		{from: 0, to: 2, weight: 1},
		{from: 1, to: 3, weight: 1},
		{from: 2, to: 3, weight: 1},
	})
	re := newTestEngine(g, 0)

	for i := 0; i < 10; i++ {
		route, err := re.ShortestPath(context.Background(), 0, 3, DIJKSTRA, costfunction.METRIC_TIME)
		require.NoError(t, err)
		require.Len(t, route.GetEdges(), 2)
		assert.Equal(t, da.Index(1), g.GetOutEdge(route.GetEdges()[0]).GetHead())
	}
}

func TestUnreachable(t *testing.T) {
	// 0 <-> 1 -> 2 <-> 3     4 <-> 5
	g := buildGraph(t, [][2]float64{{0, 0}, {0, 0.001}, {0, 0.002}, {0, 0.003}, {1, 1}, {1, 1.001}}, []testArc{
		{from: 0, to: 1, weight: 1}, {from: 1, to: 0, weight: 1},
		{from: 1, to: 2, weight: 1},
		{from: 2, to: 3, weight: 1}, {from: 3, to: 2, weight: 1},
		{from: 4, to: 5, weight: 1}, {from: 5, to: 4, weight: 1},
	})
	re := newTestEngine(g, 0)

	testCases := []struct {
		name   string
		s, t   da.Index
		reachs bool
	}{
		{name: "along the one way", s: 0, t: 3, reachs: true},
		{name: "against the one way", s: 3, t: 0},
		{name: "other component", s: 0, t: 5},
	}

	for _, tt := range testCases {
		for _, algo := range []Algorithm{DIJKSTRA, ASTAR} {
			t.Run(tt.name+"/"+string(algo), func(t *testing.T) {
				route, err := re.ShortestPath(context.Background(), tt.s, tt.t, algo, costfunction.METRIC_TIME)
				if tt.reachs {
					require.NoError(t, err)
					assert.InDelta(t, 3.0, route.GetCost(), 1e-9)
					return
				}
				assert.ErrorIs(t, err, ErrUnreachable)
				assert.Nil(t, route)
			})
		}
	}

	// without component ids the search itself exhausts the frontier
	cf := costfunction.NewTimeCostFunction(g.GetMaxSpeed())
	edges, _, err := NewDijkstra(g, cf).ShortestPath(context.Background(), 3, 0)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Nil(t, edges)
}

func TestCancelledQueryReturnsNoRoute(t *testing.T) {
	re := newTestEngine(unitSquare(t), 16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	route, err := re.ShortestPath(ctx, 0, 2, ASTAR, costfunction.METRIC_TIME)
	assert.ErrorIs(t, err, ErrQueryCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, route)

	cf := costfunction.NewDistanceCostFunction()
	edges, _, err := NewDijkstra(re.GetGraph(), cf).ShortestPath(ctx, 0, 2)
	assert.ErrorIs(t, err, ErrQueryCancelled)
	assert.Nil(t, edges)
}

func TestCorruptHeapStateFailsQuery(t *testing.T) {
	g := unitSquare(t)
	search := NewDijkstra(g, costfunction.NewDistanceCostFunction())

	// label for vertex 1 whose heap node was never inserted, a decrease on it must not pass silently
	search.info[1] = newVertexInfo(math.MaxFloat64, da.INVALID_EDGE_ID, da.NewPriorityQueueNode(math.MaxFloat64, da.Index(1)))

	edges, cost, err := search.ShortestPath(context.Background(), 0, 2)
	assert.ErrorIs(t, err, ErrSearchState)
	assert.ErrorIs(t, err, da.ErrInvalidDecrease)
	assert.Nil(t, edges)
	assert.Zero(t, cost)
}

func TestInvalidQuery(t *testing.T) {
	re := newTestEngine(unitSquare(t), 0)

	_, err := re.ShortestPath(context.Background(), 0, 99, ASTAR, costfunction.METRIC_TIME)
	assert.ErrorIs(t, err, ErrInvalidVertex)
	_, err = re.ShortestPath(context.Background(), 0, 2, ASTAR, "fuel")
	assert.ErrorIs(t, err, ErrUnknownMetric)
	_, err = re.ShortestPath(context.Background(), 0, 2, Algorithm("bfs"), costfunction.METRIC_TIME)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = ParseAlgorithm("bfs")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	algo, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, ASTAR, algo)
}

func TestRouteCache(t *testing.T) {
	re := newTestEngine(unitSquare(t), 16)

	first, err := re.ShortestPath(context.Background(), 0, 2, ASTAR, costfunction.METRIC_TIME)
	require.NoError(t, err)
	second, err := re.ShortestPath(context.Background(), 0, 2, ASTAR, costfunction.METRIC_TIME)
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := re.ShortestPath(context.Background(), 0, 2, ASTAR, costfunction.METRIC_DISTANCE)
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, costfunction.METRIC_DISTANCE, other.GetMetric())
}

// bellmanFord. reference single source shortest path costs
func bellmanFord(g *da.Graph, cf costfunction.CostFunction, s da.Index) []float64 {
	n := g.NumberOfVertices()
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[s] = 0
	for i := 0; i < n-1; i++ {
		for _, e := range g.GetOutEdges() {
			if nd := dist[e.GetTail()] + cf.GetWeight(e); nd < dist[e.GetHead()] {
				dist[e.GetHead()] = nd
			}
		}
	}
	return dist
}

func randomGraph(t *testing.T, rng *rand.Rand, n, m int) *da.Graph {
	coords := make([][2]float64, n)
	for i := range coords {
		coords[i] = [2]float64{-7.75 + rng.Float64()*0.02, 110.36 + rng.Float64()*0.02}
	}
	arcs := make([]testArc, 0, m)
	for len(arcs) < m {
		u, v := uint32(rng.Intn(n)), uint32(rng.Intn(n))
		if u == v {
			continue
		}
		straight := geo.HaversineMeters(coords[u][0], coords[u][1], coords[v][0], coords[v][1])
		dist := straight * (1 + rng.Float64())
		speed := 5 + rng.Float64()*25 // m/s
		arcs = append(arcs, testArc{from: u, to: v, weight: dist / speed, dist: dist})
	}
	return buildGraph(t, coords, arcs)
}

func TestShortestPathMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 5; round++ {
		g := randomGraph(t, rng, 12, 40)
		re := newTestEngine(g, 0)
		n := da.Index(g.NumberOfVertices())

		for _, metric := range []string{costfunction.METRIC_TIME, costfunction.METRIC_DISTANCE} {
			cf, _ := costfunction.NewCostFunction(metric, g.GetMaxSpeed())
			for s := da.Index(0); s < n; s++ {
				want := bellmanFord(g, cf, s)
				for target := da.Index(0); target < n; target++ {
					for _, algo := range []Algorithm{DIJKSTRA, ASTAR} {
						route, err := re.ShortestPath(context.Background(), s, target, algo, metric)
						if math.IsInf(want[target], 1) {
							assert.ErrorIs(t, err, ErrUnreachable, "%d -> %d", s, target)
							continue
						}
						require.NoError(t, err, "%d -> %d", s, target)
						assert.InDelta(t, want[target], route.GetCost(), 1e-6, "%s %s %d -> %d", algo, metric, s, target)

						sum := 0.0
						for _, e := range route.GetEdges() {
							sum += cf.GetWeight(g.GetOutEdge(e))
						}
						assert.InDelta(t, route.GetCost(), sum, 1e-6)
					}
				}
			}
		}
	}
}

func TestConcurrentIdenticalQueries(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := randomGraph(t, rng, 40, 200)
	re := newTestEngine(g, 0)

	want, wantErr := re.ShortestPath(context.Background(), 0, 39, ASTAR, costfunction.METRIC_TIME)

	var eg errgroup.Group
	results := make([]*Route, 32)
	errs := make([]error, 32)
	for i := range results {
		eg.Go(func() error {
			results[i], errs[i] = re.ShortestPath(context.Background(), 0, 39, ASTAR, costfunction.METRIC_TIME)
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	for i := range results {
		if wantErr != nil {
			assert.ErrorIs(t, errs[i], ErrUnreachable)
			continue
		}
		require.NoError(t, errs[i])
		assert.Equal(t, want.GetEdges(), results[i].GetEdges())
		assert.Equal(t, want.GetCost(), results[i].GetCost())
		assert.Equal(t, want.GetCoordinates(), results[i].GetCoordinates())
	}
}
