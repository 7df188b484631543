package routing

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/osmrouter/pkg/costfunction"
	da "github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"go.uber.org/zap"
)

type routeCacheKey struct {
	s, t      da.Index
	algorithm Algorithm
	metric    string
}

// RoutingEngine. answers point to point queries over a shared read-only graph, safe for concurrent use.
type RoutingEngine struct {
	graph      *da.Graph
	logger     *zap.Logger
	routeCache *lru.Cache[routeCacheKey, *Route]
}

// NewRoutingEngine. routeCache may be nil to disable caching.
func NewRoutingEngine(graph *da.Graph, logger *zap.Logger, routeCache *lru.Cache[routeCacheKey, *Route]) *RoutingEngine {
	return &RoutingEngine{
		graph:      graph,
		logger:     logger,
		routeCache: routeCache,
	}
}

// NewRouteCache. size <= 0 disables the cache.
func NewRouteCache(size int) (*lru.Cache[routeCacheKey, *Route], error) {
	if size <= 0 {
		return nil, nil
	}
	return lru.New[routeCacheKey, *Route](size)
}

func (re *RoutingEngine) GetGraph() *da.Graph {
	return re.graph
}

// ShortestPath. lowest cost route from s to t under the given metric.
func (re *RoutingEngine) ShortestPath(ctx context.Context, s, t da.Index, algorithm Algorithm,
	metric string) (*Route, error) {
	n := da.Index(re.graph.NumberOfVertices())
	if s >= n || t >= n {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidVertex, s, t)
	}
	costFunction, ok := costfunction.NewCostFunction(metric, re.graph.GetMaxSpeed())
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryCancelled, ctx.Err())
	}

	key := routeCacheKey{s: s, t: t, algorithm: algorithm, metric: costFunction.Name()}
	if re.routeCache != nil {
		if route, ok := re.routeCache.Get(key); ok {
			return route, nil
		}
	}

	if !re.VerticeUandVAreConnected(s, t) {
		return nil, ErrUnreachable
	}

	var search *Search
	switch algorithm {
	case DIJKSTRA:
		search = NewDijkstra(re.graph, costFunction)
	case ASTAR:
		search = NewAStar(re.graph, costFunction, t)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}

	edges, cost, err := search.ShortestPath(ctx, s, t)
	if err != nil {
		return nil, err
	}

	route := re.buildRoute(s, t, edges, cost)
	route.algorithm = algorithm
	route.metric = costFunction.Name()
	route.numSettledNodes = search.GetNumSettledNodes()

	re.logger.Debug("route computed",
		zap.Uint32("source", uint32(s)),
		zap.Uint32("target", uint32(t)),
		zap.String("algorithm", string(algorithm)),
		zap.String("metric", route.metric),
		zap.Int("settled_nodes", route.numSettledNodes),
		zap.Float64("cost", cost))

	if re.routeCache != nil {
		re.routeCache.Add(key, route)
	}
	return route, nil
}
