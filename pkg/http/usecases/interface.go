package usecases

import (
	"context"

	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/engine/routing"
	"github.com/lintang-b-s/osmrouter/pkg/spatialindex"
)

type RoutingEngine interface {
	GetGraph() *datastructure.Graph
	ShortestPath(ctx context.Context, s, t datastructure.Index, algorithm routing.Algorithm,
		metric string) (*routing.Route, error)
}

type SpatialIndex interface {
	NearestVertex(lat, lon, radius float64) (spatialindex.NearbyVertex, bool)
}
