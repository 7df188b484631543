package controllers

import (
	"context"

	"github.com/lintang-b-s/osmrouter/pkg/http/usecases"
	"github.com/lintang-b-s/osmrouter/pkg/spatialindex"
)

type RoutingService interface {
	ShortestPath(ctx context.Context, q usecases.RouteQuery) (*usecases.RouteResult, error)
	NearestNode(lat, lon float64) (spatialindex.NearbyVertex, error)
	GraphSummary() usecases.GraphSummary
}
