package usecases

import (
	"github.com/lintang-b-s/osmrouter/pkg/spatialindex"
	"github.com/lintang-b-s/osmrouter/pkg/util"
)

// snapOrigDest. nearest vertex within the snap radius for origin & destination.
func (rs *RoutingService) snapOrigDest(q RouteQuery) (spatialindex.NearbyVertex, spatialindex.NearbyVertex, error) {
	origin, ok := rs.spatialIndex.NearestVertex(q.OriginLat, q.OriginLon, rs.cfg.SnapRadius)
	if !ok {
		return origin, origin, util.WrapErrorf(ErrNoNearbyRoad, util.ErrNotFound,
			"no road within %.0f m of origin %f,%f", rs.cfg.SnapRadius, q.OriginLat, q.OriginLon)
	}

	target, ok := rs.spatialIndex.NearestVertex(q.DestinationLat, q.DestinationLon, rs.cfg.SnapRadius)
	if !ok {
		return origin, target, util.WrapErrorf(ErrNoNearbyRoad, util.ErrNotFound,
			"no road within %.0f m of destination %f,%f", rs.cfg.SnapRadius, q.DestinationLat, q.DestinationLon)
	}
	return origin, target, nil
}
