package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/lintang-b-s/osmrouter/pkg"
	"github.com/lintang-b-s/osmrouter/pkg/costfunction"
	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/engine/routing"
	"github.com/lintang-b-s/osmrouter/pkg/geo"
	"github.com/lintang-b-s/osmrouter/pkg/guidance"
	"github.com/lintang-b-s/osmrouter/pkg/spatialindex"
	"github.com/lintang-b-s/osmrouter/pkg/util"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

var ErrNoNearbyRoad = errors.New("no road near coordinate")

type Config struct {
	SnapRadius   float64 // meter
	QueryTimeout time.Duration
}

type RouteQuery struct {
	OriginLat, OriginLon           float64
	DestinationLat, DestinationLon float64
	Algorithm                      string
	Metric                         string
}

type RouteResult struct {
	Route      *routing.Route
	Origin     spatialindex.NearbyVertex
	Target     spatialindex.NearbyVertex
	Polyline   string
	GeoJSON    *geojson.Feature
	Directions []guidance.DrivingDirection
}

type GraphSummary struct {
	FormatVersion int
	Vertices      int
	Edges         int
	SCCs          int
	BoundingBox   *datastructure.BoundingBox
	MaxSpeedKmh   float64
	Metadata      *datastructure.GraphMetadata
}

type RoutingService struct {
	log          *zap.Logger
	engine       RoutingEngine
	spatialIndex SpatialIndex
	metadata     *datastructure.GraphMetadata
	cfg          Config
	metrics      *RoutingMetrics
}

// NewRoutingService. metadata & metrics may be nil.
func NewRoutingService(log *zap.Logger, engine RoutingEngine, spatialIndex SpatialIndex,
	metadata *datastructure.GraphMetadata, cfg Config, metrics *RoutingMetrics) *RoutingService {
	return &RoutingService{
		log:          log,
		engine:       engine,
		spatialIndex: spatialIndex,
		metadata:     metadata,
		cfg:          cfg,
		metrics:      metrics,
	}
}

func (rs *RoutingService) ShortestPath(ctx context.Context, q RouteQuery) (*RouteResult, error) {
	algorithm, err := routing.ParseAlgorithm(q.Algorithm)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "unknown algorithm %q", q.Algorithm)
	}
	metric := q.Metric
	if metric == "" {
		metric = costfunction.METRIC_TIME
	}

	origin, target, err := rs.snapOrigDest(q)
	if err != nil {
		return nil, err
	}

	if rs.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rs.cfg.QueryTimeout)
		defer cancel()
	}

	start := time.Now()
	route, err := rs.engine.ShortestPath(ctx, origin.GetID(), target.GetID(), algorithm, metric)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		rs.metrics.observe(string(algorithm), metric, outcome(err), 0, elapsed)
		return nil, rs.classify(err, q)
	}
	rs.metrics.observe(string(algorithm), metric, "found", route.GetNumSettledNodes(), elapsed)

	coords := route.GetCoordinates()
	directions := guidance.NewDirectionBuilder(rs.engine.GetGraph()).GetDrivingDirections(route.GetEdges())

	return &RouteResult{
		Route:      route,
		Origin:     origin,
		Target:     target,
		Polyline:   geo.PolylineFromCoords(datastructure.NewGeoCoordinates(coords)),
		GeoJSON:    routeFeature(route, coords),
		Directions: directions,
	}, nil
}

// NearestNode. snapping result for one coordinate.
func (rs *RoutingService) NearestNode(lat, lon float64) (spatialindex.NearbyVertex, error) {
	nearest, ok := rs.spatialIndex.NearestVertex(lat, lon, rs.cfg.SnapRadius)
	if !ok {
		return spatialindex.NearbyVertex{}, util.WrapErrorf(ErrNoNearbyRoad, util.ErrNotFound,
			"no road within %.0f m of %f,%f", rs.cfg.SnapRadius, lat, lon)
	}
	return nearest, nil
}

func (rs *RoutingService) GraphSummary() GraphSummary {
	g := rs.engine.GetGraph()
	return GraphSummary{
		FormatVersion: pkg.GRAPH_FORMAT_VERSION,
		Vertices:      g.NumberOfVertices(),
		Edges:         g.NumberOfEdges(),
		SCCs:          g.NumberOfSCCs(),
		BoundingBox:   g.GetBoundingBox(),
		MaxSpeedKmh:   g.GetMaxSpeed() * 3.6,
		Metadata:      rs.metadata,
	}
}

func (rs *RoutingService) classify(err error, q RouteQuery) error {
	switch {
	case errors.Is(err, routing.ErrUnreachable):
		return util.WrapErrorf(err, util.ErrNotFound, "no path found from %f,%f to %f,%f",
			q.OriginLat, q.OriginLon, q.DestinationLat, q.DestinationLon)
	case errors.Is(err, routing.ErrQueryCancelled):
		return util.WrapErrorf(err, util.ErrTimeout, "route query did not finish in time")
	case errors.Is(err, routing.ErrUnknownMetric), errors.Is(err, routing.ErrUnknownAlgorithm):
		return util.WrapErrorf(err, util.ErrBadParamInput, "invalid route query")
	default:
		rs.log.Error("route query failed", zap.Error(err))
		return util.WrapErrorf(err, util.ErrInternalServerError, "%s", util.MessageInternalServerError)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, routing.ErrUnreachable):
		return "unreachable"
	case errors.Is(err, routing.ErrQueryCancelled):
		return "cancelled"
	default:
		return "error"
	}
}

func routeFeature(route *routing.Route, coords []datastructure.Coordinate) *geojson.Feature {
	var geometry orb.Geometry
	if len(coords) == 1 {
		geometry = orb.Point{coords[0].GetLon(), coords[0].GetLat()}
	} else {
		ls := make(orb.LineString, len(coords))
		for i, c := range coords {
			ls[i] = orb.Point{c.GetLon(), c.GetLat()}
		}
		geometry = ls
	}

	feature := geojson.NewFeature(geometry)
	feature.Properties["distance"] = route.GetDistance()
	feature.Properties["travel_time"] = route.GetTravelTime()
	feature.Properties["cost"] = route.GetCost()
	feature.Properties["metric"] = route.GetMetric()
	feature.Properties["algorithm"] = string(route.GetAlgorithm())
	return feature
}
