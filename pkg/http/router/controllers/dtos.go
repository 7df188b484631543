package controllers

import (
	"time"

	"github.com/lintang-b-s/osmrouter/pkg/guidance"
	"github.com/lintang-b-s/osmrouter/pkg/http/usecases"
	"github.com/lintang-b-s/osmrouter/pkg/spatialindex"
	"github.com/lintang-b-s/osmrouter/pkg/util"
	"github.com/paulmach/orb/geojson"
)

type shortestPathRequest struct {
	OriginLat      *float64 `json:"origin_lat" validate:"required,min=-90,max=90"`
	OriginLon      *float64 `json:"origin_lon" validate:"required,min=-180,max=180"`
	DestinationLat *float64 `json:"destination_lat" validate:"required,min=-90,max=90"`
	DestinationLon *float64 `json:"destination_lon" validate:"required,min=-180,max=180"`
	Algorithm      string   `json:"algorithm" validate:"omitempty,oneof=dijkstra astar"`
	Metric         string   `json:"metric" validate:"omitempty,oneof=time distance"`
}

func (r shortestPathRequest) toQuery() usecases.RouteQuery {
	return usecases.RouteQuery{
		OriginLat:      *r.OriginLat,
		OriginLon:      *r.OriginLon,
		DestinationLat: *r.DestinationLat,
		DestinationLon: *r.DestinationLon,
		Algorithm:      r.Algorithm,
		Metric:         r.Metric,
	}
}

type nearestNodeRequest struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon *float64 `json:"lon" validate:"required,min=-180,max=180"`
}

type snappedNode struct {
	ID       uint32  `json:"id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Distance float64 `json:"distance"`
}

func newSnappedNode(v spatialindex.NearbyVertex) snappedNode {
	return snappedNode{
		ID:       uint32(v.GetID()),
		Lat:      v.GetLat(),
		Lon:      v.GetLon(),
		Distance: v.GetDistance(),
	}
}

type drivingDirection struct {
	Instruction string  `json:"instruction"`
	TurnType    string  `json:"turn_type"`
	StreetName  string  `json:"street_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Distance    float64 `json:"distance"`
	TravelTime  float64 `json:"travel_time"`
	Polyline    string  `json:"polyline"`
	TurnBearing float64 `json:"turn_bearing"`
	ExitNumber  int     `json:"exit_number,omitempty"`
}

func NewDrivingDirections(directions []guidance.DrivingDirection) []drivingDirection {
	out := make([]drivingDirection, len(directions))
	for i, d := range directions {
		out[i] = drivingDirection{
			Instruction: d.GetInstruction(),
			TurnType:    d.GetTurnSign().String(),
			StreetName:  d.GetStreetName(),
			Lat:         d.GetPoint().GetLat(),
			Lon:         d.GetPoint().GetLon(),
			Distance:    util.RoundFloat(d.GetDistance(), 2),
			TravelTime:  util.RoundFloat(d.GetTravelTime(), 2),
			Polyline:    d.GetPolyline(),
			TurnBearing: d.GetTurnBearing(),
			ExitNumber:  d.GetExitNumber(),
		}
	}
	return out
}

type shortestPathResponse struct {
	Eta        float64            `json:"eta"`
	Path       string             `json:"path"`
	Dist       float64            `json:"distance"`
	Cost       float64            `json:"cost"`
	Algorithm  string             `json:"algorithm"`
	Metric     string             `json:"metric"`
	Origin     snappedNode        `json:"origin"`
	Target     snappedNode        `json:"destination"`
	GeoJSON    *geojson.Feature   `json:"geojson"`
	Directions []drivingDirection `json:"driving_directions"`
}

func NewShortestPathResponse(res *usecases.RouteResult) shortestPathResponse {
	return shortestPathResponse{
		Eta:        res.Route.GetTravelTime(),
		Path:       res.Polyline,
		Dist:       res.Route.GetDistance(),
		Cost:       res.Route.GetCost(),
		Algorithm:  string(res.Route.GetAlgorithm()),
		Metric:     res.Route.GetMetric(),
		Origin:     newSnappedNode(res.Origin),
		Target:     newSnappedNode(res.Target),
		GeoJSON:    res.GeoJSON,
		Directions: NewDrivingDirections(res.Directions),
	}
}

type boundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

type graphMetadata struct {
	Source      string    `json:"source"`
	SourceHash  string    `json:"source_sha256"`
	GeneratedAt time.Time `json:"generated_at"`
}

type graphSummaryResponse struct {
	FormatVersion int            `json:"format_version"`
	Vertices      int            `json:"vertices"`
	Edges         int            `json:"edges"`
	SCCs          int            `json:"sccs"`
	MaxSpeedKmh   float64        `json:"max_speed_kmh"`
	BoundingBox   boundingBox    `json:"bounding_box"`
	Metadata      *graphMetadata `json:"metadata,omitempty"`
}

func NewGraphSummaryResponse(s usecases.GraphSummary) graphSummaryResponse {
	resp := graphSummaryResponse{
		FormatVersion: s.FormatVersion,
		Vertices:      s.Vertices,
		Edges:         s.Edges,
		SCCs:          s.SCCs,
		MaxSpeedKmh:   s.MaxSpeedKmh,
		BoundingBox: boundingBox{
			MinLat: s.BoundingBox.GetMinLat(),
			MinLon: s.BoundingBox.GetMinLon(),
			MaxLat: s.BoundingBox.GetMaxLat(),
			MaxLon: s.BoundingBox.GetMaxLon(),
		},
	}
	if s.Metadata != nil {
		resp.Metadata = &graphMetadata{
			Source:      s.Metadata.Source.Filename,
			SourceHash:  s.Metadata.Source.SHA256,
			GeneratedAt: s.Metadata.CreatedAt,
		}
	}
	return resp
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
