package routing

import (
	da "github.com/lintang-b-s/osmrouter/pkg/datastructure"
)

// Route. result of one query. shared through the route cache, so never modified after creation.
type Route struct {
	source, target  da.Index
	edges           []da.Index
	cost            float64
	dist            float64 // meter
	travelTime      float64 // second
	coords          []da.Coordinate
	algorithm       Algorithm
	metric          string
	numSettledNodes int
}

func (r *Route) GetSource() da.Index {
	return r.source
}

func (r *Route) GetTarget() da.Index {
	return r.target
}

// GetEdges. edge ids from source to target, must not be modified.
func (r *Route) GetEdges() []da.Index {
	return r.edges
}

func (r *Route) GetCost() float64 {
	return r.cost
}

func (r *Route) GetDistance() float64 {
	return r.dist
}

func (r *Route) GetTravelTime() float64 {
	return r.travelTime
}

// GetCoordinates. concatenated edge geometry, must not be modified.
func (r *Route) GetCoordinates() []da.Coordinate {
	return r.coords
}

func (r *Route) GetAlgorithm() Algorithm {
	return r.algorithm
}

func (r *Route) GetMetric() string {
	return r.metric
}

func (r *Route) GetNumSettledNodes() int {
	return r.numSettledNodes
}

func (re *RoutingEngine) buildRoute(s, t da.Index, edges []da.Index, cost float64) *Route {
	route := &Route{
		source: s,
		target: t,
		edges:  edges,
		cost:   cost,
		coords: make([]da.Coordinate, 0),
	}

	if len(edges) == 0 {
		lat, lon := re.graph.GetVertexCoordinates(s)
		route.coords = append(route.coords, da.NewCoordinate(lat, lon))
		return route
	}

	for i, edgeId := range edges {
		e := re.graph.GetOutEdge(edgeId)
		route.dist += e.GetLength()
		route.travelTime += e.GetWeight()

		geometry := re.graph.GetEdgeGeometry(edgeId)
		if i > 0 && len(geometry) > 0 {
			// first point equals the last point of the previous edge
			geometry = geometry[1:]
		}
		route.coords = append(route.coords, geometry...)
	}
	return route
}
