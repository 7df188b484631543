package datastructure

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/osmrouter/pkg"
	"github.com/lintang-b-s/osmrouter/pkg/geo"
)

type Index uint32

const (
	INVALID_VERTEX_ID Index = math.MaxUint32
	INVALID_EDGE_ID   Index = math.MaxUint32
)

var (
	ErrInvalidGraph = errors.New("invalid graph")
)

type Vertex struct {
	lat      float64
	lon      float64
	firstOut Index // index of the first outEdge of this vertex in the flattened graph.outEdges array
	id       Index
	osmId    int64
}

func NewVertex(lat, lon float64, id Index) *Vertex {
	return &Vertex{
		lat: lat,
		lon: lon,
		id:  id,
	}
}

func NewVertexComplete(lat, lon float64, id, firstOut Index, osmId int64) *Vertex {
	return &Vertex{
		lat:      lat,
		lon:      lon,
		id:       id,
		firstOut: firstOut,
		osmId:    osmId,
	}
}

func (v *Vertex) SetFirstOut(firstOut Index) {
	v.firstOut = firstOut
}

func (v *Vertex) SetOsmId(osmId int64) {
	v.osmId = osmId
}

func (v *Vertex) GetID() Index {
	return v.id
}

func (v *Vertex) GetLat() float64 {
	return v.lat
}

func (v *Vertex) GetLon() float64 {
	return v.lon
}

func (v *Vertex) GetFirstOut() Index {
	return v.firstOut
}

func (v *Vertex) GetOsmId() int64 {
	return v.osmId
}

// OutEdge. directed road segment tail -> head
type OutEdge struct {
	weight     float64 // second
	dist       float64 // meter
	edgeId     Index
	tail, head Index
	hwType     pkg.OsmHighwayType
}

func NewOutEdge(edgeId, tail, head Index, weight, dist float64, hwType pkg.OsmHighwayType) *OutEdge {
	return &OutEdge{
		edgeId: edgeId,
		tail:   tail,
		head:   head,
		weight: weight,
		dist:   dist,
		hwType: hwType,
	}
}

func (e *OutEdge) GetWeight() float64 {
	return e.weight
}

// GetEdgeSpeed. meter/second
func (e *OutEdge) GetEdgeSpeed() float64 {
	if e.weight == 0 {
		return 0
	}
	return e.dist / e.weight
}

func (e *OutEdge) GetLength() float64 {
	return e.dist
}

func (e *OutEdge) GetHead() Index {
	return e.head
}

func (e *OutEdge) GetTail() Index {
	return e.tail
}

func (e *OutEdge) GetEdgeId() Index {
	return e.edgeId
}

func (e *OutEdge) GetHighwayType() pkg.OsmHighwayType {
	return e.hwType
}

// Graph. static road graph in compressed sparse row layout:
// outEdges[vertices[u].firstOut : vertices[u+1].firstOut] are the outgoing edges of u.
// vertices has one extra sentinel entry. never mutated after construction, safe for concurrent readers.
type Graph struct {
	graphStorage *GraphStorage
	vertices     []*Vertex
	outEdges     []*OutEdge

	// strongly connected components
	sccs               []Index   // verticeId -> sccId
	sccCondensationAdj [][]Index // condensation connection of scc of u -> scc of v

	boundingBox *BoundingBox
	maxSpeed    float64 // fastest edge in the graph, meter/second
}

func NewGraph(vertices []*Vertex, outEdges []*OutEdge, graphStorage *GraphStorage) *Graph {
	g := &Graph{vertices: vertices, outEdges: outEdges, graphStorage: graphStorage}
	g.computeMaxSpeed()
	g.computeBoundingBox()
	return g
}

func (g *Graph) computeMaxSpeed() {
	g.maxSpeed = 0
	for _, e := range g.outEdges {
		if s := e.GetEdgeSpeed(); s > g.maxSpeed {
			g.maxSpeed = s
		}
	}
}

func (g *Graph) computeBoundingBox() {
	bb := newEmptyBoundingBox()
	for _, v := range g.vertices[:g.NumberOfVertices()] {
		bb.extend(v.lat, v.lon)
	}
	if bb.isEmpty() {
		bb = NewBoundingBox(0, 0, 0, 0)
	}
	g.boundingBox = bb
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices) - 1
}

func (g *Graph) NumberOfEdges() int {
	return len(g.outEdges)
}

func (g *Graph) GetOutDegree(u Index) Index {
	return g.vertices[u+1].firstOut - g.vertices[u].firstOut
}

func (g *Graph) GetExitOffset(u Index) Index {
	return g.vertices[u].firstOut
}

func (g *Graph) GetOutEdge(e Index) *OutEdge {
	return g.outEdges[e]
}

func (g *Graph) GetOutEdges() []*OutEdge {
	return g.outEdges
}

func (g *Graph) ForOutEdgesOf(u Index, handle func(e *OutEdge, id Index)) {
	for e := g.vertices[u].firstOut; e < g.vertices[u+1].firstOut; e++ {
		handle(g.outEdges[e], e)
	}
}

// FindOutEdge. cheapest edge u -> v, if any
func (g *Graph) FindOutEdge(u, v Index) (Index, bool) {
	best, found := INVALID_EDGE_ID, false
	for e := g.vertices[u].firstOut; e < g.vertices[u+1].firstOut; e++ {
		if g.outEdges[e].head != v {
			continue
		}
		if !found || g.outEdges[e].weight < g.outEdges[best].weight {
			best, found = e, true
		}
	}
	return best, found
}

func (g *Graph) GetTailOfOutedge(e Index) Index {
	return g.outEdges[e].tail
}

func (g *Graph) GetVertexCoordinates(u Index) (float64, float64) {
	v := g.vertices[u]
	return v.lat, v.lon
}

func (g *Graph) GetVertices() []*Vertex {
	return g.vertices[:g.NumberOfVertices()]
}

func (g *Graph) GetVertex(u Index) *Vertex {
	return g.vertices[u]
}

func (g *Graph) GetMaxSpeed() float64 {
	return g.maxSpeed
}

func (g *Graph) SetSCCs(sccs []Index) {
	g.sccs = sccs
}

func (g *Graph) SetSCCCondensationAdj(adj [][]Index) {
	g.sccCondensationAdj = adj
}

func (g *Graph) GetSCCOfAVertex(u Index) Index {
	return g.sccs[u]
}

func (g *Graph) GetSCCS() []Index {
	return g.sccs
}

func (g *Graph) NumberOfSCCs() int {
	return len(g.sccCondensationAdj)
}

func (g *Graph) SetBoundingBox(bb *BoundingBox) {
	g.boundingBox = bb
}

func (g *Graph) GetBoundingBox() *BoundingBox {
	return g.boundingBox
}

func (g *Graph) GetGraphStorage() *GraphStorage {
	return g.graphStorage
}

// O(V_G + E_G), V_G=number of sccs/number of vertices in condensation graph^scc, E_G=number of edges in condensation graph^scc
func (g *Graph) VerticeUandVAreConnected(u, v Index) bool {
	if len(g.sccs) == 0 {
		// components unknown, let the search decide
		return true
	}
	sccOfU := g.sccs[u]
	sccOfV := g.sccs[v]
	if sccOfU == sccOfV {
		return true
	}

	visited := make([]bool, len(g.sccCondensationAdj))
	stack := []Index{sccOfU}
	visited[sccOfU] = true
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.sccCondensationAdj[c] {
			if next == sccOfV {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// GetHaversineDistanceFromUtoV. straight line meter between two vertices
func (g *Graph) GetHaversineDistanceFromUtoV(u, v Index) float64 {
	uvertex := g.vertices[u]
	vvertex := g.vertices[v]
	return geo.HaversineMeters(uvertex.lat, uvertex.lon, vvertex.lat, vvertex.lon)
}

func (g *Graph) GetStreetName(edgeId Index) string {
	return g.graphStorage.GetStreetName(edgeId)
}

func (g *Graph) GetRoadClass(edgeId Index) string {
	return g.outEdges[edgeId].hwType.String()
}

func (g *Graph) IsRoundabout(edgeId Index) bool {
	return g.graphStorage.IsRoundabout(edgeId)
}

func (g *Graph) GetOsmWayId(edgeId Index) int64 {
	return g.graphStorage.GetEdgeExtraInfo(edgeId).osmWayId
}

// GetEdgeGeometry. polyline of the edge from tail to head
func (g *Graph) GetEdgeGeometry(edgeID Index) []Coordinate {
	return g.graphStorage.GetEdgeGeometry(edgeID)
}

/*
Validate. checks the invariants every consumer of the graph relies on:
referential integrity of every edge, non-negative costs, monotone CSR offsets,
edge grouped under its own tail & geometry endpoints equal to the vertex coordinates.
*/
func (g *Graph) Validate() error {
	n := Index(g.NumberOfVertices())
	m := Index(g.NumberOfEdges())

	if len(g.vertices) == 0 {
		return fmt.Errorf("%w: missing sentinel vertex", ErrInvalidGraph)
	}
	if g.vertices[0].firstOut != 0 || g.vertices[n].firstOut != m {
		return fmt.Errorf("%w: adjacency index does not cover the edge table", ErrInvalidGraph)
	}

	for u := Index(0); u < n; u++ {
		if g.vertices[u].firstOut > g.vertices[u+1].firstOut {
			return fmt.Errorf("%w: adjacency index of vertex %d is not monotone", ErrInvalidGraph, u)
		}
		if g.vertices[u+1].firstOut > m {
			return fmt.Errorf("%w: adjacency index of vertex %d points past the edge table", ErrInvalidGraph, u+1)
		}
	}

	for u := Index(0); u < n; u++ {
		for e := g.vertices[u].firstOut; e < g.vertices[u+1].firstOut; e++ {
			edge := g.outEdges[e]
			if edge.tail != u {
				return fmt.Errorf("%w: edge %d stored under vertex %d but its tail is %d", ErrInvalidGraph, e, u, edge.tail)
			}
		}
	}

	for id, e := range g.outEdges {
		if e.tail >= n || e.head >= n {
			return fmt.Errorf("%w: edge %d references missing vertex (%d -> %d)", ErrInvalidGraph, id, e.tail, e.head)
		}
		if e.weight < 0 || e.dist < 0 || math.IsNaN(e.weight) || math.IsNaN(e.dist) {
			return fmt.Errorf("%w: edge %d has negative cost", ErrInvalidGraph, id)
		}
		if Index(id) != e.edgeId {
			return fmt.Errorf("%w: edge %d carries id %d", ErrInvalidGraph, id, e.edgeId)
		}
		if g.graphStorage == nil {
			continue
		}
		if id >= g.graphStorage.GetMapEdgeInfoCount() {
			return fmt.Errorf("%w: edge %d has no extra info", ErrInvalidGraph, id)
		}
		points := g.GetEdgeGeometry(Index(id))
		if len(points) < 2 {
			return fmt.Errorf("%w: edge %d has no geometry", ErrInvalidGraph, id)
		}
		tail, head := g.vertices[e.tail], g.vertices[e.head]
		if !points[0].SameAs(tail.lat, tail.lon) || !points[len(points)-1].SameAs(head.lat, head.lon) {
			return fmt.Errorf("%w: geometry of edge %d does not start at its tail and end at its head", ErrInvalidGraph, id)
		}
	}

	if len(g.sccs) != 0 && len(g.sccs) != int(n) {
		return fmt.Errorf("%w: %d component ids for %d vertices", ErrInvalidGraph, len(g.sccs), n)
	}
	return nil
}

