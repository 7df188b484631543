package spatialindex

import (
	"sort"

	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/geo"
	"github.com/lintang-b-s/osmrouter/pkg/util"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// Rtree. r-tree over graph vertex coordinates, read-only after Build.
type Rtree struct {
	tr *rtree.RTreeG[datastructure.Index]
}

type NearbyVertex struct {
	id   datastructure.Index
	dist float64 // meter
	lat  float64
	lon  float64
}

func (n NearbyVertex) GetID() datastructure.Index {
	return n.id
}

func (n NearbyVertex) GetDistance() float64 {
	return n.dist
}

func (n NearbyVertex) GetLat() float64 {
	return n.lat
}

func (n NearbyVertex) GetLon() float64 {
	return n.lon
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[datastructure.Index]
	return &Rtree{
		tr: &tr,
	}
}

// Build. one point entry per vertex
func (rt *Rtree) Build(graph *datastructure.Graph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")
	indexed := 0
	for v := 0; v < graph.NumberOfVertices(); v++ {
		u := datastructure.Index(v)
		lat, lon := graph.GetVertexCoordinates(u)
		rt.tr.Insert([2]float64{lon, lat}, [2]float64{lon, lat}, u)
		indexed++
	}
	log.Info("R-tree spatial index built.", zap.Int("indexed_vertices", indexed))
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// SearchWithinRadius. all indexed vertices within radius (meter) from (qLat, qLon), nearest first,
// equal distances ordered by vertex id.
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []NearbyVertex {
	maxLat, _ := geo.DestinationPoint(qLat, qLon, 0, radius)
	_, maxLon := geo.DestinationPoint(qLat, qLon, 90, radius)
	minLat, _ := geo.DestinationPoint(qLat, qLon, 180, radius)
	_, minLon := geo.DestinationPoint(qLat, qLon, 270, radius)

	results := make([]NearbyVertex, 0, 10)
	rt.tr.Search([2]float64{util.MinG(minLon, maxLon), minLat}, [2]float64{util.MaxG(minLon, maxLon), maxLat},
		func(min, max [2]float64, data datastructure.Index) bool {
			dist := geo.HaversineMeters(qLat, qLon, min[1], min[0])
			if dist <= radius {
				results = append(results, NearbyVertex{id: data, dist: dist, lat: min[1], lon: min[0]})
			}
			return true
		})

	sortNearby(results)
	return results
}

// NearestVertex. nearest indexed vertex within radius (meter). false when there is none.
func (rt *Rtree) NearestVertex(qLat, qLon, radius float64) (NearbyVertex, bool) {
	candidates := rt.SearchWithinRadius(qLat, qLon, radius)
	if len(candidates) == 0 {
		return NearbyVertex{}, false
	}
	return candidates[0], true
}

func sortNearby(results []NearbyVertex) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].dist != results[j].dist {
			return results[i].dist < results[j].dist
		}
		return results[i].id < results[j].id
	})
}
