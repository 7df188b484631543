package export

import (
	"math"

	"github.com/lintang-b-s/osmrouter/pkg"
	da "github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// Record. one row of the osm2po / pgRouting edge table.
type Record struct {
	ID          int32   `json:"id"`
	OsmID       int64   `json:"osm_id"`
	OsmName     *string `json:"osm_name"`
	Clazz       int32   `json:"clazz"`
	Source      int32   `json:"source"`
	Target      int32   `json:"target"`
	Km          float64 `json:"km"`
	Kmh         int32   `json:"kmh"`
	Cost        float64 `json:"cost"` // hour
	ReverseCost float64 `json:"reverse_cost"`
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	GeomWay     string  `json:"geom_way"`
}

var columns = []string{
	"id", "osm_id", "osm_name", "clazz", "source", "target", "km", "kmh", "cost", "reverse_cost",
	"x1", "y1", "x2", "y2", "geom_way",
}

func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

/*
newRecord. row for edge edgeID, false when the edge is the reverse twin of a lower edge id.
a two way road is one row, reverse_cost holds the cost of the opposite direction.
*/
func newRecord(g *da.Graph, edgeID da.Index) (Record, bool) {
	e := g.GetOutEdge(edgeID)
	rev, hasRev := reverseEdge(g, edgeID, e)
	if hasRev && rev < edgeID {
		return Record{}, false
	}
	tail, head := g.GetVertex(e.GetTail()), g.GetVertex(e.GetHead())

	rec := Record{
		ID:          int32(edgeID),
		OsmID:       g.GetOsmWayId(edgeID),
		Clazz:       int32(e.GetHighwayType()),
		Source:      int32(e.GetTail()),
		Target:      int32(e.GetHead()),
		Km:          e.GetLength() / 1000,
		Kmh:         int32(math.Round(e.GetEdgeSpeed() * 3.6)),
		Cost:        e.GetWeight() / 3600,
		ReverseCost: pkg.PGR_NO_REVERSE_COST,
		X1:          tail.GetLon(),
		Y1:          tail.GetLat(),
		X2:          head.GetLon(),
		Y2:          head.GetLat(),
		GeomWay:     wkt.MarshalString(lineString(g.GetEdgeGeometry(edgeID))),
	}
	if name := g.GetStreetName(edgeID); name != "" {
		rec.OsmName = &name
	}
	if hasRev {
		rec.ReverseCost = g.GetOutEdge(rev).GetWeight() / 3600
	}
	return rec, true
}

// reverseEdge. head -> tail edge walking the same points backwards, i.e. the other direction of the same osm segment.
func reverseEdge(g *da.Graph, edgeID da.Index, e *da.OutEdge) (da.Index, bool) {
	gs := g.GetGraphStorage()
	info := gs.GetEdgeExtraInfo(edgeID)
	var (
		found da.Index
		ok    bool
	)
	g.ForOutEdgesOf(e.GetHead(), func(cand *da.OutEdge, id da.Index) {
		if ok || cand.GetHead() != e.GetTail() {
			return
		}
		ci := gs.GetEdgeExtraInfo(id)
		if ci.GetOsmWayId() == info.GetOsmWayId() &&
			ci.GetStartPointsIndex() == info.GetEndPointsIndex() && ci.GetEndPointsIndex() == info.GetStartPointsIndex() {
			found, ok = id, true
		}
	})
	return found, ok
}

func lineString(coords []da.Coordinate) orb.LineString {
	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = orb.Point{c.GetLon(), c.GetLat()}
	}
	return ls
}
