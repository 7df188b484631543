package osmparser

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lintang-b-s/osmrouter/pkg"
	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported or unreadable map file")
	ErrUnclassifiedWay   = errors.New("road class missing from speed table")
)

type Format int

const (
	FORMAT_UNKNOWN Format = iota
	FORMAT_PBF
	FORMAT_XML
)

func (f Format) String() string {
	switch f {
	case FORMAT_PBF:
		return "pbf"
	case FORMAT_XML:
		return "osm-xml"
	default:
		return "unknown"
	}
}

type NodeType uint8

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

// Edge. directed segment produced by the scan, before the edges are grouped by tail.
type Edge struct {
	from     uint32
	to       uint32
	weight   float64 // second
	distance float64 // meter
	edgeID   uint32  // index into graphStorage edge info
	hwType   pkg.OsmHighwayType
}

func (e *Edge) GetFrom() datastructure.Index {
	return datastructure.Index(e.from)
}

func (e *Edge) GetTo() datastructure.Index {
	return datastructure.Index(e.to)
}

func (e *Edge) GetWeight() float64 {
	return e.weight
}

func (e *Edge) GetDistance() float64 {
	return e.distance
}

func NewEdge(from, to uint32, weight, distance float64, edgeID uint32, hwType pkg.OsmHighwayType) Edge {
	return Edge{
		from:     from,
		to:       to,
		weight:   weight,
		distance: distance,
		edgeID:   edgeID,
		hwType:   hwType,
	}
}

type node struct {
	id    int64
	coord NodeCoord
}

type NodeCoord struct {
	lat float64
	lon float64
}

func NewNodeCoord(lat, lon float64) NodeCoord {
	return NodeCoord{lat, lon}
}

// ImportStats. counters reported at the end of an import and written to the metadata sidecar.
type ImportStats struct {
	WaysAccepted     int
	WaysUnclassified int
	WaysSkipped      int
	NodesDropped     int
	BarriersSplit    int
	UnknownClasses   map[string]int
}

func (s ImportStats) ToMetadata() datastructure.ImportMetadata {
	return datastructure.ImportMetadata{
		WaysAccepted:     s.WaysAccepted,
		WaysUnclassified: s.WaysUnclassified,
		NodesDropped:     s.NodesDropped,
		BarriersSplit:    s.BarriersSplit,
	}
}

type wayExtraInfo struct {
	oneWay  bool
	forward bool
}

var (
	// highway values that are not roads for cars. dropped without a warning.
	skipHighway = map[string]struct{}{
		"footway":                {},
		"construction":           {},
		"cycleway":               {},
		"path":                   {},
		"pedestrian":             {},
		"busway":                 {},
		"steps":                  {},
		"bridleway":              {},
		"corridor":               {},
		"street_lamp":            {},
		"bus_stop":               {},
		"crossing":               {},
		"cyclist_waiting_aid":    {},
		"elevator":               {},
		"emergency_bay":          {},
		"emergency_access_point": {},
		"give_way":               {},
		"phone":                  {},
		"ladder":                 {},
		"milestone":              {},
		"passing_place":          {},
		"platform":               {},
		"speed_camera":           {},
		"bus_guideway":           {},
		"speed_display":          {},
		"stop":                   {},
		"toll_gantry":            {},
		"traffic_mirror":         {},
		"traffic_signals":        {},
		"trailhead":              {},
		"proposed":               {},
		"abandoned":              {},
		"razed":                  {},
		"disused":                {},
		"raceway":                {},
		"escape":                 {},
		"rest_area":              {},
		"services":               {},
	}

	//https://wiki.openstreetmap.org/wiki/Key:barrier
	// for splitting street segment to 2 disconnected graph edge
	// if the access tag of the barrier node is != "no" , we dont split the segment
	acceptedBarrierType = map[string]struct{}{
		"bollard":        {},
		"swing_gate":     {},
		"jersey_barrier": {},
		"lift_gate":      {},
		"block":          {},
		"gate":           {},
	}
)

// segmentKey. directed segment identified by its full osm node path, so parallel roads between the same two junctions stay distinct.
type segmentKey struct {
	from, to datastructure.Index
	path     string
}

type segmentSet map[segmentKey]struct{}

func newSegmentKey(from, to datastructure.Index, segment []node, reversed bool) segmentKey {
	var sb strings.Builder
	for i := range segment {
		j := i
		if reversed {
			j = len(segment) - 1 - i
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(segment[j].id, 10))
	}
	return segmentKey{from: from, to: to, path: sb.String()}
}
