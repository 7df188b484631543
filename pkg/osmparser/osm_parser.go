package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/k0kubun/go-ansi"
	"github.com/lintang-b-s/osmrouter/pkg"
	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/geo"
	"github.com/lintang-b-s/osmrouter/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

type Config struct {
	SpeedTable              map[string]float64 // km/h per highway class
	UseMaxSpeed             bool               // prefer a parseable maxspeed tag over the table
	SimplifyToleranceMeters float64            // ramer-douglas-peucker tolerance, 0 keeps every point
	ShowProgress            bool
}

func DefaultConfig() Config {
	return Config{
		SpeedTable:              DefaultSpeedTable(),
		SimplifyToleranceMeters: 1.0,
	}
}

type OsmParser struct {
	logger          *zap.Logger
	cfg             Config
	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]NodeCoord
	barrierNodes    map[int64]bool
	copiedNodes     map[int64]int64 // barrier copy id -> osm node id
	tagStringIdMap  util.IDMap
	nodeIDMap       map[int64]datastructure.Index
	nodeToOsmId     map[datastructure.Index]int64
	maxNodeID       int64
	stats           ImportStats
}

func NewOSMParser(logger *zap.Logger, cfg Config) *OsmParser {
	if cfg.SpeedTable == nil {
		cfg.SpeedTable = DefaultSpeedTable()
	}
	p := &OsmParser{logger: logger, cfg: cfg}
	p.reset()
	return p
}

func (p *OsmParser) reset() {
	p.wayNodeMap = make(map[int64]NodeType)
	p.acceptedNodeMap = make(map[int64]NodeCoord)
	p.barrierNodes = make(map[int64]bool)
	p.copiedNodes = make(map[int64]int64)
	p.tagStringIdMap = util.NewIdMap()
	p.nodeIDMap = make(map[int64]datastructure.Index)
	p.nodeToOsmId = make(map[datastructure.Index]int64)
	p.maxNodeID = 0
	p.stats = ImportStats{UnknownClasses: make(map[string]int)}
}

func (p *OsmParser) SetAcceptedNodeMap(acceptedNodeMap map[int64]NodeCoord) {
	p.acceptedNodeMap = acceptedNodeMap
}

func (p *OsmParser) SetNodeToOsmId(nodeToOsmId map[datastructure.Index]int64) {
	p.nodeToOsmId = nodeToOsmId
}

func (p *OsmParser) GetTagStringIdMap() util.IDMap {
	return p.tagStringIdMap
}

func (p *OsmParser) GetStats() ImportStats {
	return p.stats
}

func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pbf":
		return FORMAT_PBF
	case ".osm", ".xml":
		return FORMAT_XML
	default:
		return FORMAT_UNKNOWN
	}
}

func (p *OsmParser) ParseFile(ctx context.Context, mapFile string) (*datastructure.Graph, error) {
	format := DetectFormat(mapFile)
	if format == FORMAT_UNKNOWN {
		return nil, fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, filepath.Ext(mapFile))
	}

	f, err := os.Open(mapFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	return p.Parse(ctx, f, format)
}

func (p *OsmParser) newScanner(ctx context.Context, r io.Reader, format Format) (osm.Scanner, error) {
	switch format {
	case FORMAT_PBF:
		return osmpbf.New(ctx, r, runtime.GOMAXPROCS(0)), nil
	case FORMAT_XML:
		return osmxml.New(ctx, r), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func (p *OsmParser) newProgressBar(size int64, description string) *progressbar.ProgressBar {
	var w io.Writer = io.Discard
	if p.cfg.ShowProgress {
		w = ansi.NewAnsiStdout()
	}
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// scan. one pass over the whole extract, handle is called for every osm object in file order.
func (p *OsmParser) scan(ctx context.Context, r io.ReadSeeker, format Format, description string,
	handle func(o osm.Object)) (int, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	bar := p.newProgressBar(size, description)
	defer bar.Finish()

	scanner, err := p.newScanner(ctx, io.TeeReader(r, bar), format)
	if err != nil {
		return 0, err
	}
	// must not be parallel
	defer scanner.Close()

	count := 0
	for scanner.Scan() {
		handle(scanner.Object())
		count++
	}

	if ctx.Err() != nil {
		return count, ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	return count, nil
}

/*
Parse. two passes over the extract:

 1. classify every node referenced by an accepted way as end, between or junction node.
 2. collect node coordinates & barrier nodes, then split every accepted way at its junction
    nodes into graph edges. nodes come before ways in osm files, so pass 2 can process ways inline.
*/
func (p *OsmParser) Parse(ctx context.Context, r io.ReadSeeker, format Format) (*datastructure.Graph, error) {
	p.reset()

	countObjects, err := p.scan(ctx, r, format, "[cyan][1/2][reset] scanning openstreetmap ways...", func(o osm.Object) {
		way, ok := o.(*osm.Way)
		if !ok || len(way.Nodes) < 2 {
			return
		}
		if accepted, _ := p.acceptOsmWay(way); !accepted {
			return
		}
		for i, node := range way.Nodes {
			if _, ok := p.wayNodeMap[int64(node.ID)]; !ok {
				if i == 0 || i == len(way.Nodes)-1 {
					p.wayNodeMap[int64(node.ID)] = END_NODE
				} else {
					p.wayNodeMap[int64(node.ID)] = BETWEEN_NODE
				}
			} else {
				p.wayNodeMap[int64(node.ID)] = JUNCTION_NODE
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if countObjects == 0 {
		return nil, fmt.Errorf("%w: no openstreetmap objects in input", ErrUnsupportedFormat)
	}

	graphStorage := datastructure.NewGraphStorage()
	edgeSet := make(segmentSet)
	scannedEdges := make([]Edge, 0)

	_, err = p.scan(ctx, r, format, "[cyan][2/2][reset] building road segments...", func(o osm.Object) {
		switch o := o.(type) {
		case *osm.Node:
			p.processNode(o)
		case *osm.Way:
			if len(o.Nodes) < 2 {
				return
			}
			accepted, highway := p.acceptOsmWay(o)
			if !accepted {
				if highway != "" {
					p.stats.WaysUnclassified++
					p.stats.UnknownClasses[highway]++
					p.logger.Warn("skipping way",
						zap.Int64("osm_way_id", int64(o.ID)),
						zap.Error(fmt.Errorf("%w: highway=%s", ErrUnclassifiedWay, highway)))
				}
				return
			}
			if p.processWay(o, graphStorage, edgeSet, &scannedEdges) {
				p.stats.WaysAccepted++
			} else {
				p.stats.WaysSkipped++
			}
		}
	})
	if err != nil {
		return nil, err
	}

	graphStorage.SetTagStringIdMap(p.tagStringIdMap)
	graph := p.BuildGraph(scannedEdges, graphStorage, uint32(len(p.nodeIDMap)))

	p.logStats(graph)
	return graph, nil
}

func (p *OsmParser) logStats(graph *datastructure.Graph) {
	classes := make([]string, 0, len(p.stats.UnknownClasses))
	for class := range p.stats.UnknownClasses {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	p.logger.Info("openstreetmap import finished",
		zap.Int("ways_accepted", p.stats.WaysAccepted),
		zap.Int("ways_unclassified", p.stats.WaysUnclassified),
		zap.Strings("unclassified_highway_values", classes),
		zap.Int("ways_skipped", p.stats.WaysSkipped),
		zap.Int("nodes_dropped", p.stats.NodesDropped),
		zap.Int("barrier_splits", p.stats.BarriersSplit),
		zap.Int("vertices", graph.NumberOfVertices()),
		zap.Int("edges", graph.NumberOfEdges()),
		zap.Int("sccs", graph.NumberOfSCCs()),
		zap.Int("largest_scc", graph.LargestSCCSize()))
}

func (p *OsmParser) processNode(node *osm.Node) {
	p.maxNodeID = max(p.maxNodeID, int64(node.ID))

	if _, ok := p.wayNodeMap[int64(node.ID)]; !ok {
		return
	}
	p.acceptedNodeMap[int64(node.ID)] = NodeCoord{
		lat: node.Lat,
		lon: node.Lon,
	}

	accessType := node.Tags.Find("access")
	barrierType := node.Tags.Find("barrier")
	if _, ok := acceptedBarrierType[barrierType]; ok && accessType == "no" {
		p.barrierNodes[int64(node.ID)] = true
	}
}

// acceptOsmWay. returns the highway value too, so the caller can report unknown road classes.
func (p *OsmParser) acceptOsmWay(way *osm.Way) (bool, string) {
	highway := way.Tags.Find("highway")
	if highway == "" {
		return false, ""
	}
	if _, ok := skipHighway[highway]; ok {
		return false, ""
	}
	if _, ok := p.cfg.SpeedTable[highway]; !ok {
		return false, highway
	}
	return true, highway
}

func isRestricted(value string) bool {
	if value == "no" || value == "restricted" {
		return true
	}
	return false
}

func getReversedOneWay(way *osm.Way) (bool, bool, bool, bool) {
	vehicleForward := way.Tags.Find("vehicle:forward")
	motorVehicleForward := way.Tags.Find("motor_vehicle:forward")
	vehicleBackward := way.Tags.Find("vehicle:backward")
	motorVehicleBackward := way.Tags.Find("motor_vehicle:backward")
	return isRestricted(vehicleForward), isRestricted(motorVehicleForward), isRestricted(vehicleBackward), isRestricted(motorVehicleBackward)
}

// wayDirection. ok is false when no motor vehicle may use the way in either direction.
func wayDirection(way *osm.Way) (wayExtraInfo, bool) {
	info := wayExtraInfo{forward: true}

	okvf, okmvf, okvb, okmvb := getReversedOneWay(way)
	noForward := okvf || okmvf
	noBackward := okvb || okmvb
	if noForward && noBackward {
		return info, false
	}

	switch way.Tags.Find("oneway") {
	case "yes", "true", "1":
		info.oneWay = true
	case "-1", "reverse":
		info.oneWay = true
		info.forward = false
	case "no", "false", "0":
	default:
		if junction := way.Tags.Find("junction"); junction == "roundabout" || junction == "circular" {
			info.oneWay = true
		}
	}

	if !info.oneWay && noForward {
		info.oneWay = true
		info.forward = false
	} else if !info.oneWay && noBackward {
		info.oneWay = true
	}
	return info, true
}

type wayAttributes struct {
	name         string
	hwType       pkg.OsmHighwayType
	speed        float64 // km/h
	isRoundabout bool
	dir          wayExtraInfo
	osmWayId     int64
}

func (p *OsmParser) wayAttributes(way *osm.Way, dir wayExtraInfo) wayAttributes {
	highway := way.Tags.Find("highway")
	speed := p.cfg.SpeedTable[highway]

	if p.cfg.UseMaxSpeed {
		if val := way.Tags.Find("maxspeed"); val != "" {
			maxSpeed, err := parseMaxSpeed(val)
			if err != nil {
				p.logger.Debug("ignoring maxspeed", zap.Int64("osm_way_id", int64(way.ID)),
					zap.String("maxspeed", val), zap.Error(err))
			} else {
				speed = maxSpeed
			}
		}
	}
	if speed <= 0 {
		speed = pkg.DEFAULT_SPEED_KMH
	}

	name := way.Tags.Find("name")
	if name == "" {
		name = way.Tags.Find("ref")
	}
	junction := way.Tags.Find("junction")

	return wayAttributes{
		name:         name,
		hwType:       pkg.GetHighwayType(highway),
		speed:        speed,
		isRoundabout: junction == "roundabout" || junction == "circular",
		dir:          dir,
		osmWayId:     int64(way.ID),
	}
}

// processWay. split the way at junction nodes. returns false when the way produced no edge.
func (p *OsmParser) processWay(way *osm.Way, graphStorage *datastructure.GraphStorage,
	edgeSet segmentSet, scannedEdges *[]Edge) bool {
	dir, ok := wayDirection(way)
	if !ok {
		return false
	}
	attrs := p.wayAttributes(way, dir)
	edgesBefore := len(*scannedEdges)

	waySegment := []node{}
	for _, wayNode := range way.Nodes {
		coord, ok := p.acceptedNodeMap[int64(wayNode.ID)]
		if !ok {
			// referenced node missing from the extract
			p.stats.NodesDropped++
			continue
		}
		nodeData := node{
			id:    int64(wayNode.ID),
			coord: coord,
		}
		waySegment = append(waySegment, nodeData)
		if p.isJunctionNode(nodeData.id) && len(waySegment) > 1 {
			p.processSegment(waySegment, attrs, graphStorage, edgeSet, scannedEdges)
			waySegment = []node{nodeData}
		}
	}
	if len(waySegment) > 1 {
		p.processSegment(waySegment, attrs, graphStorage, edgeSet, scannedEdges)
	}

	return len(*scannedEdges) > edgesBefore
}

func (p *OsmParser) processSegment(segment []node, attrs wayAttributes, graphStorage *datastructure.GraphStorage,
	edgeSet segmentSet, scannedEdges *[]Edge) {

	if len(segment) == 2 && segment[0].id == segment[1].id {
		// skip
		return
	} else if len(segment) > 2 && segment[0].id == segment[len(segment)-1].id {
		// loop, split so the edge does not start and end at the same vertex
		p.processSegment2(segment[0:len(segment)-1], attrs, graphStorage, edgeSet, scannedEdges)
		p.processSegment2(segment[len(segment)-2:], attrs, graphStorage, edgeSet, scannedEdges)
	} else {
		p.processSegment2(segment, attrs, graphStorage, edgeSet, scannedEdges)
	}
}

// processSegment2. split the segment again at barrier nodes
func (p *OsmParser) processSegment2(segment []node, attrs wayAttributes, graphStorage *datastructure.GraphStorage,
	edgeSet segmentSet, scannedEdges *[]Edge) {
	waySegment := []node{}
	for i := 0; i < len(segment); i++ {
		nodeData := segment[i]
		if _, ok := p.barrierNodes[nodeData.id]; ok {
			if len(waySegment) != 0 {
				// add the barrier node and process the segment (add edge)
				waySegment = append(waySegment, nodeData)
				p.addEdge(waySegment, attrs, graphStorage, edgeSet, scannedEdges)
				waySegment = []node{}
				p.stats.BarriersSplit++
			}
			// copy the barrier node but with different id so that previous edge (with barrier) not connected with the new edge
			nodeData = p.copyNode(nodeData)
		}
		waySegment = append(waySegment, nodeData)
	}
	if len(waySegment) > 1 {
		p.addEdge(waySegment, attrs, graphStorage, edgeSet, scannedEdges)
	}
}

func (p *OsmParser) copyNode(nodeData node) node {
	// same coordinate, fresh id that no osm node uses
	p.maxNodeID++
	newID := p.maxNodeID
	p.acceptedNodeMap[newID] = nodeData.coord
	p.copiedNodes[newID] = nodeData.id
	return node{
		id:    newID,
		coord: nodeData.coord,
	}
}

func (p *OsmParser) vertexID(osmNodeID int64) datastructure.Index {
	if id, ok := p.nodeIDMap[osmNodeID]; ok {
		return id
	}
	id := datastructure.Index(len(p.nodeIDMap))
	p.nodeIDMap[osmNodeID] = id
	p.nodeToOsmId[id] = osmNodeID
	return id
}

func (p *OsmParser) addEdge(segment []node, attrs wayAttributes, graphStorage *datastructure.GraphStorage,
	edgeSet segmentSet, scannedEdges *[]Edge) {
	from := segment[0]
	to := segment[len(segment)-1]
	if from.id == to.id {
		return
	}

	fromID := p.vertexID(from.id)
	toID := p.vertexID(to.id)

	edgePoints := make([]geo.Coordinate, len(segment))
	for i, n := range segment {
		edgePoints[i] = geo.NewCoordinate(n.coord.lat, n.coord.lon)
	}
	distanceInMeter := geo.PolylineLength(edgePoints)
	if p.cfg.SimplifyToleranceMeters > 0 {
		edgePoints = geo.RamerDouglasPeucker(edgePoints, p.cfg.SimplifyToleranceMeters) // simplify edge geometry
	}
	points := datastructure.NewCoordinatesFromGeo(edgePoints)

	travelTimeWeight := distanceInMeter / (attrs.speed / 3.6) // in seconds
	nameID := p.tagStringIdMap.GetID(attrs.name)

	appendEdge := func(u, v datastructure.Index, startPointsIndex, endPointsIndex int) {
		edgeID := uint32(len(*scannedEdges))
		graphStorage.AppendMapEdgeInfo(datastructure.NewEdgeExtraInfo(nameID,
			datastructure.Index(startPointsIndex), datastructure.Index(endPointsIndex), attrs.osmWayId))
		graphStorage.SetRoundabout(datastructure.Index(edgeID), attrs.isRoundabout)
		*scannedEdges = append(*scannedEdges, NewEdge(uint32(u), uint32(v), travelTimeWeight,
			distanceInMeter, edgeID, attrs.hwType))
	}

	// only an identical node path is a duplicate, a different road between the same junctions is a parallel edge
	forwardKey := newSegmentKey(fromID, toID, segment, false)
	backwardKey := newSegmentKey(toID, fromID, segment, true)
	forward := !attrs.dir.oneWay || attrs.dir.forward
	backward := !attrs.dir.oneWay || !attrs.dir.forward
	if _, ok := edgeSet[forwardKey]; forward && ok {
		forward = false
	}
	if _, ok := edgeSet[backwardKey]; backward && ok {
		backward = false
	}
	if !forward && !backward {
		return
	}

	startPointsIndex := graphStorage.GetGlobalPointsCount()
	graphStorage.AppendGlobalPoints(points)
	endPointsIndex := graphStorage.GetGlobalPointsCount()

	if forward {
		edgeSet[forwardKey] = struct{}{}
		appendEdge(fromID, toID, startPointsIndex, endPointsIndex)
	}
	if backward {
		edgeSet[backwardKey] = struct{}{}
		// reverse edge walks the same points backwards
		appendEdge(toID, fromID, endPointsIndex, startPointsIndex)
	}
}

func (p *OsmParser) isJunctionNode(nodeID int64) bool {
	return p.wayNodeMap[nodeID] == JUNCTION_NODE
}
