package datastructure

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/osmrouter/pkg"
	"github.com/lintang-b-s/osmrouter/pkg/util"
)

var (
	ErrGraphFormat          = errors.New("not a graph file")
	ErrGraphVersionMismatch = errors.New("graph format version mismatch")
)

/*
WriteGraph. bzip2 compressed, line oriented:

	OSMROUTER-GRAPH <version>
	numVertices numEdges numPoints numStrings numSCCs
	firstOut lat lon osmId scc          (numVertices lines)
	firstOut                            (sentinel)
	tail head weight dist hwType startPoint endPoint nameId osmWayId   (numEdges lines)
	lat lon                             (numPoints lines)
	id "string"                         (numStrings lines)
	roundabout flag words
	condensation adjacency of each scc  (numSCCs lines, "empty" when no successor)
	minLat minLon maxLat maxLon

the file is written next to filename and renamed into place.
*/
func (g *Graph) WriteGraph(filename string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := g.WriteGraphTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

func (g *Graph) WriteGraphTo(out io.Writer) error {
	bz, err := bzip2.NewWriter(out, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)
	if err := g.writeGraph(w); err != nil {
		bz.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		bz.Close()
		return err
	}
	return bz.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (g *Graph) writeGraph(w *bufio.Writer) error {
	gs := g.graphStorage
	if gs == nil {
		gs = NewGraphStorage()
	}
	n := g.NumberOfVertices()

	fmt.Fprintf(w, "%s %d\n", pkg.GRAPH_MAGIC, pkg.GRAPH_FORMAT_VERSION)
	fmt.Fprintf(w, "%d %d %d %d %d\n",
		n, g.NumberOfEdges(), len(gs.globalPoints), gs.tagStringIDMap.Len(), len(g.sccCondensationAdj))

	for vId := 0; vId < n; vId++ {
		v := g.vertices[vId]
		scc := Index(0)
		if len(g.sccs) > 0 {
			scc = g.sccs[vId]
		}
		fmt.Fprintf(w, "%d %s %s %d %d\n",
			v.firstOut, formatFloat(v.lat), formatFloat(v.lon), v.osmId, scc)
	}
	fmt.Fprintf(w, "%d\n", g.vertices[n].firstOut)

	for id, e := range g.outEdges {
		info := EdgeExtraInfo{osmWayId: -1}
		if id < len(gs.mapEdgeInfo) {
			info = gs.mapEdgeInfo[id]
		}
		fmt.Fprintf(w, "%d %d %s %s %d %d %d %d %d\n",
			e.tail, e.head, formatFloat(e.weight), formatFloat(e.dist), e.hwType,
			info.startPointsIndex, info.endPointsIndex, info.streetName, info.osmWayId)
	}

	for _, point := range gs.globalPoints {
		fmt.Fprintf(w, "%s %s\n", formatFloat(point.Lat), formatFloat(point.Lon))
	}

	sortedKeys := make([]int, 0, gs.tagStringIDMap.Len())
	for key := range gs.tagStringIDMap.IDToStr {
		sortedKeys = append(sortedKeys, key)
	}
	sort.Ints(sortedKeys)
	for _, key := range sortedKeys {
		fmt.Fprintf(w, "%d %s\n", key, strconv.Quote(gs.tagStringIDMap.GetStr(key)))
	}

	flags := make([]string, len(gs.roundaboutFlag))
	for i, flag := range gs.roundaboutFlag {
		flags[i] = strconv.FormatUint(uint64(flag), 10)
	}
	fmt.Fprintf(w, "%s\n", strings.Join(flags, " "))

	for _, adj := range g.sccCondensationAdj {
		if len(adj) == 0 {
			fmt.Fprintf(w, "empty\n")
			continue
		}
		ids := make([]string, len(adj))
		for j, c := range adj {
			ids[j] = strconv.FormatUint(uint64(c), 10)
		}
		fmt.Fprintf(w, "%s\n", strings.Join(ids, " "))
	}

	bb := g.boundingBox
	if bb == nil {
		bb = NewBoundingBox(0, 0, 0, 0)
	}
	_, err := fmt.Fprintf(w, "%s %s %s %s\n", formatFloat(bb.GetMinLat()), formatFloat(bb.GetMinLon()),
		formatFloat(bb.GetMaxLat()), formatFloat(bb.GetMaxLon()))
	return err
}

func fields(s string) []string {

	return strings.Fields(s)
}

func ParseIndex(s string) (Index, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return 0, fmt.Errorf("value %s overflows uint32", s)
	}
	return Index(u), nil
}

func ReadGraph(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	return ReadGraphFrom(f)
}

func ReadGraphFrom(in io.Reader) (*Graph, error) {
	bz, err := bzip2.NewReader(in, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	gr := &graphReader{br: bufio.NewReader(bz)}
	g, err := gr.read()
	if err != nil {
		if errors.Is(err, ErrGraphVersionMismatch) || errors.Is(err, ErrGraphFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: line %d: %w", ErrGraphFormat, gr.lineNo, err)
	}
	return g, nil
}

type graphReader struct {
	br     *bufio.Reader
	lineNo int
}

func (gr *graphReader) next(expectedFields int) ([]string, error) {
	line, err := util.ReadLine(gr.br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	gr.lineNo++
	tokens := fields(line)
	if expectedFields >= 0 && len(tokens) != expectedFields {
		return nil, fmt.Errorf("expected %d fields, got %d", expectedFields, len(tokens))
	}
	return tokens, nil
}

func (gr *graphReader) read() (*Graph, error) {
	tokens, err := gr.next(2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGraphFormat, err)
	}
	if tokens[0] != pkg.GRAPH_MAGIC {
		return nil, fmt.Errorf("%w: bad magic %q", ErrGraphFormat, tokens[0])
	}
	version, err := strconv.Atoi(tokens[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad version %q", ErrGraphFormat, tokens[1])
	}
	if version != pkg.GRAPH_FORMAT_VERSION {
		return nil, fmt.Errorf("%w: file has version %d, this build reads version %d",
			ErrGraphVersionMismatch, version, pkg.GRAPH_FORMAT_VERSION)
	}

	tokens, err = gr.next(5)
	if err != nil {
		return nil, err
	}
	counts := make([]Index, 5)
	for i, token := range tokens {
		counts[i], err = ParseIndex(token)
		if err != nil {
			return nil, err
		}
	}
	for i, c := range counts {
		if c == math.MaxUint32 {
			return nil, fmt.Errorf("header count %d is out of range", i)
		}
	}
	numVertices, numEdges, numPoints, numStrings, numSCCs := counts[0], counts[1], counts[2], counts[3], counts[4]

	// header counts are untrusted, slices grow with the lines actually read
	vertices := make([]*Vertex, 0, preallocHint(numVertices+1))
	sccs := make([]Index, 0, preallocHint(numVertices))
	for i := Index(0); i < numVertices; i++ {
		tokens, err := gr.next(5)
		if err != nil {
			return nil, err
		}
		v, scc, err := parseVertex(tokens, i)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
		sccs = append(sccs, scc)
	}
	tokens, err = gr.next(1)
	if err != nil {
		return nil, err
	}
	sentinel, err := ParseIndex(tokens[0])
	if err != nil {
		return nil, err
	}
	vertices = append(vertices, NewVertexComplete(0, 0, numVertices, sentinel, 0))

	outEdges := make([]*OutEdge, 0, preallocHint(numEdges))
	mapEdgeInfo := make([]EdgeExtraInfo, 0, preallocHint(numEdges))
	for i := Index(0); i < numEdges; i++ {
		tokens, err := gr.next(9)
		if err != nil {
			return nil, err
		}
		e, info, err := parseOutEdge(tokens, i)
		if err != nil {
			return nil, err
		}
		outEdges = append(outEdges, e)
		mapEdgeInfo = append(mapEdgeInfo, info)
	}

	points := make([]Coordinate, 0, preallocHint(numPoints))
	for i := Index(0); i < numPoints; i++ {
		tokens, err := gr.next(2)
		if err != nil {
			return nil, err
		}
		lat, err := strconv.ParseFloat(tokens[0], 64)
		if err != nil {
			return nil, fmt.Errorf("lat: %w", err)
		}
		lon, err := strconv.ParseFloat(tokens[1], 64)
		if err != nil {
			return nil, fmt.Errorf("lon: %w", err)
		}
		points = append(points, NewCoordinate(lat, lon))
	}

	tagStringIDMap := util.NewIdMap()
	for i := Index(0); i < numStrings; i++ {
		line, err := util.ReadLine(gr.br)
		if err != nil {
			return nil, err
		}
		gr.lineNo++
		idStr, quoted, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("malformed string table entry %q", line)
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, err
		}
		val, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, err
		}
		tagStringIDMap.Set(id, val)
	}

	tokens, err = gr.next(-1)
	if err != nil {
		return nil, err
	}
	roundaboutFlag := make([]Index, len(tokens))
	for i, token := range tokens {
		roundaboutFlag[i], err = ParseIndex(token)
		if err != nil {
			return nil, err
		}
	}

	condAdj := make([][]Index, 0, preallocHint(numSCCs))
	for i := Index(0); i < numSCCs; i++ {
		tokens, err := gr.next(-1)
		if err != nil {
			return nil, err
		}
		if len(tokens) == 1 && tokens[0] == "empty" {
			condAdj = append(condAdj, nil)
			continue
		}
		adj := make([]Index, len(tokens))
		for j, token := range tokens {
			adj[j], err = ParseIndex(token)
			if err != nil {
				return nil, err
			}
			if adj[j] >= numSCCs {
				return nil, fmt.Errorf("condensation edge to unknown component %d", adj[j])
			}
		}
		condAdj = append(condAdj, adj)
	}

	tokens, err = gr.next(4)
	if err != nil {
		return nil, err
	}
	bbox := make([]float64, 4)
	for i, token := range tokens {
		bbox[i], err = strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("bounding box: %w", err)
		}
	}

	gs := BuildGraphStorage(points, roundaboutFlag, mapEdgeInfo, tagStringIDMap)
	for i, info := range mapEdgeInfo {
		if int(info.startPointsIndex) > len(points) || int(info.endPointsIndex) > len(points) {
			return nil, fmt.Errorf("edge %d geometry outside point table", i)
		}
		if _, ok := tagStringIDMap.IDToStr[info.streetName]; !ok && numStrings > 0 {
			return nil, fmt.Errorf("edge %d references unknown string %d", i, info.streetName)
		}
	}

	graph := NewGraph(vertices, outEdges, gs)
	if numSCCs > 0 {
		for v, c := range sccs {
			if c >= numSCCs {
				return nil, fmt.Errorf("vertex %d in unknown component %d", v, c)
			}
		}
		graph.SetSCCs(sccs)
		graph.SetSCCCondensationAdj(condAdj)
	}
	graph.SetBoundingBox(NewBoundingBox(bbox[0], bbox[1], bbox[2], bbox[3]))

	return graph, nil
}

const maxPrealloc = 1 << 16

func preallocHint(n Index) int {
	return int(min(n, maxPrealloc))
}

func parseVertex(tokens []string, id Index) (*Vertex, Index, error) {
	firstOut, err := ParseIndex(tokens[0])
	if err != nil {
		return nil, 0, err
	}
	lat, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return nil, 0, fmt.Errorf("lat: %w", err)
	}
	lon, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return nil, 0, fmt.Errorf("lon: %w", err)
	}
	osmId, err := strconv.ParseInt(tokens[3], 10, 64)
	if err != nil {
		return nil, 0, err
	}
	scc, err := ParseIndex(tokens[4])
	if err != nil {
		return nil, 0, err
	}
	return NewVertexComplete(lat, lon, id, firstOut, osmId), scc, nil
}

func parseOutEdge(tokens []string, id Index) (*OutEdge, EdgeExtraInfo, error) {
	var info EdgeExtraInfo
	tail, err := ParseIndex(tokens[0])
	if err != nil {
		return nil, info, err
	}
	head, err := ParseIndex(tokens[1])
	if err != nil {
		return nil, info, err
	}
	weight, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return nil, info, err
	}
	dist, err := strconv.ParseFloat(tokens[3], 64)
	if err != nil {
		return nil, info, err
	}
	hwType, err := strconv.ParseUint(tokens[4], 10, 8)
	if err != nil {
		return nil, info, err
	}
	startPoint, err := ParseIndex(tokens[5])
	if err != nil {
		return nil, info, err
	}
	endPoint, err := ParseIndex(tokens[6])
	if err != nil {
		return nil, info, err
	}
	nameId, err := strconv.Atoi(tokens[7])
	if err != nil {
		return nil, info, err
	}
	osmWayId, err := strconv.ParseInt(tokens[8], 10, 64)
	if err != nil {
		return nil, info, err
	}

	info = NewEdgeExtraInfo(nameId, startPoint, endPoint, osmWayId)
	return NewOutEdge(id, tail, head, weight, dist, pkg.OsmHighwayType(hwType)), info, nil
}
