package osmparser

import (
	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/util"
)

/*
BuildGraph. groups the scanned edges by tail into the compressed sparse row layout.
edges keep their scan order within a tail so identical input gives identical edge ids.
edge info & roundabout flags in graphStorage are renumbered to the new edge ids.
*/
func (p *OsmParser) BuildGraph(scannedEdges []Edge, graphStorage *datastructure.GraphStorage, numV uint32) *datastructure.Graph {
	var (
		vertices  = make([]*datastructure.Vertex, numV+1)
		outEdges  = make([]*datastructure.OutEdge, len(scannedEdges))
		firstOut  = make([]datastructure.Index, numV+1)
		oldInfos  = graphStorage.GetMapEdgeInfo()
		edgeInfos = make([]datastructure.EdgeExtraInfo, len(scannedEdges))
		newGs     = datastructure.BuildGraphStorage(nil, nil, nil, graphStorage.GetTagStringIdMap())
	)

	for v := uint32(0); v < numV; v++ {
		osmID := p.nodeToOsmId[datastructure.Index(v)]
		coord := p.acceptedNodeMap[osmID]
		if orig, ok := p.copiedNodes[osmID]; ok {
			osmID = orig
		}
		vertices[v] = datastructure.NewVertexComplete(coord.lat, coord.lon, datastructure.Index(v), 0, osmID)
	}

	for _, e := range scannedEdges {
		util.AssertPanic(e.from < numV && e.to < numV, "edge endpoint harus vertex yang sudah di-assign")
		firstOut[e.from+1]++
	}
	for v := uint32(1); v <= numV; v++ {
		firstOut[v] += firstOut[v-1]
	}
	for v := uint32(0); v < numV; v++ {
		vertices[v].SetFirstOut(firstOut[v])
	}
	vertices[numV] = datastructure.NewVertexComplete(0, 0, datastructure.Index(numV), firstOut[numV], 0)

	newGs.AppendGlobalPoints(graphStorage.GetGlobalPoints())

	fill := make([]datastructure.Index, numV)
	copy(fill, firstOut[:numV])
	for _, e := range scannedEdges {
		pos := fill[e.from]
		fill[e.from]++

		outEdges[pos] = datastructure.NewOutEdge(pos, datastructure.Index(e.from), datastructure.Index(e.to),
			e.weight, e.distance, e.hwType)

		if int(e.edgeID) < len(oldInfos) {
			edgeInfos[pos] = oldInfos[e.edgeID]
			newGs.SetRoundabout(pos, graphStorage.IsRoundabout(datastructure.Index(e.edgeID)))
			continue
		}

		// edge without recorded geometry: straight line between its endpoints
		start := datastructure.Index(newGs.GetGlobalPointsCount())
		tail, head := vertices[e.from], vertices[e.to]
		newGs.AppendGlobalPoints([]datastructure.Coordinate{
			datastructure.NewCoordinate(tail.GetLat(), tail.GetLon()),
			datastructure.NewCoordinate(head.GetLat(), head.GetLon()),
		})
		edgeInfos[pos] = datastructure.NewEdgeExtraInfo(newGs.GetTagStringIdMap().GetID(""),
			start, start+2, -1)
	}
	newGs.SetMapEdgeInfo(edgeInfos)

	graph := datastructure.NewGraph(vertices, outEdges, newGs)
	graph.RunKosaraju()
	return graph
}
