package datastructure

import (
	"github.com/lintang-b-s/osmrouter/pkg/util"
)

// GraphStorage. per-edge data the search never touches: geometry, street names, osm provenance.
type GraphStorage struct {
	globalPoints []Coordinate

	/*
		32 bit -> 32 boolean flag for roundabout

		idx in flag array = floor(edgeID/32)
		idx in flag = edgeID % 32
	*/
	roundaboutFlag []Index

	mapEdgeInfo []EdgeExtraInfo

	tagStringIDMap util.IDMap
}

func NewGraphStorage() *GraphStorage {
	return &GraphStorage{
		mapEdgeInfo:    make([]EdgeExtraInfo, 0),
		tagStringIDMap: util.NewIdMap(),
		roundaboutFlag: make([]Index, 0),
		globalPoints:   make([]Coordinate, 0),
	}
}

func BuildGraphStorage(globalPoints []Coordinate, roundaboutFlag []Index,
	mapEdgeInfo []EdgeExtraInfo, tagStringIDMap util.IDMap) *GraphStorage {
	return &GraphStorage{globalPoints: globalPoints, roundaboutFlag: roundaboutFlag,
		mapEdgeInfo: mapEdgeInfo, tagStringIDMap: tagStringIDMap}
}

func (gs *GraphStorage) SetRoundabout(edgeID Index, isRoundabout bool) {
	index := int(edgeID / 32)
	if len(gs.roundaboutFlag) <= index {
		gs.roundaboutFlag = append(gs.roundaboutFlag, make([]Index, index-len(gs.roundaboutFlag)+1)...)
	}
	if isRoundabout {
		gs.roundaboutFlag[index] |= 1 << (edgeID % 32)
	} else {
		gs.roundaboutFlag[index] &^= 1 << (edgeID % 32)
	}
}

func (gs *GraphStorage) IsRoundabout(edgeID Index) bool {
	index := int(edgeID / 32)
	if index >= len(gs.roundaboutFlag) {
		return false
	}
	return (gs.roundaboutFlag[index] & (1 << (edgeID % 32))) != 0
}

func (gs *GraphStorage) GetTagStringIdMap() util.IDMap {
	return gs.tagStringIDMap
}

func (gs *GraphStorage) SetTagStringIdMap(tagStringIDMap util.IDMap) {
	gs.tagStringIDMap = tagStringIDMap
}

type EdgeExtraInfo struct {
	startPointsIndex Index
	endPointsIndex   Index
	streetName       int
	osmWayId         int64
}

// NewEdgeExtraInfo. geometry of the edge is globalPoints[start:end], or the same range walked
// backwards when start > end (the reverse edge of a two-way street shares its points).
func NewEdgeExtraInfo(streetName int, startPointsIdx, endPointsIdx Index, osmWayId int64) EdgeExtraInfo {
	return EdgeExtraInfo{
		streetName:       streetName,
		startPointsIndex: startPointsIdx,
		endPointsIndex:   endPointsIdx,
		osmWayId:         osmWayId,
	}
}

func (e EdgeExtraInfo) GetStartPointsIndex() Index {
	return e.startPointsIndex
}

func (e EdgeExtraInfo) GetEndPointsIndex() Index {
	return e.endPointsIndex
}

func (e EdgeExtraInfo) GetStreetNameId() int {
	return e.streetName
}

func (e EdgeExtraInfo) GetOsmWayId() int64 {
	return e.osmWayId
}

func (gs *GraphStorage) GetEdgeGeometry(edgeID Index) []Coordinate {
	edge := gs.mapEdgeInfo[edgeID]
	startIndex := int(edge.startPointsIndex)
	endIndex := int(edge.endPointsIndex)

	if startIndex < endIndex {
		edgePoints := make([]Coordinate, endIndex-startIndex)
		copy(edgePoints, gs.globalPoints[startIndex:endIndex])
		return edgePoints
	}

	edgePoints := make([]Coordinate, 0, startIndex-endIndex)
	for i := startIndex - 1; i >= endIndex; i-- {
		edgePoints = append(edgePoints, gs.globalPoints[i])
	}

	return edgePoints
}

func (gs *GraphStorage) GetEdgeExtraInfo(edgeID Index) EdgeExtraInfo {
	return gs.mapEdgeInfo[edgeID]
}

func (gs *GraphStorage) GetStreetName(edgeID Index) string {
	return gs.tagStringIDMap.GetStr(gs.mapEdgeInfo[edgeID].streetName)
}

func (gs *GraphStorage) GetMapEdgeInfo() []EdgeExtraInfo {
	return gs.mapEdgeInfo
}

// SetMapEdgeInfo replaces the edge info table, used once edges are renumbered into adjacency order.
func (gs *GraphStorage) SetMapEdgeInfo(mapEdgeInfo []EdgeExtraInfo) {
	gs.mapEdgeInfo = mapEdgeInfo
}

func (gs *GraphStorage) SetRoundaboutFlags(flags []Index) {
	gs.roundaboutFlag = flags
}

func (gs *GraphStorage) AppendGlobalPoints(edgePoints []Coordinate) {
	gs.globalPoints = append(gs.globalPoints, edgePoints...)
}

func (gs *GraphStorage) AppendMapEdgeInfo(edgeInfo EdgeExtraInfo) {
	gs.mapEdgeInfo = append(gs.mapEdgeInfo, edgeInfo)
}

func (gs *GraphStorage) GetGlobalPoints() []Coordinate {
	return gs.globalPoints
}

func (gs *GraphStorage) GetGlobalPointsCount() int {
	return len(gs.globalPoints)
}

func (gs *GraphStorage) GetMapEdgeInfoCount() int {
	return len(gs.mapEdgeInfo)
}
