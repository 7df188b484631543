package guidance

import (
	"context"
	"strings"
	"testing"

	"github.com/lintang-b-s/osmrouter/pkg/costfunction"
	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/engine/routing"
	"github.com/lintang-b-s/osmrouter/pkg/osmparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const guidanceExtract = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="0" lon="0" version="1"/>
  <node id="2" lat="0" lon="0.001" version="1"/>
  <node id="3" lat="0" lon="0.002" version="1"/>
  <node id="4" lat="0.001" lon="0.002" version="1"/>
  <node id="5" lat="0.002" lon="0.002" version="1"/>
  <node id="10" lat="0.001" lon="0.010" version="1"/>
  <node id="11" lat="0" lon="0.011" version="1"/>
  <node id="12" lat="-0.001" lon="0.010" version="1"/>
  <node id="13" lat="0" lon="0.009" version="1"/>
  <node id="14" lat="0" lon="0.007" version="1"/>
  <node id="15" lat="-0.002" lon="0.010" version="1"/>
  <node id="16" lat="0" lon="0.012" version="1"/>
  <way id="1" version="1">
    <nd ref="1"/><nd ref="2"/><nd ref="3"/>
    <tag k="highway" v="residential"/>
    <tag k="name" v="Jalan Affandi"/>
  </way>
  <way id="2" version="1">
    <nd ref="3"/><nd ref="4"/><nd ref="5"/>
    <tag k="highway" v="residential"/>
    <tag k="name" v="Jalan Bausasran"/>
  </way>
  <way id="20" version="1">
    <nd ref="10"/><nd ref="11"/><nd ref="12"/><nd ref="13"/><nd ref="10"/>
    <tag k="highway" v="primary"/>
    <tag k="junction" v="roundabout"/>
    <tag k="name" v="Bundaran UGM"/>
  </way>
  <way id="21" version="1">
    <nd ref="14"/><nd ref="13"/>
    <tag k="highway" v="primary"/>
    <tag k="name" v="Jalan Colombo"/>
  </way>
  <way id="22" version="1">
    <nd ref="12"/><nd ref="15"/>
    <tag k="highway" v="primary"/>
    <tag k="name" v="Jalan Dagen"/>
  </way>
  <way id="23" version="1">
    <nd ref="11"/><nd ref="16"/>
    <tag k="highway" v="primary"/>
    <tag k="name" v="Jalan Eka"/>
  </way>
</osm>`

func vertexOf(t *testing.T, g *datastructure.Graph, osmId int64) datastructure.Index {
	t.Helper()
	for v := 0; v < g.NumberOfVertices(); v++ {
		if g.GetVertex(datastructure.Index(v)).GetOsmId() == osmId {
			return datastructure.Index(v)
		}
	}
	t.Fatalf("osm node %d is not a vertex", osmId)
	return 0
}

func directionsBetween(t *testing.T, from, to int64) []DrivingDirection {
	t.Helper()
	p := osmparser.NewOSMParser(zap.NewNop(), osmparser.DefaultConfig())
	g, err := p.Parse(context.Background(), strings.NewReader(guidanceExtract), osmparser.FORMAT_XML)
	require.NoError(t, err)

	re := routing.NewRoutingEngine(g, zap.NewNop(), nil)
	route, err := re.ShortestPath(context.Background(), vertexOf(t, g, from), vertexOf(t, g, to),
		routing.DIJKSTRA, costfunction.METRIC_TIME)
	require.NoError(t, err)

	return NewDirectionBuilder(g).GetDrivingDirections(route.GetEdges())
}

func TestDrivingDirectionsLeftTurn(t *testing.T) {
	directions := directionsBetween(t, 1, 5)

	require.Len(t, directions, 3)
	assert.Equal(t, START, directions[0].GetTurnSign())
	assert.Equal(t, "Head east on Jalan Affandi", directions[0].GetInstruction())
	assert.Equal(t, TURN_LEFT, directions[1].GetTurnSign())
	assert.Equal(t, "Turn left onto Jalan Bausasran", directions[1].GetInstruction())
	assert.Equal(t, FINISH, directions[2].GetTurnSign())
	assert.Equal(t, datastructure.NewCoordinate(0.002, 0.002), directions[2].GetPoint())

	assert.InDelta(t, 222, directions[0].GetDistance(), 1)
	assert.InDelta(t, 222, directions[1].GetDistance(), 1)
	assert.Len(t, directions[0].GetEdgeIds(), 1)
	assert.NotEmpty(t, directions[0].GetPolyline())
}

func TestDrivingDirectionsRoundabout(t *testing.T) {
	directions := directionsBetween(t, 14, 15)

	require.Len(t, directions, 3)
	assert.Equal(t, START, directions[0].GetTurnSign())
	assert.Equal(t, "Jalan Colombo", directions[0].GetStreetName())

	roundabout := directions[1]
	assert.Equal(t, USE_ROUNDABOUT, roundabout.GetTurnSign())
	// 11 (Jalan Eka) is passed, 12 (Jalan Dagen) is taken
	assert.Equal(t, 2, roundabout.GetExitNumber())
	assert.Equal(t, "At the roundabout, take exit 2 onto Jalan Dagen", roundabout.GetInstruction())
	assert.Len(t, roundabout.GetEdgeIds(), 4)

	assert.Equal(t, FINISH, directions[2].GetTurnSign())
}

func TestGetTurnSign(t *testing.T) {
	testCases := []struct {
		delta float64
		want  TurnSign
	}{
		{delta: 0, want: CONTINUE_ON_STREET},
		{delta: -11, want: CONTINUE_ON_STREET},
		{delta: 20, want: TURN_SLIGHT_RIGHT},
		{delta: -39, want: TURN_SLIGHT_LEFT},
		{delta: 90, want: TURN_RIGHT},
		{delta: -90, want: TURN_LEFT},
		{delta: 150, want: TURN_SHARP_RIGHT},
		{delta: -170, want: TURN_SHARP_LEFT},
	}
	for _, tt := range testCases {
		assert.Equal(t, tt.want, getTurnSign(tt.delta), "delta %v", tt.delta)
	}
}

func TestCompassDirection(t *testing.T) {
	assert.Equal(t, "north", compassDirection(0))
	assert.Equal(t, "north", compassDirection(350))
	assert.Equal(t, "east", compassDirection(91))
	assert.Equal(t, "southwest", compassDirection(225))
}

func TestEmptyPath(t *testing.T) {
	assert.Empty(t, NewDirectionBuilder(nil).GetDrivingDirections(nil))
}
