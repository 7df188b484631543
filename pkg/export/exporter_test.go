package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linkedin/goavro/v2"
	"github.com/lintang-b-s/osmrouter/pkg"
	da "github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/osmparser"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testExtract = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="0" lon="0" version="1"/>
  <node id="2" lat="0" lon="0.001" version="1"/>
  <node id="3" lat="0.001" lon="0.001" version="1"/>
  <way id="10" version="1">
    <nd ref="1"/>
    <nd ref="2"/>
    <tag k="highway" v="residential"/>
    <tag k="name" v="Jalan Malioboro"/>
  </way>
  <way id="11" version="1">
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="primary"/>
    <tag k="oneway" v="yes"/>
  </way>
</osm>`

func parseTestGraph(t *testing.T) *da.Graph {
	t.Helper()
	p := osmparser.NewOSMParser(zap.NewNop(), osmparser.DefaultConfig())
	g, err := p.Parse(context.Background(), strings.NewReader(testExtract), osmparser.FORMAT_XML)
	require.NoError(t, err)
	require.Equal(t, 3, g.NumberOfEdges())
	return g
}

func findEdge(t *testing.T, g *da.Graph, u, v da.Index) da.Index {
	t.Helper()
	id, ok := g.FindOutEdge(u, v)
	require.True(t, ok, "edge %d -> %d", u, v)
	return id
}

func TestRecords(t *testing.T) {
	g := parseTestGraph(t)
	records, err := NewExporter(g, zap.NewNop(), 2).Records(context.Background())
	require.NoError(t, err)

	// the two way residential road is a single row
	require.Len(t, records, 2)
	for i, rec := range records {
		assert.Equal(t, int32(i), rec.ID)
		assert.False(t, rec.Source == 1 && rec.Target == 0, "reverse twin exported as its own row")
	}
	named, oneWay := records[0], records[1]

	assert.Equal(t, int64(10), named.OsmID)
	require.NotNil(t, named.OsmName)
	assert.Equal(t, "Jalan Malioboro", *named.OsmName)
	assert.Equal(t, int32(pkg.RESIDENTIAL), named.Clazz)
	assert.Equal(t, int32(0), named.Source)
	assert.Equal(t, int32(1), named.Target)
	assert.Equal(t, int32(30), named.Kmh)
	assert.InDelta(t, g.GetOutEdge(findEdge(t, g, 0, 1)).GetLength()/1000, named.Km, 1e-12)
	assert.InDelta(t, named.Km/30, named.Cost, 1e-9)
	assert.InDelta(t, g.GetOutEdge(findEdge(t, g, 1, 0)).GetWeight()/3600, named.ReverseCost, 1e-12)
	assert.Equal(t, 0.0, named.X1)
	assert.Equal(t, 0.0, named.Y1)
	assert.Equal(t, 0.001, named.X2)
	assert.Equal(t, 0.0, named.Y2)

	assert.Nil(t, oneWay.OsmName)
	assert.Equal(t, int64(11), oneWay.OsmID)
	assert.Equal(t, int32(1), oneWay.Source)
	assert.Equal(t, int32(2), oneWay.Target)
	assert.Equal(t, int32(65), oneWay.Kmh)
	assert.Equal(t, pkg.PGR_NO_REVERSE_COST, oneWay.ReverseCost)

	ls, err := wkt.UnmarshalLineString(oneWay.GeomWay)
	require.NoError(t, err)
	require.Len(t, ls, 2)
	assert.InDelta(t, 0.001, ls[0][0], 1e-12)
	assert.InDelta(t, 0.0, ls[0][1], 1e-12)
	assert.InDelta(t, 0.001, ls[1][0], 1e-12)
	assert.InDelta(t, 0.001, ls[1][1], 1e-12)
}

func TestExportCSV(t *testing.T) {
	g := parseTestGraph(t)
	var buf bytes.Buffer
	n, err := NewExporter(g, zap.NewNop(), 1).Export(context.Background(), &buf, FORMAT_CSV)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns(), rows[0])

	oneWay := rows[2]
	assert.Equal(t, "11", oneWay[1])
	assert.Equal(t, "", oneWay[2])
	assert.Equal(t, "1000000", oneWay[9])
	assert.True(t, strings.HasPrefix(oneWay[14], "LINESTRING"))

	named := rows[1]
	assert.Equal(t, "Jalan Malioboro", named[2])
	assert.NotEqual(t, "1000000", named[9])
}

func TestExportJSON(t *testing.T) {
	g := parseTestGraph(t)
	var buf bytes.Buffer
	_, err := NewExporter(g, zap.NewNop(), 1).Export(context.Background(), &buf, FORMAT_JSON)
	require.NoError(t, err)

	var lines []map[string]interface{}
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var obj map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &obj))
		lines = append(lines, obj)
	}
	require.NoError(t, sc.Err())
	require.Len(t, lines, 2)

	for i, obj := range lines {
		assert.Len(t, obj, len(Columns()))
		assert.Equal(t, float64(i), obj["id"])
	}
	oneWay := lines[1]
	v, ok := oneWay["osm_name"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestExportAvro(t *testing.T) {
	g := parseTestGraph(t)
	var buf bytes.Buffer
	_, err := NewExporter(g, zap.NewNop(), 1).Export(context.Background(), &buf, FORMAT_AVRO)
	require.NoError(t, err)

	ocf, err := goavro.NewOCFReader(&buf)
	require.NoError(t, err)

	var got []map[string]interface{}
	for ocf.Scan() {
		datum, err := ocf.Read()
		require.NoError(t, err)
		got = append(got, datum.(map[string]interface{}))
	}
	require.NoError(t, ocf.Err())
	require.Len(t, got, 2)

	named := got[0]
	assert.Equal(t, map[string]interface{}{"string": "Jalan Malioboro"}, named["osm_name"])
	assert.Equal(t, map[string]interface{}{"long": int64(10)}, named["osm_id"])

	oneWay := got[1]
	assert.Nil(t, oneWay["osm_name"])
	assert.Equal(t, map[string]interface{}{"double": pkg.PGR_NO_REVERSE_COST}, oneWay["reverse_cost"])
}

func chainGraph(t *testing.T, n int) *da.Graph {
	t.Helper()
	p := osmparser.NewOSMParser(zap.NewNop(), osmparser.DefaultConfig())
	accepted := make(map[int64]osmparser.NodeCoord, n)
	toOsm := make(map[da.Index]int64, n)
	for i := 0; i < n; i++ {
		accepted[int64(i+1)] = osmparser.NewNodeCoord(0, float64(i)*0.0001)
		toOsm[da.Index(i)] = int64(i + 1)
	}
	p.SetAcceptedNodeMap(accepted)
	p.SetNodeToOsmId(toOsm)

	edges := make([]osmparser.Edge, 0, n-1)
	for i := 0; i < n-1; i++ {
		edges = append(edges, osmparser.NewEdge(uint32(i), uint32(i+1), float64(i+1), 11, uint32(i), pkg.TERTIARY))
	}
	return p.BuildGraph(edges, da.NewGraphStorage(), uint32(n))
}

func TestRecordsOrderIndependentOfWorkers(t *testing.T) {
	g := chainGraph(t, 3*batchSize+7)

	single, err := NewExporter(g, zap.NewNop(), 1).Records(context.Background())
	require.NoError(t, err)
	many, err := NewExporter(g, zap.NewNop(), 8).Records(context.Background())
	require.NoError(t, err)

	require.Len(t, many, g.NumberOfEdges())
	assert.Equal(t, single, many)
	for i, rec := range many {
		assert.Equal(t, int32(i), rec.ID)
		assert.Equal(t, float64(i+1)/3600, rec.Cost)
	}
}

func TestRecordsCancelled(t *testing.T) {
	g := chainGraph(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExporter(g, zap.NewNop(), 2).Records(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportFile(t *testing.T) {
	g := parseTestGraph(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "jogja.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewExporter(g, zap.NewNop(), 1).ExportFile(ctx, path, FORMAT_CSV)
	assert.ErrorIs(t, err, context.Canceled)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "cancelled export left files behind")

	require.NoError(t, NewExporter(g, zap.NewNop(), 1).ExportFile(context.Background(), path, FORMAT_CSV))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "jogja.csv", entries[0].Name())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "csv", want: FORMAT_CSV},
		{in: "JSON", want: FORMAT_JSON},
		{in: "ndjson", want: FORMAT_JSON},
		{in: "avro", want: FORMAT_AVRO},
		{in: "parquet", wantErr: true},
	}
	for _, tt := range testCases {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "data/jogja.avro", OutputPath("data/jogja.graph", FORMAT_AVRO))
	assert.Equal(t, "jogja.csv", OutputPath("jogja", FORMAT_CSV))
}
