package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/linkedin/goavro/v2"
)

const avroSchema = `{
  "type": "record",
  "name": "PgRoutingData",
  "namespace": "osm2po",
  "doc": "PgRouting compatible OpenStreetMap data",
  "fields": [
    {"name": "id", "type": ["null", "int"]},
    {"name": "osm_id", "type": ["null", "long"]},
    {"name": "osm_name", "type": ["null", "string"]},
    {"name": "clazz", "type": ["null", "int"]},
    {"name": "source", "type": ["null", "int"]},
    {"name": "target", "type": ["null", "int"]},
    {"name": "km", "type": ["null", "double"]},
    {"name": "kmh", "type": ["null", "int"]},
    {"name": "cost", "type": ["null", "double"]},
    {"name": "reverse_cost", "type": ["null", "double"]},
    {"name": "x1", "type": ["null", "double"]},
    {"name": "y1", "type": ["null", "double"]},
    {"name": "x2", "type": ["null", "double"]},
    {"name": "y2", "type": ["null", "double"]},
    {"name": "geom_way", "type": ["null", "string"]}
  ]
}`

func AvroSchema() string {
	return avroSchema
}

type recordWriter interface {
	Write(rec Record) error
	Close() error
}

func newRecordWriter(w io.Writer, format Format) (recordWriter, error) {
	switch format {
	case FORMAT_CSV:
		return newCSVWriter(w)
	case FORMAT_JSON:
		return &jsonWriter{enc: json.NewEncoder(w)}, nil
	case FORMAT_AVRO:
		return newAvroWriter(w)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
}

type csvWriter struct {
	w *csv.Writer
}

func newCSVWriter(w io.Writer) (*csvWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return nil, err
	}
	return &csvWriter{w: cw}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c *csvWriter) Write(rec Record) error {
	name := ""
	if rec.OsmName != nil {
		name = *rec.OsmName
	}
	return c.w.Write([]string{
		strconv.FormatInt(int64(rec.ID), 10),
		strconv.FormatInt(rec.OsmID, 10),
		name,
		strconv.FormatInt(int64(rec.Clazz), 10),
		strconv.FormatInt(int64(rec.Source), 10),
		strconv.FormatInt(int64(rec.Target), 10),
		formatFloat(rec.Km),
		strconv.FormatInt(int64(rec.Kmh), 10),
		formatFloat(rec.Cost),
		formatFloat(rec.ReverseCost),
		formatFloat(rec.X1),
		formatFloat(rec.Y1),
		formatFloat(rec.X2),
		formatFloat(rec.Y2),
		rec.GeomWay,
	})
}

func (c *csvWriter) Close() error {
	c.w.Flush()
	return c.w.Error()
}

// jsonWriter. newline delimited, one object per record
type jsonWriter struct {
	enc *json.Encoder
}

func (j *jsonWriter) Write(rec Record) error {
	return j.enc.Encode(rec)
}

func (j *jsonWriter) Close() error {
	return nil
}

type avroWriter struct {
	ocf   *goavro.OCFWriter
	batch []interface{}
}

const avroBatchSize = 512

func newAvroWriter(w io.Writer) (*avroWriter, error) {
	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:      w,
		Schema: avroSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("avro writer: %w", err)
	}
	return &avroWriter{ocf: ocf, batch: make([]interface{}, 0, avroBatchSize)}, nil
}

func (a *avroWriter) Write(rec Record) error {
	var name interface{}
	if rec.OsmName != nil {
		name = goavro.Union("string", *rec.OsmName)
	}
	a.batch = append(a.batch, map[string]interface{}{
		"id":           goavro.Union("int", rec.ID),
		"osm_id":       goavro.Union("long", rec.OsmID),
		"osm_name":     name,
		"clazz":        goavro.Union("int", rec.Clazz),
		"source":       goavro.Union("int", rec.Source),
		"target":       goavro.Union("int", rec.Target),
		"km":           goavro.Union("double", rec.Km),
		"kmh":          goavro.Union("int", rec.Kmh),
		"cost":         goavro.Union("double", rec.Cost),
		"reverse_cost": goavro.Union("double", rec.ReverseCost),
		"x1":           goavro.Union("double", rec.X1),
		"y1":           goavro.Union("double", rec.Y1),
		"x2":           goavro.Union("double", rec.X2),
		"y2":           goavro.Union("double", rec.Y2),
		"geom_way":     goavro.Union("string", rec.GeomWay),
	})
	if len(a.batch) == avroBatchSize {
		return a.flush()
	}
	return nil
}

func (a *avroWriter) flush() error {
	if len(a.batch) == 0 {
		return nil
	}
	err := a.ocf.Append(a.batch)
	a.batch = a.batch[:0]
	return err
}

func (a *avroWriter) Close() error {
	return a.flush()
}
