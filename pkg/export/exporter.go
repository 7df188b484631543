package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lintang-b-s/osmrouter/pkg/concurrent"
	da "github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/util"
	"go.uber.org/zap"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format int

const (
	FORMAT_CSV Format = iota
	FORMAT_JSON
	FORMAT_AVRO
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FORMAT_CSV, nil
	case "json", "ndjson":
		return FORMAT_JSON, nil
	case "avro":
		return FORMAT_AVRO, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) String() string {
	switch f {
	case FORMAT_CSV:
		return "csv"
	case FORMAT_JSON:
		return "json"
	case FORMAT_AVRO:
		return "avro"
	}
	return "unknown"
}

// OutputPath. graph path with its extension replaced by the format, e.g. data/jogja.graph -> data/jogja.csv
func OutputPath(graphFile string, format Format) string {
	return strings.TrimSuffix(graphFile, filepath.Ext(graphFile)) + "." + format.String()
}

const batchSize = 1024

type edgeBatch struct {
	start, end da.Index
}

type recordBatch struct {
	start   da.Index
	records []Record
	emit    []bool
	err     error
}

type Exporter struct {
	graph      *da.Graph
	log        *zap.Logger
	numWorkers int
}

func NewExporter(graph *da.Graph, log *zap.Logger, numWorkers int) *Exporter {
	if numWorkers < 1 {
		numWorkers = runtime.NumCPU()
	}
	return &Exporter{graph: graph, log: log, numWorkers: numWorkers}
}

/*
Records. builds the rows on the worker pool.
batches finish in any order, each one is copied into its slot, then the rows are numbered densely in edge id order.
*/
func (ex *Exporter) Records(ctx context.Context) ([]Record, error) {
	m := ex.graph.NumberOfEdges()
	jobs := make([]edgeBatch, 0, m/batchSize+1)
	for start := 0; start < m; start += batchSize {
		end := util.MinG(start+batchSize, m)
		jobs = append(jobs, edgeBatch{start: da.Index(start), end: da.Index(end)})
	}

	wp := concurrent.NewWorkerPool[edgeBatch, recordBatch](ex.numWorkers, len(jobs))
	results := wp.Run(jobs, func(job edgeBatch) recordBatch {
		if err := ctx.Err(); err != nil {
			return recordBatch{start: job.start, err: err}
		}
		res := recordBatch{
			start:   job.start,
			records: make([]Record, job.end-job.start),
			emit:    make([]bool, job.end-job.start),
		}
		for id := job.start; id < job.end; id++ {
			res.records[id-job.start], res.emit[id-job.start] = newRecord(ex.graph, id)
		}
		return res
	})

	all := make([]Record, m)
	emit := make([]bool, m)
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		copy(all[res.start:], res.records)
		copy(emit[res.start:], res.emit)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	records := make([]Record, 0, m)
	for i := range all {
		if !emit[i] {
			continue
		}
		rec := all[i]
		rec.ID = int32(len(records))
		records = append(records, rec)
	}
	return records, nil
}

// Export. writes every edge of the graph to w, returns the number of records written.
func (ex *Exporter) Export(ctx context.Context, w io.Writer, format Format) (int, error) {
	rw, err := newRecordWriter(w, format)
	if err != nil {
		return 0, err
	}

	records, err := ex.Records(ctx)
	if err != nil {
		return 0, err
	}
	for i := range records {
		if i%batchSize == 0 && ctx.Err() != nil {
			return i, ctx.Err()
		}
		if err := rw.Write(records[i]); err != nil {
			return i, fmt.Errorf("write record %d: %w", records[i].ID, err)
		}
	}
	if err := rw.Close(); err != nil {
		return len(records), err
	}
	return len(records), nil
}

// ExportFile. written to a temp file in the same directory & renamed into place, a failed or cancelled export leaves no partial file.
func (ex *Exporter) ExportFile(ctx context.Context, path string, format Format) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}

	n, err := ex.Export(ctx, tmp, format)
	if err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}

	ex.log.Info("exported edge table",
		zap.String("path", path),
		zap.String("format", format.String()),
		zap.Int("records", n))
	return nil
}
