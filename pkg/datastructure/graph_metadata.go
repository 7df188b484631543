package datastructure

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lintang-b-s/osmrouter/pkg"
	"github.com/pkg/errors"
)

// GraphMetadata is written next to the graph file as <graph>.meta.json.
type GraphMetadata struct {
	Version   int            `json:"version"`
	Source    SourceMetadata `json:"source"`
	Import    ImportMetadata `json:"import"`
	Output    OutputMetadata `json:"output"`
	CreatedAt time.Time      `json:"generated_at"`
}

type SourceMetadata struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
}

type ImportMetadata struct {
	WaysAccepted     int `json:"ways_accepted"`
	WaysUnclassified int `json:"ways_unclassified"`
	NodesDropped     int `json:"nodes_dropped"`
	BarriersSplit    int `json:"barriers_split"`
}

type OutputMetadata struct {
	Filename      string `json:"filename"`
	SizeBytes     int64  `json:"size_bytes"`
	SHA256        string `json:"sha256"`
	VerticesCount int    `json:"vertices_count"`
	EdgesCount    int    `json:"edges_count"`
	SCCsCount     int    `json:"sccs_count"`
}

func MetadataPath(graphFile string) string {
	return graphFile + ".meta.json"
}

func GenerateMetadata(inputFile, graphFile string, g *Graph, stats ImportMetadata) (*GraphMetadata, error) {
	source, err := fileInfo(inputFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read source file")
	}
	output, err := fileInfo(graphFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read graph file")
	}

	return &GraphMetadata{
		Version: pkg.GRAPH_FORMAT_VERSION,
		Source: SourceMetadata{
			Filename:  filepath.Base(inputFile),
			SizeBytes: source.SizeBytes,
			SHA256:    source.SHA256,
		},
		Import: stats,
		Output: OutputMetadata{
			Filename:      filepath.Base(graphFile),
			SizeBytes:     output.SizeBytes,
			SHA256:        output.SHA256,
			VerticesCount: g.NumberOfVertices(),
			EdgesCount:    g.NumberOfEdges(),
			SCCsCount:     g.NumberOfSCCs(),
		},
		CreatedAt: time.Now().UTC(),
	}, nil
}

func fileInfo(path string) (SourceMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return SourceMetadata{}, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	h := sha256.New()
	size, err := io.Copy(h, file)
	if err != nil {
		return SourceMetadata{}, errors.Wrap(err, "failed to calculate checksum")
	}
	return SourceMetadata{
		Filename:  filepath.Base(path),
		SizeBytes: size,
		SHA256:    fmt.Sprintf("%x", h.Sum(nil)),
	}, nil
}

func WriteMetadata(metadata *GraphMetadata, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrap(err, "failed to create metadata file")
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(metadata); err != nil {
		return errors.Wrap(err, "failed to encode metadata")
	}

	return nil
}

func LoadMetadata(filePath string) (*GraphMetadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open metadata file")
	}
	defer file.Close()

	var metadata GraphMetadata
	if err := json.NewDecoder(file).Decode(&metadata); err != nil {
		return nil, errors.Wrap(err, "failed to decode metadata")
	}

	return &metadata, nil
}

// Validate. compares the sidecar against the graph that was actually loaded.
func (m *GraphMetadata) Validate(g *Graph) error {
	if m.Version != pkg.GRAPH_FORMAT_VERSION {
		return errors.Wrapf(ErrGraphVersionMismatch, "metadata version %d", m.Version)
	}
	if m.Output.VerticesCount != g.NumberOfVertices() || m.Output.EdgesCount != g.NumberOfEdges() {
		return errors.Errorf("metadata describes %d vertices/%d edges, graph has %d/%d",
			m.Output.VerticesCount, m.Output.EdgesCount, g.NumberOfVertices(), g.NumberOfEdges())
	}
	return nil
}

// VerifyGraphFile. checksum of the graph file on disk must match the one recorded at import.
func (m *GraphMetadata) VerifyGraphFile(graphFile string) error {
	if m.Output.SHA256 == "" {
		return nil
	}
	info, err := fileInfo(graphFile)
	if err != nil {
		return err
	}
	if info.SHA256 != m.Output.SHA256 {
		return errors.Errorf("graph file checksum %s does not match metadata %s", info.SHA256, m.Output.SHA256)
	}
	return nil
}
