package engine

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/engine/routing"
	"github.com/lintang-b-s/osmrouter/pkg/spatialindex"
	"go.uber.org/zap"
)

var ErrGraphLoad = errors.New("failed to load graph")

type Config struct {
	GraphFile      string
	RouteCacheSize int
}

// Engine. everything a query needs, built once at startup and shared read-only by all requests.
type Engine struct {
	graph         *datastructure.Graph
	metadata      *datastructure.GraphMetadata
	spatialIndex  *spatialindex.Rtree
	routingEngine *routing.RoutingEngine
}

func (e *Engine) GetRoutingEngine() *routing.RoutingEngine {
	return e.routingEngine
}

func (e *Engine) GetSpatialIndex() *spatialindex.Rtree {
	return e.spatialIndex
}

func (e *Engine) GetGraph() *datastructure.Graph {
	return e.graph
}

// GetMetadata. nil when the graph was loaded without a sidecar.
func (e *Engine) GetMetadata() *datastructure.GraphMetadata {
	return e.metadata
}

func NewEngine(cfg Config, logger *zap.Logger) (*Engine, error) {
	logger.Info("Starting query engine...")

	logger.Info("Reading graph from ", zap.String("graphFilePath", cfg.GraphFile))
	graph, err := datastructure.ReadGraph(cfg.GraphFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGraphLoad, err)
	}
	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGraphLoad, err)
	}

	metadata, err := loadMetadata(cfg.GraphFile, graph, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGraphLoad, err)
	}

	rt := spatialindex.NewRtree()
	rt.Build(graph, logger)

	routeCache, err := routing.NewRouteCache(cfg.RouteCacheSize)
	if err != nil {
		return nil, err
	}

	logger.Info("Query engine ready",
		zap.Int("vertices", graph.NumberOfVertices()),
		zap.Int("edges", graph.NumberOfEdges()),
		zap.Int("sccs", graph.NumberOfSCCs()),
		zap.Int("route_cache_size", cfg.RouteCacheSize))

	return NewEngineFromGraph(graph, metadata, rt, routing.NewRoutingEngine(graph, logger, routeCache)), nil
}

// NewEngineFromGraph. wires an engine around an already built graph.
func NewEngineFromGraph(graph *datastructure.Graph, metadata *datastructure.GraphMetadata, rt *spatialindex.Rtree,
	re *routing.RoutingEngine) *Engine {
	return &Engine{
		graph:         graph,
		metadata:      metadata,
		spatialIndex:  rt,
		routingEngine: re,
	}
}

func loadMetadata(graphFile string, graph *datastructure.Graph, logger *zap.Logger) (*datastructure.GraphMetadata, error) {
	metaPath := datastructure.MetadataPath(graphFile)
	metadata, err := datastructure.LoadMetadata(metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("graph metadata not found, skipping provenance checks", zap.String("path", metaPath))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := metadata.Validate(graph); err != nil {
		return nil, err
	}
	if err := metadata.VerifyGraphFile(graphFile); err != nil {
		return nil, err
	}
	logger.Info("graph metadata verified",
		zap.String("source", metadata.Source.Filename),
		zap.Time("generated_at", metadata.CreatedAt))
	return metadata, nil
}
