package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/logger"
	"github.com/lintang-b-s/osmrouter/pkg/osmparser"
	"github.com/lintang-b-s/osmrouter/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath   = flag.String("config", "", "config file (default ./data/config.yaml)")
	inputFile    = flag.String("input", "", "osm extract, .osm.pbf / .osm / .xml (overrides OSM_FILE)")
	outputFile   = flag.String("output", "", "graph artifact path (overrides GRAPH_FILE)")
	useMaxSpeed  = flag.Bool("use_max_speed", false, "prefer a parseable maxspeed tag over the speed table")
	simplify     = flag.Float64("simplify_tolerance", -1, "edge geometry simplification tolerance in meter, 0 disables")
	showProgress = flag.Bool("progress", false, "show scanning progress bars")
)

func setDefaults() {
	viper.SetDefault("OSM_FILE", "./data/map.osm.pbf")
	viper.SetDefault("GRAPH_FILE", "./data/map.graph")
	viper.SetDefault("USE_MAX_SPEED", false)
	viper.SetDefault("SIMPLIFY_TOLERANCE_METERS", 1.0)
	viper.SetDefault("SHOW_PROGRESS", false)
}

func main() {
	flag.Parse()
	if err := util.ReadConfig(*configPath); err != nil {
		panic(err)
	}
	setDefaults()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	mapFile := viper.GetString("OSM_FILE")
	if *inputFile != "" {
		mapFile = *inputFile
	}
	graphFile := viper.GetString("GRAPH_FILE")
	if *outputFile != "" {
		graphFile = *outputFile
	}

	cfg := osmparser.DefaultConfig()
	cfg.UseMaxSpeed = viper.GetBool("USE_MAX_SPEED") || *useMaxSpeed
	cfg.SimplifyToleranceMeters = viper.GetFloat64("SIMPLIFY_TOLERANCE_METERS")
	if *simplify >= 0 {
		cfg.SimplifyToleranceMeters = *simplify
	}
	cfg.ShowProgress = viper.GetBool("SHOW_PROGRESS") || *showProgress

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg, mapFile, graphFile); err != nil {
		if errors.Is(err, osmparser.ErrUnsupportedFormat) {
			log.Error("unsupported input", zap.String("input", mapFile), zap.Error(err))
		} else {
			log.Error("import failed", zap.String("input", mapFile), zap.Error(err))
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *zap.Logger, cfg osmparser.Config, mapFile, graphFile string) error {
	start := time.Now()
	log.Info("importing osm extract",
		zap.String("input", mapFile),
		zap.String("output", graphFile),
		zap.Bool("use_max_speed", cfg.UseMaxSpeed),
		zap.Float64("simplify_tolerance_meters", cfg.SimplifyToleranceMeters))

	parser := osmparser.NewOSMParser(log, cfg)
	graph, err := parser.ParseFile(ctx, mapFile)
	if err != nil {
		return err
	}
	if err := graph.Validate(); err != nil {
		return err
	}

	if err := graph.WriteGraph(graphFile); err != nil {
		return err
	}

	metadata, err := datastructure.GenerateMetadata(mapFile, graphFile, graph, parser.GetStats().ToMetadata())
	if err != nil {
		return err
	}
	if err := datastructure.WriteMetadata(metadata, datastructure.MetadataPath(graphFile)); err != nil {
		return err
	}

	log.Info("import done",
		zap.Int("vertices", graph.NumberOfVertices()),
		zap.Int("edges", graph.NumberOfEdges()),
		zap.Int("sccs", graph.NumberOfSCCs()),
		zap.String("graph_sha256", metadata.Output.SHA256),
		zap.Duration("took", time.Since(start)))
	return nil
}
