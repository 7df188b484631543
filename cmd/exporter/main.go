package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/export"
	"github.com/lintang-b-s/osmrouter/pkg/logger"
	"github.com/lintang-b-s/osmrouter/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "config file (default ./data/config.yaml)")
	graphFile  = flag.String("graph", "", "graph artifact written by the importer (overrides GRAPH_FILE)")
	format     = flag.String("format", "csv", "output format: csv, json or avro")
	output     = flag.String("output", "", "output file (default: graph path with the format extension)")
	workers    = flag.Int("workers", 0, "record builder goroutines (default: number of cpu)")
)

func main() {
	flag.Parse()
	if err := util.ReadConfig(*configPath); err != nil {
		panic(err)
	}
	viper.SetDefault("GRAPH_FILE", "./data/map.graph")

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	path := viper.GetString("GRAPH_FILE")
	if *graphFile != "" {
		path = *graphFile
	}

	if err := run(log, path); err != nil {
		log.Error("export failed", zap.String("graph", path), zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.Logger, path string) error {
	outFormat, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	outPath := *output
	if outPath == "" {
		outPath = export.OutputPath(path, outFormat)
	}

	graph, err := datastructure.ReadGraph(path)
	if err != nil {
		return err
	}
	if err := graph.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return export.NewExporter(graph, log, *workers).ExportFile(ctx, outPath, outFormat)
}
