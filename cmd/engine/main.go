package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/osmrouter/pkg/engine"
	"github.com/lintang-b-s/osmrouter/pkg/http"
	"github.com/lintang-b-s/osmrouter/pkg/http/usecases"
	"github.com/lintang-b-s/osmrouter/pkg/logger"
	"github.com/lintang-b-s/osmrouter/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "config file (default ./data/config.yaml)")
	graphFile  = flag.String("graph", "", "graph artifact written by the importer (overrides GRAPH_FILE)")
	port       = flag.Int("port", 0, "http port (overrides API_PORT)")
)

func setDefaults() {
	viper.SetDefault("GRAPH_FILE", "./data/map.graph")
	viper.SetDefault("SNAP_RADIUS_METERS", 500.0)
	viper.SetDefault("QUERY_TIMEOUT", "10s")
	viper.SetDefault("ROUTE_CACHE_SIZE", 1024)
	http.SetDefaults()
}

func main() {
	flag.Parse()
	if err := util.ReadConfig(*configPath); err != nil {
		panic(err)
	}
	setDefaults()
	if *graphFile != "" {
		viper.Set("GRAPH_FILE", *graphFile)
	}
	if *port != 0 {
		viper.Set("API_PORT", *port)
	}

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	routingEngine, err := engine.NewEngine(engine.Config{
		GraphFile:      viper.GetString("GRAPH_FILE"),
		RouteCacheSize: viper.GetInt("ROUTE_CACHE_SIZE"),
	}, log)
	if err != nil {
		log.Error("cannot start query engine", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	routingService := usecases.NewRoutingService(log, routingEngine.GetRoutingEngine(), routingEngine.GetSpatialIndex(),
		routingEngine.GetMetadata(), usecases.Config{
			SnapRadius:   viper.GetFloat64("SNAP_RADIUS_METERS"),
			QueryTimeout: viper.GetDuration("QUERY_TIMEOUT"),
		}, usecases.NewRoutingMetrics(registry))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := http.NewServer(log)
	if err := api.Use(ctx, routingService, registry); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}

	log.Info("osmrouter query server stopped")
}
