package main

import (
	"context"

	"github.com/pandu-nav/pandu/pkg/http"
	"github.com/pandu-nav/pandu/pkg/http/usecases"
	"github.com/pandu-nav/pandu/pkg/logger"
	"github.com/pandu-nav/pandu/pkg/navigation"
	"github.com/pandu-nav/pandu/pkg/osm"
	"github.com/pandu-nav/pandu/pkg/roadgraph"
	"github.com/pandu-nav/pandu/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := util.ReadConfig(); err != nil {
		log.Warn("no config file, using defaults", zap.Error(err))
	}
	viper.SetDefault("MAP_FILE", "")
	viper.SetDefault("USE_RATE_LIMIT", false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	graph := roadgraph.NewRoadGraph(log)

	if mapFile := viper.GetString("MAP_FILE"); mapFile != "" {
		ingester := osm.NewIngester(graph, log)
		if err := osm.LoadFile(ctx, mapFile, ingester, log); err != nil {
			log.Error("map load failed, falling back to demo network", zap.Error(err))
			roadgraph.BuildDemoNetwork(graph)
		}
	} else {
		roadgraph.BuildDemoNetwork(graph)
	}

	// the process-wide engine instance; all access goes through the service
	engine := navigation.NewEngine(graph, log)
	service := usecases.NewNavigationService(log, engine)

	api := http.NewServer(log)
	if _, err := api.Use(ctx, log, viper.GetBool("USE_RATE_LIMIT"), service); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}

	sig := http.GracefulShutdown()
	log.Info("navigation engine server stopped", zap.String("signal", sig.String()))
}
