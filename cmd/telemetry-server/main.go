package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mission-control/telemetry/internal/config"
	"github.com/mission-control/telemetry/internal/logging"
	"github.com/mission-control/telemetry/internal/mock"
	"github.com/mission-control/telemetry/internal/server"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	nodeName := flag.String("node", "", "Override reported node name")
	seed := flag.Int64("seed", 0, "Random seed (0 uses the clock)")
	flag.Parse()

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if *nodeName != "" {
		cfg.NodeName = *nodeName
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, os.Stdout, version, "telemetry-server")

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	node := mock.ResolveNodeName(cfg.NodeName)
	gen := mock.NewGenerator(node, cfg.Version, *seed)
	logger.Info("telemetry service active", "node", node, "version", cfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	broadcaster := server.NewBroadcaster(gen, logger)
	go broadcaster.Run(ctx, cfg.BroadcastInterval)

	srv := server.New(gen, broadcaster, logger)
	if err := server.ListenAndServe(ctx, cfg.Addr(), srv.Handler(), logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
