package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dd0wney/plcnet/pkg/logging"
	"github.com/dd0wney/plcnet/pkg/metrics"
	"github.com/dd0wney/plcnet/pkg/plc"
	"github.com/dd0wney/plcnet/pkg/server"
	"github.com/dd0wney/plcnet/pkg/syncstate"
	"github.com/dd0wney/plcnet/pkg/topology"
	"github.com/dd0wney/plcnet/pkg/transport"
)

func main() {
	topologyPath := flag.String("topology", "topology.yaml", "Topology file")
	index := flag.Int("index", 0, "Index of this PLC in the topology")
	db := flag.String("db", "", "Sync store override (sqlite file path or postgres:// URL)")
	metricsAddr := flag.String("metrics-addr", "", "Serve prometheus metrics on this address (empty disables)")
	pollInterval := flag.Duration("poll-interval", 10*time.Millisecond, "Barrier poll interval")
	broadcastInterval := flag.Duration("broadcast-interval", 50*time.Millisecond, "Snapshot broadcast interval")
	outputDir := flag.String("output", "output", "Directory for the telemetry artifact")
	flag.Parse()

	topo, err := topology.Load(*topologyPath)
	if err != nil {
		log.Fatalf("Failed to load topology: %v", err)
	}
	if *index < 0 || *index >= len(topo.PLCs) {
		log.Fatalf("PLC index %d out of range (topology has %d plcs)", *index, len(topo.PLCs))
	}
	desc := topo.PLCs[*index]

	fmt.Printf("plcnet - Lock-Step PLC Runtime\n")
	fmt.Printf("==============================\n\n")
	fmt.Printf("  PLC:       %s (%d of %d)\n", desc.Name, *index+1, len(topo.PLCs))
	fmt.Printf("  Tag reads: %s\n", desc.PublicAddress)
	fmt.Printf("  Broadcast: %s\n", desc.LocalAddress)
	fmt.Printf("  Sensors:   %d, actuators: %d\n", len(desc.Sensors), len(desc.Actuators))
	fmt.Printf("  Rules:     %d controls, %d attacks\n\n", len(desc.Controls), len(desc.Attacks))

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(topo.LogLevel))

	storeCfg := topo.Store
	if *db != "" {
		if strings.HasPrefix(*db, "postgres://") || strings.HasPrefix(*db, "postgresql://") {
			storeCfg = topology.StoreConfig{Driver: "postgres", URL: *db}
		} else {
			storeCfg = topology.StoreConfig{Driver: "sqlite", Path: *db}
		}
	}

	ctx := context.Background()
	syncStore, err := syncstate.Open(ctx, storeCfg)
	if err != nil {
		log.Fatalf("Failed to open sync store: %v", err)
	}
	defer syncStore.Close()

	cfg := topology.DefaultRuntimeConfig()
	cfg.PollInterval = *pollInterval
	cfg.BroadcastInterval = *broadcastInterval
	cfg.OutputDir = *outputDir

	reg := metrics.DefaultRegistry()

	lifecycle := server.NewLifecycle(logger)
	go lifecycle.HandleSignals()
	if *metricsAddr != "" {
		lifecycle.ServeMetrics(*metricsAddr, reg.GetPrometheusRegistry())
	}

	runtime, err := plc.NewRuntime(topo, *index, cfg, plc.Options{
		Factory:    transport.DefaultFactory(),
		SyncStore:  syncStore,
		Registry:   reg,
		Logger:     logger,
		ShutdownCh: lifecycle.ShutdownChannel(),
	})
	if err != nil {
		log.Fatalf("Failed to build PLC runtime: %v", err)
	}

	if err := runtime.PreLoop(ctx); err != nil {
		log.Fatalf("Pre-loop failed: %v", err)
	}

	loopErr := runtime.MainLoop(ctx)
	lifecycle.Shutdown()

	if err := runtime.Shutdown(loopErr); err != nil {
		logger.Error("plc exited with error", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("plc stopped", logging.PLC(desc.Name))
}
