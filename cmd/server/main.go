package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agenthands/kinship/internal/cache"
	"github.com/agenthands/kinship/internal/config"
	"github.com/agenthands/kinship/internal/logging"
	"github.com/agenthands/kinship/internal/metrics"
	"github.com/agenthands/kinship/internal/server"
	"github.com/agenthands/kinship/internal/telemetry"
	"github.com/agenthands/kinship/internal/wikidata"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the TOML config file")
	flag.Parse()

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	reg := metrics.NewRegistry()

	var store *cache.Store
	if cfg.Cache.Enabled {
		store, err = cache.Open(cfg.Cache, logger)
		if err != nil {
			log.Fatalf("Failed to open response cache: %v", err)
		}
		defer store.Close()
	}

	opts := wikidata.OptionsFromConfig(cfg.Wikidata)
	opts.Logger = logger
	opts.Metrics = reg
	client := wikidata.NewClient(opts)

	srv, err := server.NewServer(cfg, server.Deps{
		Fetcher:  client,
		Searcher: client,
		Cache:    store,
		Metrics:  reg,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
