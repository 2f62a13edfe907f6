// Command freecoach-mcp exposes the coaching engine to MCP clients over
// stdio. With -url it proxies to a running FreeCoach server; otherwise it
// opens the database from -config and runs the engine in-process.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/freecoach/internal/config"
	"github.com/meltforce/freecoach/internal/mcp"
	"github.com/meltforce/freecoach/internal/plan"
	"github.com/meltforce/freecoach/internal/plancache"
	"github.com/meltforce/freecoach/internal/records"
	"github.com/meltforce/freecoach/internal/resttimer"
	"github.com/meltforce/freecoach/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	remoteURL := flag.String("url", "", "base URL of a FreeCoach server (remote mode)")
	apiKey := flag.String("api-key", os.Getenv("FREECOACH_API_KEY"), "API key for remote mode")
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	flag.Parse()

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *remoteURL != "" {
		ds = mcp.NewHTTPClient(*remoteURL, *apiKey)
		log.Info("FreeCoach MCP starting", "version", Version, "mode", "remote", "url", *remoteURL)
	} else {
		local, cleanup, err := openLocal(*configPath, log)
		if err != nil {
			log.Error("failed to start local engine", "error", err)
			os.Exit(1)
		}
		defer cleanup()
		ds = local
		log.Info("FreeCoach MCP starting", "version", Version, "mode", "local")
	}

	if err := server.ServeStdio(mcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

// openLocal wires the engine against the configured database. The AI
// provider is used when enabled; the cache and baseline levels work offline.
func openLocal(path string, log *slog.Logger) (*mcp.Local, func(), error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}

	cache, err := plancache.Open(cfg.PlanCache.Driver, cfg.PlanCache.Path, cfg.PlanCache.TTL, log)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	var ai plan.AIProvider
	if cfg.AI.Enabled {
		ai = plan.NewOpenAIProvider(plan.OpenAIConfig{
			BaseURL:           cfg.AI.BaseURL,
			APIKey:            cfg.AI.APIKey,
			Model:             cfg.AI.Model,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
		}, log)
	}
	checker := plan.NewHTTPChecker(cfg.Connectivity.ProbeURL, cfg.Connectivity.Timeout, cfg.Connectivity.Offline)
	orchestrator := plan.NewOrchestrator(ai, cache, plan.Baseline{}, checker, plan.Options{
		AITimeout: cfg.AI.Timeout,
		CacheTTL:  cfg.PlanCache.TTL,
	}, log)

	local := &mcp.Local{
		Planner: plan.NewPipeline(db, db, db, orchestrator, log),
		Rest:    resttimer.NewResolver(db, db, log),
		Records: records.NewDetector(db, db, log),
		Catalog: db,
	}
	cleanup := func() {
		_ = cache.Close()
		db.Close()
	}
	return local, cleanup, nil
}
