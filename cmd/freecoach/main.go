package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meltforce/freecoach/internal/config"
	"github.com/meltforce/freecoach/internal/ingest/alpha"
	"github.com/meltforce/freecoach/internal/maintenance"
	"github.com/meltforce/freecoach/internal/plan"
	"github.com/meltforce/freecoach/internal/plancache"
	"github.com/meltforce/freecoach/internal/records"
	"github.com/meltforce/freecoach/internal/resttimer"
	"github.com/meltforce/freecoach/internal/server"
	"github.com/meltforce/freecoach/internal/session"
	"github.com/meltforce/freecoach/internal/storage"
	"github.com/meltforce/freecoach/internal/templates"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("FreeCoach starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Plan cache
	cache, err := plancache.Open(cfg.PlanCache.Driver, cfg.PlanCache.Path, cfg.PlanCache.TTL, log)
	if err != nil {
		log.Error("failed to open plan cache", "error", err)
		os.Exit(1)
	}
	defer func() { _ = cache.Close() }()
	log.Info("plan cache opened", "driver", cfg.PlanCache.Driver, "path", cfg.PlanCache.Path)

	// Plan generation chain
	var ai plan.AIProvider
	if cfg.AI.Enabled {
		ai = plan.NewOpenAIProvider(plan.OpenAIConfig{
			BaseURL:           cfg.AI.BaseURL,
			APIKey:            cfg.AI.APIKey,
			Model:             cfg.AI.Model,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
		}, log)
		log.Info("AI plan provider enabled", "model", cfg.AI.Model)
	} else {
		log.Info("AI plan provider disabled, using cache and baseline only")
	}
	checker := plan.NewHTTPChecker(cfg.Connectivity.ProbeURL, cfg.Connectivity.Timeout, cfg.Connectivity.Offline)
	orchestrator := plan.NewOrchestrator(ai, cache, plan.Baseline{}, checker, plan.Options{
		AITimeout: cfg.AI.Timeout,
		CacheTTL:  cfg.PlanCache.TTL,
	}, log)
	pipeline := plan.NewPipeline(db, db, db, orchestrator, log)

	// Sessions
	rest := resttimer.NewResolver(db, db, log)
	countdown := resttimer.NewCountdown(func() { log.Info("rest period finished") })
	detector := records.NewDetector(db, db, log)
	tracker := session.NewTracker(db, db, rest, detector, countdown, log)

	rec, err := tracker.Recover(ctx)
	if err != nil {
		log.Error("session recovery failed", "error", err)
		os.Exit(1)
	}
	if rec != nil {
		log.Info("open session awaiting recovery", "session_id", rec.Session.ID, "status", rec.Session.Status, "crashed", rec.Crashed)
	}

	// Background maintenance
	sched, err := maintenance.New(orchestrator, tracker, maintenance.Schedules{
		CacheSweep: cfg.Maintenance.CacheSweep,
		StaleSweep: cfg.Maintenance.StaleSweep,
	}, log)
	if err != nil {
		log.Error("failed to schedule maintenance", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	// Create server
	srv := server.New(server.Deps{
		Planner:   pipeline,
		Sessions:  tracker,
		Templates: templates.NewService(db, db, log),
		Records:   detector,
		Rest:      rest,
		Store:     db,
		Alpha:     alpha.NewImporter(db, detector, log),
	}, cfg.Auth.APIKey, log)

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	countdown.Cancel()
	log.Info("server stopped")
}
