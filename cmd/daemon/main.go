// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/plantline/plantline/internal/api"
	"github.com/plantline/plantline/internal/audit"
	"github.com/plantline/plantline/internal/board"
	"github.com/plantline/plantline/internal/cache"
	"github.com/plantline/plantline/internal/config"
	"github.com/plantline/plantline/internal/health"
	pllog "github.com/plantline/plantline/internal/log"
	"github.com/plantline/plantline/internal/orders"
	"github.com/plantline/plantline/internal/persistence/sqlite"
	"github.com/plantline/plantline/internal/telemetry"
	"github.com/plantline/plantline/internal/transition"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Auto-load ${PLANTLINE_DATA_DIR}/plantline.yaml when no explicit path
	// is given, so operator-edited config survives restarts.
	effectivePath := strings.TrimSpace(*configPath)
	if effectivePath == "" {
		dataDir := strings.TrimSpace(config.ParseString("PLANTLINE_DATA_DIR", "./data"))
		autoPath := filepath.Join(dataDir, "plantline.yaml")
		if _, err := os.Stat(autoPath); err == nil {
			effectivePath = autoPath
		}
	}

	cfg, err := config.Load(effectivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "plantline: %v\n", err)
		os.Exit(1)
	}

	pllog.Configure(pllog.Config{
		Level:   cfg.LogLevel,
		Service: "plantline",
		Version: version,
	})
	logger := pllog.WithComponent("daemon")

	logger.Info().
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.Listen).
		Msg("starting plantline")
	if effectivePath != "" {
		logger.Info().Str("path", effectivePath).Msg("configuration loaded from file")
	}
	if cfg.APIToken == "" {
		logger.Warn().Msg("API token NOT configured, auth disabled. Set PLANTLINE_API_TOKEN.")
	}

	tracer, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    "plantline",
		ServiceVersion: version,
		Environment:    config.ParseString("PLANTLINE_ENV", "production"),
		Endpoint:       cfg.OTel.Endpoint,
		SamplingRate:   cfg.OTel.SamplingRate,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	healthMgr := health.NewManager(version)
	store, cleanup, err := openStore(cfg, healthMgr, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open order store")
	}
	defer cleanup()

	boardCache, cacheCleanup := openCache(cfg, healthMgr, logger)
	defer cacheCleanup()
	boards := board.New(store, boardCache, cfg.Board.CacheTTL)
	exec := transition.New(store, audit.NewLogger())

	holder := config.NewHolder(cfg, effectivePath)
	server := api.NewServer(holder, store, exec, boards, healthMgr)

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.Listen).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return holder.Watch(gctx)
	})

	// SIGHUP triggers an explicit reload, same path as the file watcher.
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				if err := holder.Reload(gctx); err != nil {
					logger.Warn().Err(err).Msg("SIGHUP reload failed")
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("daemon failed")
	}
	logger.Info().Msg("server exiting")
}

// openStore selects the order store backend from the configuration and
// registers its readiness check. The returned cleanup closes the database.
func openStore(cfg config.Config, healthMgr *health.Manager, logger zerolog.Logger) (orders.Service, func(), error) {
	dbPath := cfg.DBPath()
	if dbPath == "" {
		logger.Warn().Msg("no data directory configured, using in-memory order store")
		healthMgr.RegisterChecker(health.NewPingChecker("store", func(context.Context) error { return nil }))
		return orders.NewMemStore(), func() {}, nil
	}

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	if _, err := os.Stat(dbPath); err == nil {
		problems, verr := sqlite.VerifyIntegrity(dbPath, "quick")
		if verr != nil {
			return nil, nil, fmt.Errorf("database integrity: %w", verr)
		}
		if len(problems) > 0 {
			return nil, nil, fmt.Errorf("database integrity: %s", strings.Join(problems, "; "))
		}
	}

	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, nil, err
	}
	store, err := orders.NewSQLStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	logger.Info().Str("path", dbPath).Msg("sqlite order store opened")
	healthMgr.RegisterChecker(health.NewPingChecker("store", db.PingContext))
	return store, func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing database")
		}
	}, nil
}

// openCache builds the board cache per configuration, degrading to the
// in-process cache when Redis is unreachable. The returned cleanup stops the
// backend's background work.
func openCache(cfg config.Config, healthMgr *health.Manager, logger zerolog.Logger) (cache.Cache, func()) {
	memory := func() (cache.Cache, func()) {
		mc := cache.NewMemoryCache(time.Minute)
		return mc, mc.Stop
	}

	switch cfg.Board.CacheBackend {
	case "none":
		return cache.NewNoopCache(), func() {}
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, pllog.WithComponent("cache"))
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, falling back to in-memory board cache")
			return memory()
		}
		healthMgr.RegisterChecker(health.NewPingChecker("cache", redisCache.Ping))
		return redisCache, func() {
			if err := redisCache.Close(); err != nil {
				logger.Warn().Err(err).Msg("closing redis cache")
			}
		}
	default:
		return memory()
	}
}
