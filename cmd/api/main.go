package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashguru/gametree/internal/bootstrap"
	"github.com/shashguru/gametree/internal/eco"
	"github.com/shashguru/gametree/internal/eval"
	"github.com/shashguru/gametree/internal/httpapi"
	"github.com/shashguru/gametree/internal/logx"
	"github.com/shashguru/gametree/internal/oracle"
	"github.com/shashguru/gametree/internal/session"
	"github.com/shashguru/gametree/internal/store"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "optional env-format config file")
		addr    = flag.String("addr", "", "listen address (overrides SERVER_ADDR)")
	)
	flag.Parse()

	cfg, err := bootstrap.Setup(*cfgPath)
	if err != nil {
		panic(err)
	}
	if *addr != "" {
		cfg.ServerAddr = *addr
	}

	logger := logx.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	games, err := store.NewGameStore(cfg.DataDir, logger.With().Str("component", "store").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("open game store")
	}
	defer games.Close()

	// ECO data is optional; the tree works without opening names.
	var ecoDB *eco.Database
	if cfg.EcoDir != "" {
		ecoDB = eco.NewDatabase()
		if err := ecoDB.LoadDir(cfg.EcoDir); err != nil {
			logger.Warn().Err(err).Str("dir", cfg.EcoDir).Msg("failed to load ECO database")
			ecoDB = nil
		} else {
			logger.Info().Int("openings", ecoDB.Count()).Msg("ECO database loaded")
		}
	}

	// Redis-backed evaluation cache, if configured.
	var cache *eval.Cache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable - running without eval cache")
		} else {
			cache = eval.NewCache(rdb, logger.With().Str("component", "cache").Logger())
			logger.Info().Msg("eval cache connected")
		}
		cancel()
	}

	// Scorer selection: a local engine wins over the remote backend; with
	// neither configured the evaluation endpoints report unavailable.
	var orch *eval.Orchestrator
	switch {
	case cfg.StockfishPath != "":
		scorer, err := eval.NewEngineScorer(eval.EngineConfig{
			Path:     cfg.StockfishPath,
			PoolSize: cfg.EnginePoolSize,
			Threads:  cfg.EngineThreads,
			HashMB:   cfg.EngineHashMB,
		}, logger.With().Str("component", "engine").Logger())
		if err != nil {
			logger.Fatal().Err(err).Msg("start engine pool")
		}
		defer scorer.Close()
		orch = eval.NewOrchestrator(scorer, cache, logger.With().Str("component", "eval").Logger(), cfg.EvalConcurrency)
		logger.Info().Str("path", cfg.StockfishPath).Int("pool", cfg.EnginePoolSize).Msg("engine scorer ready")
	case cfg.EvalBackendURL != "":
		scorer := eval.NewRemoteScorer(cfg.EvalBackendURL)
		orch = eval.NewOrchestrator(scorer, cache, logger.With().Str("component", "eval").Logger(), cfg.EvalConcurrency)
		logger.Info().Str("url", cfg.EvalBackendURL).Msg("remote scorer ready")
	}

	reg := session.NewRegistry(logger.With().Str("component", "session").Logger())
	go reg.Run(ctx, 5*time.Minute, time.Duration(cfg.SessionTTLMinutes)*time.Minute)

	srv := &http.Server{
		Addr: cfg.ServerAddr,
		Handler: httpapi.NewRouter(logger, reg, oracle.New(), orch, cache, games, ecoDB,
			httpapi.EvalDefaults{Depth: cfg.EvalDepth, Lines: cfg.EvalLines}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("api server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}
}
