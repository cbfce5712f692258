package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/adapters/clock"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/adapters/memcache"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/adapters/redis"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/config"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/transport/ws"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/usecase/engine"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/usecase/game"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/usecase/hub"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/pkg/utils"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfgPath := flag.String("config", "", "path to config")
	flag.Parse()
	cfg, err := config.New(*cfgPath)
	if err != nil {
		panic(err)
	}
	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sysClock := clock.System()
	cache, err := newCache(ctx, cfg.Cache, sysClock)
	if err != nil {
		logger.Fatal("create score cache", zap.Error(err))
	}

	rollouts := atomic.NewInt64(0)
	newEngine := func(rng domain.Rand) domain.EngineUseCase {
		return engine.New(sysClock, rng, logger,
			engine.WithWorkers(cfg.Engine.Workers),
			engine.WithCounter(rollouts),
		)
	}
	hubOpts := []hub.Option{
		hub.WithSessionTTL(cfg.Server.SessionTTL),
		hub.WithCleanupPeriod(cfg.Server.CleanupPeriod),
	}
	if cfg.Engine.Seed != 0 {
		hubOpts = append(hubOpts, hub.WithSeed(cfg.Engine.Seed))
	}
	var (
		game   = game.New(cache, sysClock, cfg.Engine.TimeBudget, logger)
		hub    = hub.New(game, newEngine, sysClock, rollouts, logger, hubOpts...)
		server = ws.New(cfg.Server.Addr, hub, logger)
	)

	errGroup, gctx := errgroup.WithContext(ctx)
	errGroup.Go(server.ListenAndServe)
	errGroup.Go(func() error {
		return hub.Run(gctx)
	})
	errGroup.Go(func() error {
		<-gctx.Done()
		logger.Info("gracefully shutting down the server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := errGroup.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}

func newCache(ctx context.Context, cfg config.CacheConfig, clk domain.Clock) (domain.ScoreCache, error) {
	if cfg.Driver != config.CacheRedis {
		return memcache.New(clk, cfg.TTL), nil
	}
	client, err := redis.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	return redis.New(client, cfg.TTL), nil
}
