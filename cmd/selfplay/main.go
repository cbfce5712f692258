package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/adapters/clock"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/config"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/usecase/engine"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/usecase/selfplay"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/pkg/utils"
	"go.uber.org/zap"
)

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

	seed := cfg.Engine.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sysClock := clock.System()
	newEngine := func(rng domain.Rand) domain.EngineUseCase {
		return engine.New(sysClock, rng, logger, engine.WithWorkers(cfg.Engine.Workers))
	}
	report, err := selfplay.New(newEngine, logger).Run(ctx, selfplay.Config{
		Games:          cfg.SelfPlay.Games,
		Parallel:       cfg.SelfPlay.Parallel,
		Budget:         cfg.Engine.TimeBudget,
		Seed:           seed,
		RandomOpponent: cfg.SelfPlay.Opponent == config.OpponentRandom,
	})
	if err != nil {
		logger.Fatal("self-play", zap.Error(err), zap.Int64("seed", seed))
	}
	fmt.Printf("seed %d, opponent %s\n", seed, cfg.SelfPlay.Opponent)
	fmt.Printf("X wins: %d\nO wins: %d\ndraws:  %d\n", report.Mine, report.Theirs, report.Drawn)
	fmt.Printf("starter wins: %d of %d\n", report.StarterWins(), len(report.Games))
}
