package selfplay

import (
	"context"
	"math/rand"
	"time"

	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Games    int
	Parallel int
	Budget   time.Duration
	Seed     int64
	// RandomOpponent replaces the engine playing Theirs with uniform random
	// moves.
	RandomOpponent bool
}

type GameRecord struct {
	Starter domain.Player
	Result  domain.Player
	Plies   int
}

type Report struct {
	Mine   int
	Theirs int
	Drawn  int
	Games  []GameRecord
}

func (r *Report) add(record GameRecord) {
	r.Games = append(r.Games, record)
	switch record.Result {
	case domain.Mine:
		r.Mine++
	case domain.Theirs:
		r.Theirs++
	default:
		r.Drawn++
	}
}

// StarterWins counts the games won by the side that moved first.
func (r Report) StarterWins() int {
	wins := 0
	for _, game := range r.Games {
		if game.Result == game.Starter {
			wins++
		}
	}
	return wins
}

type useCase struct {
	newEngine domain.EngineFactory
	logger    *zap.Logger
}

func New(newEngine domain.EngineFactory, logger *zap.Logger) *useCase {
	return &useCase{
		newEngine: newEngine,
		logger:    logger,
	}
}

type player interface {
	move(ctx context.Context, state domain.GameState) (domain.Coord, error)
}

type enginePlayer struct {
	engine domain.EngineUseCase
	budget time.Duration
}

func (p enginePlayer) move(ctx context.Context, state domain.GameState) (domain.Coord, error) {
	decision, err := p.engine.BestMove(ctx, state.Board, state.Last, state.Turn, p.budget)
	if err != nil {
		return domain.NoMove, err
	}
	return decision.Move, nil
}

type randomPlayer struct {
	rng domain.Rand
}

func (p randomPlayer) move(_ context.Context, state domain.GameState) (domain.Coord, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return domain.NoMove, domain.ErrNoLegalMove
	}
	return moves[p.rng.Intn(len(moves))], nil
}

// Run plays cfg.Games games, the engine holding Mine. Starters alternate,
// Mine opening the even games. Every game gets its random streams from
// cfg.Seed up front, so the report does not depend on scheduling.
func (u *useCase) Run(ctx context.Context, cfg Config) (Report, error) {
	if cfg.Games <= 0 {
		return Report{}, nil
	}
	base := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([][2]int64, cfg.Games)
	for i := range seeds {
		seeds[i] = [2]int64{base.Int63(), base.Int63()}
	}

	records := make([]GameRecord, cfg.Games)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Parallel, 1))
	for i := range cfg.Games {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			starter := domain.Mine
			if i%2 == 1 {
				starter = domain.Theirs
			}
			players := map[domain.Player]player{
				domain.Mine:   u.enginePlayer(seeds[i][0], cfg.Budget),
				domain.Theirs: u.opponent(seeds[i][1], cfg),
			}
			record, err := playGame(gctx, starter, players)
			if err != nil {
				return errors.WithMessagef(err, "play game %d", i)
			}
			records[i] = record
			u.logger.Debug("self-play game finished",
				zap.Int("game", i),
				zap.Stringer("starter", starter),
				zap.Stringer("result", record.Result),
				zap.Int("plies", record.Plies),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Games: make([]GameRecord, 0, cfg.Games)}
	for _, record := range records {
		report.add(record)
	}
	u.logger.Info("self-play finished",
		zap.Int("games", cfg.Games),
		zap.Int("mine", report.Mine),
		zap.Int("theirs", report.Theirs),
		zap.Int("drawn", report.Drawn),
		zap.Int("starter_wins", report.StarterWins()),
	)
	return report, nil
}

func (u *useCase) enginePlayer(seed int64, budget time.Duration) player {
	return enginePlayer{
		engine: u.newEngine(rand.New(rand.NewSource(seed))),
		budget: budget,
	}
}

func (u *useCase) opponent(seed int64, cfg Config) player {
	if cfg.RandomOpponent {
		return randomPlayer{rng: rand.New(rand.NewSource(seed))}
	}
	return u.enginePlayer(seed, cfg.Budget)
}

func playGame(ctx context.Context, starter domain.Player, players map[domain.Player]player) (GameRecord, error) {
	state := domain.NewGameState(starter)
	for !state.Finished() {
		if err := ctx.Err(); err != nil {
			return GameRecord{}, err
		}
		move, err := players[state.Turn].move(ctx, state)
		if err != nil {
			return GameRecord{}, errors.WithMessagef(err, "choose move for '%s'", state.Turn)
		}
		if state, err = state.Apply(move); err != nil {
			return GameRecord{}, err
		}
	}
	return GameRecord{
		Starter: starter,
		Result:  state.Result,
		Plies:   state.Plies,
	}, nil
}
