package engine

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/usecase/rollout"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// WinScore is reported for a move that wins the game on the spot.
const WinScore = math.MaxInt32

type Option func(u *useCase)

// WithWorkers spreads sampling over n goroutines, each with its own random
// stream seeded from the engine source.
func WithWorkers(n int) Option {
	return func(u *useCase) {
		if n > 0 {
			u.workers = n
		}
	}
}

func WithSimulator(sim domain.Simulator) Option {
	return func(u *useCase) {
		u.sim = sim
	}
}

// WithCounter shares the rollout counter between engines.
func WithCounter(counter *atomic.Int64) Option {
	return func(u *useCase) {
		u.rollouts = counter
	}
}

// useCase is the time-bounded Monte-Carlo evaluator. The random source is
// consumed without locking, so an instance must not be shared between
// goroutines.
type useCase struct {
	clock    domain.Clock
	rng      domain.Rand
	sim      domain.Simulator
	workers  int
	rollouts *atomic.Int64
	logger   *zap.Logger
}

func New(clock domain.Clock, rng domain.Rand, logger *zap.Logger, opts ...Option) *useCase {
	u := &useCase{
		clock:    clock,
		rng:      rng,
		sim:      rollout.New(),
		workers:  1,
		rollouts: atomic.NewInt64(0),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *useCase) Rollouts() int64 {
	return u.rollouts.Load()
}

// Evaluate samples every legal move until budget elapses and returns the raw
// accumulator together with immediate win and loss hints.
func (u *useCase) Evaluate(ctx context.Context, board domain.Board, last domain.Coord, player domain.Player,
	budget time.Duration) (domain.Evaluation, error) {
	moves, err := candidates(board, last, player)
	if err != nil {
		return domain.Evaluation{}, err
	}
	ev := u.sample(ctx, board, moves, player, budget)
	ev.Winning = WinningMoves(board, moves, player)
	ev.Losing = LosingMoves(board, moves, player)
	return ev, nil
}

// BestMove plays an immediate win if there is one, otherwise samples the
// non-losing moves (or all moves when every move loses) until budget elapses
// and picks the highest score. Ties go to the first move in row-major order.
func (u *useCase) BestMove(ctx context.Context, board domain.Board, last domain.Coord, player domain.Player,
	budget time.Duration) (domain.Decision, error) {
	moves, err := candidates(board, last, player)
	if err != nil {
		return domain.Decision{}, err
	}
	if move, ok := WinningMove(board, moves, player); ok {
		return immediateWin(player, move), nil
	}
	pool, reason := filterLosing(board, moves, player)
	ev := u.sample(ctx, board, pool, player, budget)
	ev.Losing = subtract(moves, pool)
	if reason == domain.ReasonBestEffort {
		ev.Losing = moves
	}
	move, score := best(pool, ev.Scores)
	u.logger.Debug("best move",
		zap.Stringer("move", move),
		zap.Int("score", score),
		zap.String("reason", string(reason)),
		zap.Int("pool", len(pool)),
		zap.Int("rollouts", ev.Rollouts),
	)
	return domain.Decision{
		Evaluation: ev,
		Move:       move,
		Score:      score,
		Reason:     reason,
	}, nil
}

// Select applies the BestMove policy to scores gathered earlier instead of
// sampling. Moves without a score count as zero.
func (u *useCase) Select(board domain.Board, last domain.Coord, player domain.Player,
	scores map[domain.Coord]int) (domain.Decision, error) {
	moves, err := candidates(board, last, player)
	if err != nil {
		return domain.Decision{}, err
	}
	if move, ok := WinningMove(board, moves, player); ok {
		return immediateWin(player, move), nil
	}
	pool, reason := filterLosing(board, moves, player)
	poolScores := make(map[domain.Coord]int, len(pool))
	for _, move := range pool {
		poolScores[move] = scores[move]
	}
	move, score := best(pool, poolScores)
	return domain.Decision{
		Evaluation: domain.Evaluation{
			Player: player,
			Pool:   pool,
			Scores: poolScores,
			Losing: subtract(moves, pool),
		},
		Move:   move,
		Score:  score,
		Reason: reason,
	}, nil
}

func candidates(board domain.Board, last domain.Coord, player domain.Player) ([]domain.Coord, error) {
	if !player.IsSide() {
		return nil, errors.WithMessagef(domain.ErrInvalidPlayer, "player '%s' cannot move", player)
	}
	if board.Winner() != domain.Empty {
		return nil, errors.WithMessage(domain.ErrNoLegalMove, "game is won")
	}
	moves := board.LegalMoves(last)
	if len(moves) == 0 {
		return nil, domain.ErrNoLegalMove
	}
	return moves, nil
}

func immediateWin(player domain.Player, move domain.Coord) domain.Decision {
	return domain.Decision{
		Evaluation: domain.Evaluation{
			Player:  player,
			Pool:    []domain.Coord{move},
			Scores:  map[domain.Coord]int{move: WinScore},
			Winning: []domain.Coord{move},
		},
		Move:   move,
		Score:  WinScore,
		Reason: domain.ReasonImmediateWin,
	}
}

func filterLosing(board domain.Board, moves []domain.Coord, player domain.Player) ([]domain.Coord, domain.DecisionReason) {
	pool := NonLosingMoves(board, moves, player)
	if len(pool) == 0 {
		return moves, domain.ReasonBestEffort
	}
	return pool, domain.ReasonNonLosing
}

func best(pool []domain.Coord, scores map[domain.Coord]int) (domain.Coord, int) {
	move, score := pool[0], scores[pool[0]]
	for _, m := range pool[1:] {
		if s := scores[m]; s > score {
			move, score = m, s
		}
	}
	return move, score
}

func subtract(moves []domain.Coord, pool []domain.Coord) []domain.Coord {
	if len(pool) == len(moves) {
		return nil
	}
	kept := make(map[domain.Coord]struct{}, len(pool))
	for _, m := range pool {
		kept[m] = struct{}{}
	}
	rest := make([]domain.Coord, 0, len(moves)-len(pool))
	for _, m := range moves {
		if _, ok := kept[m]; !ok {
			rest = append(rest, m)
		}
	}
	return rest
}

type tally struct {
	scores   map[domain.Coord]int
	rollouts int
	plies    int
}

func (u *useCase) sample(ctx context.Context, board domain.Board, pool []domain.Coord, player domain.Player,
	budget time.Duration) domain.Evaluation {
	deadline := u.clock.Now().Add(budget)
	ev := domain.Evaluation{
		Player: player,
		Pool:   pool,
		Scores: make(map[domain.Coord]int, len(pool)),
	}
	for _, m := range pool {
		ev.Scores[m] = 0
	}
	if u.workers == 1 {
		t := u.sampleStream(ctx, board, pool, player, deadline, u.rng)
		merge(&ev, t)
		return ev
	}

	seeds := make([]int64, u.workers)
	for i := range seeds {
		seeds[i] = u.rng.Int63()
	}
	tallies := make([]tally, u.workers)
	var wg sync.WaitGroup
	wg.Add(u.workers)
	for i := range tallies {
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seeds[i]))
			tallies[i] = u.sampleStream(ctx, board, pool, player, deadline, rng)
		}()
	}
	wg.Wait()
	for _, t := range tallies {
		merge(&ev, t)
	}
	return ev
}

// sampleStream runs rollouts until the deadline. The clock is checked
// before each rollout; a running rollout is never interrupted.
func (u *useCase) sampleStream(ctx context.Context, board domain.Board, pool []domain.Coord, player domain.Player,
	deadline time.Time, rng domain.Rand) tally {
	t := tally{scores: make(map[domain.Coord]int, len(pool))}
	for ctx.Err() == nil && u.clock.Now().Before(deadline) {
		move := pool[rng.Intn(len(pool))]
		result, plies := u.sim.Simulate(board, move, player, rng)
		switch result {
		case player:
			t.scores[move]++
		case player.Opponent():
			t.scores[move]--
		}
		t.rollouts++
		t.plies += plies
		u.rollouts.Inc()
	}
	return t
}

func merge(ev *domain.Evaluation, t tally) {
	for m, s := range t.scores {
		ev.Scores[m] += s
	}
	ev.Rollouts += t.rollouts
	ev.Plies += t.plies
}
