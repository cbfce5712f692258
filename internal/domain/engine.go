package domain

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Rand is the random source of rollouts; *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Int63() int64
}

type Simulator interface {
	Simulate(board Board, first Coord, player Player, rng Rand) (result Player, plies int)
}

type DecisionReason string

const (
	ReasonImmediateWin = DecisionReason("immediate_win")
	ReasonNonLosing    = DecisionReason("non_losing")
	ReasonBestEffort   = DecisionReason("best_effort")
)

// Evaluation holds the raw rollout accumulator of every sampled candidate.
type Evaluation struct {
	Player   Player
	Pool     []Coord
	Scores   map[Coord]int
	Winning  []Coord
	Losing   []Coord
	Rollouts int
	Plies    int
}

type Decision struct {
	Evaluation
	Move   Coord
	Score  int
	Reason DecisionReason
}

type EngineUseCase interface {
	Evaluate(ctx context.Context, board Board, last Coord, player Player, budget time.Duration) (Evaluation, error)
	BestMove(ctx context.Context, board Board, last Coord, player Player, budget time.Duration) (Decision, error)
	Select(board Board, last Coord, player Player, scores map[Coord]int) (Decision, error)
}

// ScoreCache accumulates evaluation scores per position. It is owned by
// the caller and only changes which samples are available, never the rules.
type ScoreCache interface {
	Load(ctx context.Context, key string) (map[Coord]int, error)
	Add(ctx context.Context, key string, scores map[Coord]int) (map[Coord]int, error)
}

func CacheKey(board Board, last Coord) string {
	return board.Key() + "@" + last.String()
}

// EngineFactory builds an engine around its own random stream.
type EngineFactory func(rng Rand) EngineUseCase
