package domain

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// GameState is a position together with the side to move.
type GameState struct {
	Board  Board
	Last   Coord
	Turn   Player
	Result Player
	Plies  int
}

func NewGameState(starter Player) GameState {
	board, last := NewGame()
	return GameState{
		Board: board,
		Last:  last,
		Turn:  starter,
	}
}

func (s GameState) Finished() bool {
	return s.Result != Empty
}

func (s GameState) LegalMoves() []Coord {
	if s.Finished() {
		return nil
	}
	return s.Board.LegalMoves(s.Last)
}

// Apply plays move for the side to move and resolves the result.
func (s GameState) Apply(move Coord) (GameState, error) {
	if s.Finished() {
		return s, ErrGameFinished
	}
	board, err := s.Board.Play(move, s.Last, s.Turn)
	if err != nil {
		return s, errors.WithMessage(err, "play move")
	}
	return GameState{
		Board:  board,
		Last:   move,
		Turn:   s.Turn.Opponent(),
		Result: board.Outcome(move),
		Plies:  s.Plies + 1,
	}, nil
}

// Session is a game between a connected client and the engine. State and
// Human are owned by the goroutine serving the attached connection.
type Session struct {
	ID     string
	Human  Player
	State  GameState
	Engine EngineUseCase

	attached  atomic.Bool
	finished  atomic.Bool
	touchedAt atomic.Time
}

func NewSession(id string, engine EngineUseCase, now time.Time) *Session {
	s := &Session{
		ID:     id,
		Human:  Mine,
		State:  NewGameState(Mine),
		Engine: engine,
	}
	s.touchedAt.Store(now)
	return s
}

// Attach marks the session as served by a connection. It fails if another
// connection already serves it.
func (s *Session) Attach() bool {
	return s.attached.CompareAndSwap(false, true)
}

func (s *Session) Detach() {
	s.attached.Store(false)
}

func (s *Session) Attached() bool {
	return s.attached.Load()
}

// Touch records activity and publishes whether the game is over.
func (s *Session) Touch(now time.Time) {
	s.touchedAt.Store(now)
	s.finished.Store(s.State.Finished())
}

func (s *Session) TouchedAt() time.Time {
	return s.touchedAt.Load()
}

func (s *Session) Finished() bool {
	return s.finished.Load()
}

type GameUseCase interface {
	Play(ctx context.Context, client Client, session *Session) error
}
