package domain

import (
	"github.com/pkg/errors"
)

var ErrConnectionClosed = errors.New("connection closed")

const (
	SessionIdHeader = "X-Session-Id"
)

type messageType byte

const (
	StartGame = messageType(iota)
	PlayerMove
	Evaluate
	PlayBest
	State
	Failure
)

type Message struct {
	Type    messageType
	Payload any
}

// StartGamePayload starts a new game. HumanSide is the side the client plays;
// Empty means the client moves for both sides and the engine only advises.
type StartGamePayload struct {
	HumanSide Player
}

type PlayerMovePayload struct {
	Row int
	Col int
}

type ScoreEntry struct {
	Move  Coord
	Score int
}

type StatePayload struct {
	SessionID string
	Cells     [Size][Size]Player
	Meta      Grid
	Legal     []Coord
	Turn      Player
	Human     Player
	Last      Coord
	Result    Player
	Scores    []ScoreEntry `json:",omitempty"`
	Winning   []Coord      `json:",omitempty"`
	Losing    []Coord      `json:",omitempty"`
}

type FailurePayload struct {
	Message string
}

type StatePayloadOption func(p *StatePayload)

func WithScores(scores map[Coord]int) StatePayloadOption {
	return func(p *StatePayload) {
		p.Scores = SortedScores(scores)
	}
}

func WithHints(winning []Coord, losing []Coord) StatePayloadOption {
	return func(p *StatePayload) {
		p.Winning = winning
		p.Losing = losing
	}
}

func NewStatePayload(session *Session, opts ...StatePayloadOption) *StatePayload {
	state := session.State
	payload := &StatePayload{
		SessionID: session.ID,
		Meta:      state.Board.MetaGrid(),
		Legal:     state.LegalMoves(),
		Turn:      state.Turn,
		Human:     session.Human,
		Last:      state.Last,
		Result:    state.Result,
	}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			payload.Cells[row][col] = state.Board.At(Coord{Row: row, Col: col})
		}
	}
	for _, opt := range opts {
		opt(payload)
	}
	return payload
}

// SortedScores flattens a score map in row-major move order.
func SortedScores(scores map[Coord]int) []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(scores))
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			move := Coord{Row: row, Col: col}
			if score, ok := scores[move]; ok {
				entries = append(entries, ScoreEntry{Move: move, Score: score})
			}
		}
	}
	return entries
}

type Client interface {
	WriteMessage(msg Message) error
	ReadMessage() (Message, error)
	Uuid() string
}
