package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestMessageTypes(t *testing.T) {
	// wire values are part of the protocol
	assert.Equal(t, messageType(0), StartGame)
	assert.Equal(t, messageType(1), PlayerMove)
	assert.Equal(t, messageType(2), Evaluate)
	assert.Equal(t, messageType(3), PlayBest)
	assert.Equal(t, messageType(4), State)
	assert.Equal(t, messageType(5), Failure)
}

func TestNewStatePayload(t *testing.T) {
	t.Run("Fresh game", func(t *testing.T) {
		// Given: a session on the board returned by NewGame
		board, last := NewGame()
		session := NewSession("id", nil, sessionStart)
		require.True(t, session.State.Board.Equal(board))

		// When
		payload := NewStatePayload(session)

		// Then
		assert.Equal(t, "id", payload.SessionID)
		assert.Equal(t, last, payload.Last)
		assert.Len(t, payload.Legal, Size*Size)
		assert.Equal(t, Mine, payload.Turn)
		assert.Empty(t, payload.Scores)
	})

	t.Run("Scores and hints", func(t *testing.T) {
		session := NewSession("id", nil, sessionStart)
		a, b := Coord{Row: 8, Col: 8}, Coord{Row: 0, Col: 1}

		payload := NewStatePayload(session,
			WithScores(map[Coord]int{a: -1, b: 3}),
			WithHints([]Coord{b}, []Coord{a}),
		)

		assert.Equal(t, []ScoreEntry{{Move: b, Score: 3}, {Move: a, Score: -1}}, payload.Scores)
		assert.Equal(t, []Coord{b}, payload.Winning)
		assert.Equal(t, []Coord{a}, payload.Losing)
	})
}
