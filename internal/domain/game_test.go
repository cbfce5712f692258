package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameState_Apply(t *testing.T) {
	t.Run("Alternates turns", func(t *testing.T) {
		// Given: a new game started by O
		state := NewGameState(Theirs)

		// When: O and X play
		state, err := state.Apply(Coord{Row: 4, Col: 4})
		require.NoError(t, err)
		state, err = state.Apply(Coord{Row: 3, Col: 3})
		require.NoError(t, err)

		// Then: it is O's turn again and the last move is tracked
		assert.Equal(t, Theirs, state.Turn)
		assert.Equal(t, Coord{Row: 3, Col: 3}, state.Last)
		assert.Equal(t, 2, state.Plies)
		assert.False(t, state.Finished())
	})

	t.Run("Illegal move keeps the state", func(t *testing.T) {
		state := NewGameState(Mine)
		state, err := state.Apply(Coord{Row: 0, Col: 0})
		require.NoError(t, err)

		next, err := state.Apply(Coord{Row: 8, Col: 8})

		require.ErrorIs(t, err, ErrInvalidMove)
		assert.Equal(t, state, next)
	})

	t.Run("Winning move finishes the game", func(t *testing.T) {
		// Given: X needs one cell to own the top row of sub-boards
		board, err := ParseBoard(`
X X X | X X X | X X .
X X X | X X X | . . .
X X X | X X X | . . .
------+-------+------
. . . | . . O | . . .
. . . | . . . | . . .
. . . | . . . | . . .
------+-------+------
. . . | . . . | . . .
. . . | . . . | . . .
. . . | . . . | . . .
`)
		require.NoError(t, err)
		state := GameState{Board: board, Last: Coord{Row: 3, Col: 5}, Turn: Mine}

		// When: X plays the winning cell
		state, err = state.Apply(Coord{Row: 0, Col: 8})
		require.NoError(t, err)

		// Then: the game is over and no further move is accepted
		assert.Equal(t, Mine, state.Result)
		assert.Empty(t, state.LegalMoves())
		_, err = state.Apply(Coord{Row: 4, Col: 4})
		require.ErrorIs(t, err, ErrGameFinished)
	})
}

func TestSession_Attach(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	session := NewSession("id", nil, now)

	require.True(t, session.Attach())
	require.False(t, session.Attach())
	session.Detach()
	require.True(t, session.Attach())

	session.State.Result = Drawn
	session.Touch(now.Add(time.Minute))
	assert.True(t, session.Finished())
	assert.Equal(t, now.Add(time.Minute), session.TouchedAt())
}
