package rollout

import (
	"math/rand"
	"testing"

	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate(t *testing.T) {
	t.Run("Is reproducible with the same seed", func(t *testing.T) {
		// Given: the same position and two sources with the same seed
		board, _ := domain.NewGame()
		first := domain.Coord{Row: 4, Col: 4}

		for seed := int64(0); seed < 20; seed++ {
			// When: simulating twice
			lhsResult, lhsPlies := Simulate(board, first, domain.Mine, rand.New(rand.NewSource(seed)))
			rhsResult, rhsPlies := Simulate(board, first, domain.Mine, rand.New(rand.NewSource(seed)))

			// Then: both trajectories end the same way
			require.Equal(t, lhsResult, rhsResult)
			require.Equal(t, lhsPlies, rhsPlies)
		}
	})

	t.Run("Ends with a side or a draw", func(t *testing.T) {
		board, _ := domain.NewGame()
		rng := rand.New(rand.NewSource(11))
		for i := 0; i < 50; i++ {
			result, plies := Simulate(board, domain.Coord{Row: i % 9, Col: (i * 4) % 9}, domain.Theirs, rng)
			assert.Contains(t, []domain.Player{domain.Mine, domain.Theirs, domain.Drawn}, result)
			assert.GreaterOrEqual(t, plies, 0)
			assert.Less(t, plies, 81)
		}
	})

	t.Run("Winning first move returns the mover without further plies", func(t *testing.T) {
		// Given: O completes the top row of sub-boards with its first move
		board, err := domain.ParseBoard(`
O O O | O O O | O O .
O O O | O O O | . . .
O O O | O O O | . . .
------+-------+------
. . . | . . . | . . .
. . . | . . . | . . .
. . . | . . . | . . .
------+-------+------
. . . | . . . | . . .
. . . | . . . | . . .
. . . | . . . | . . .
`)
		require.NoError(t, err)

		// When: simulating from the winning cell
		result, plies := Simulate(board, domain.Coord{Row: 0, Col: 8}, domain.Theirs, rand.New(rand.NewSource(1)))

		// Then: O wins immediately
		assert.Equal(t, domain.Theirs, result)
		assert.Zero(t, plies)
	})

	t.Run("Last free cell resolves by majority", func(t *testing.T) {
		// Given: one free cell left, X owns more sub-boards
		board, err := domain.ParseBoard(`
X X X | O O O | X X X
X X X | O O O | X X X
X X X | O O O | X X X
------+-------+------
X X X | O O O | X X X
X X X | O O O | X X X
X X X | O O O | X X X
------+-------+------
O O O | X X X | X O X
O O O | X X X | X O O
O O O | X X X | O X .
`)
		require.NoError(t, err)

		// When: O fills the last cell, drawing that sub-board
		result, plies := New().Simulate(board, domain.Coord{Row: 8, Col: 8}, domain.Theirs, rand.New(rand.NewSource(1)))

		// Then: the majority decides for X
		assert.Equal(t, domain.Mine, result)
		assert.Zero(t, plies)
	})
}
