package rollout

import (
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
)

type simulator struct{}

func New() simulator {
	return simulator{}
}

func (simulator) Simulate(board domain.Board, first domain.Coord, player domain.Player, rng domain.Rand) (domain.Player, int) {
	return Simulate(board, first, player, rng)
}

// Simulate plays first for player, then uniformly random legal moves for
// both sides until the game ends. It returns the result and the number of
// moves played after first. first must be legal on board.
func Simulate(board domain.Board, first domain.Coord, player domain.Player, rng domain.Rand) (domain.Player, int) {
	board = board.Place(first, player)
	last := first
	for plies := 0; ; plies++ {
		if board.Won(player) {
			return player, plies
		}
		moves := board.LegalMoves(last)
		if len(moves) == 0 {
			return domain.MajorityOwner(board.MetaGrid(), player), plies
		}
		player = player.Opponent()
		last = moves[rng.Intn(len(moves))]
		board = board.Place(last, player)
	}
}
