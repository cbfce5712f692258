package engine

import (
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
)

// WinningMove returns the first of moves that wins the game for player.
func WinningMove(board domain.Board, moves []domain.Coord, player domain.Player) (domain.Coord, bool) {
	for _, move := range moves {
		if board.Place(move, player).Won(player) {
			return move, true
		}
	}
	return domain.NoMove, false
}

func WinningMoves(board domain.Board, moves []domain.Coord, player domain.Player) []domain.Coord {
	var winning []domain.Coord
	for _, move := range moves {
		if board.Place(move, player).Won(player) {
			winning = append(winning, move)
		}
	}
	return winning
}

// losing reports whether the opponent has an immediate winning reply
// after player plays move.
func losing(board domain.Board, move domain.Coord, player domain.Player) bool {
	next := board.Place(move, player)
	if next.Won(player) {
		return false
	}
	opponent := player.Opponent()
	_, ok := WinningMove(next, next.LegalMoves(move), opponent)
	return ok
}

func NonLosingMoves(board domain.Board, moves []domain.Coord, player domain.Player) []domain.Coord {
	var safe []domain.Coord
	for _, move := range moves {
		if !losing(board, move, player) {
			safe = append(safe, move)
		}
	}
	return safe
}

func LosingMoves(board domain.Board, moves []domain.Coord, player domain.Player) []domain.Coord {
	var lost []domain.Coord
	for _, move := range moves {
		if losing(board, move, player) {
			lost = append(lost, move)
		}
	}
	return lost
}
