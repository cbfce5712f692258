package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// MetaCell is either a playable sub-board or a decided outcome.
// Decided cells never become playable again.
type MetaCell struct {
	sub   *Grid
	owner Player
}

func (m MetaCell) Playable() bool {
	return m.sub != nil
}

func (m MetaCell) Decided() bool {
	return m.sub == nil && m.owner != Empty
}

// Owner is Mine, Theirs or Drawn for a decided cell and Empty otherwise.
func (m MetaCell) Owner() Player {
	if m.sub != nil {
		return Empty
	}
	return m.owner
}

// Cells returns a copy of the sub-board. A decided cell has no sub-board
// left and yields a grid filled with its owner.
func (m MetaCell) Cells() Grid {
	if m.sub != nil {
		return *m.sub
	}
	var g Grid
	for r := range g {
		for c := range g[r] {
			g[r][c] = m.owner
		}
	}
	return g
}

// Board is the whole game state. It is an immutable value: Apply returns a
// new Board which copies the touched sub-board and shares the other eight.
// The zero value is not a valid position, use NewBoard.
type Board struct {
	cells [3][3]MetaCell
}

func NewBoard() Board {
	var b Board
	for r := range b.cells {
		for c := range b.cells[r] {
			b.cells[r][c] = MetaCell{sub: new(Grid)}
		}
	}
	return b
}

// NewGame returns the empty board together with the "no previous move"
// sentinel.
func NewGame() (Board, Coord) {
	return NewBoard(), NoMove
}

func (b Board) MetaCell(row, col int) MetaCell {
	return b.cells[row][col]
}

// MetaGrid returns the outcome of every sub-board, Empty for playable ones.
func (b Board) MetaGrid() Grid {
	var g Grid
	for r := range b.cells {
		for c := range b.cells[r] {
			g[r][c] = b.cells[r][c].Owner()
		}
	}
	return g
}

// At returns the value of an absolute cell. Cells of a decided sub-board
// report the sub-board owner.
func (b Board) At(c Coord) Player {
	R, C := c.Meta()
	meta := b.cells[R][C]
	if !meta.Playable() {
		return meta.owner
	}
	r, cc := c.Inner()
	return meta.sub[r][cc]
}

func (b Board) Won(player Player) bool {
	return LineComplete(b.MetaGrid(), player)
}

// Winner returns the side owning a line of sub-boards, or Empty.
func (b Board) Winner() Player {
	g := b.MetaGrid()
	switch {
	case LineComplete(g, Mine):
		return Mine
	case LineComplete(g, Theirs):
		return Theirs
	default:
		return Empty
	}
}

// Outcome returns the result of the game after last: the line winner, the
// majority owner of the meta grid once no legal move is left, or Empty while
// the game goes on.
func (b Board) Outcome(last Coord) Player {
	if winner := b.Winner(); winner != Empty {
		return winner
	}
	if len(b.LegalMoves(last)) > 0 {
		return Empty
	}
	return MajorityOwner(b.MetaGrid(), Mine)
}

// LegalMoves returns the playable cells after last in row-major order.
// The opponent is sent to the sub-board at last's inner position; if that
// sub-board is decided, every empty cell of every playable sub-board is legal.
func (b Board) LegalMoves(last Coord) []Coord {
	if last.Valid() {
		R, C := last.Inner()
		if meta := b.cells[R][C]; meta.Playable() {
			moves := make([]Coord, 0, 9)
			for r := range meta.sub {
				for c := range meta.sub[r] {
					if meta.sub[r][c] == Empty {
						moves = append(moves, Coord{Row: 3*R + r, Col: 3*C + c})
					}
				}
			}
			return moves
		}
	}
	moves := make([]Coord, 0, Size*Size)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			meta := b.cells[row/3][col/3]
			if meta.Playable() && meta.sub[row%3][col%3] == Empty {
				moves = append(moves, Coord{Row: row, Col: col})
			}
		}
	}
	return moves
}

func (b Board) IsLegal(move Coord, last Coord) bool {
	if !b.isFree(move) {
		return false
	}
	if last.Valid() {
		R, C := last.Inner()
		if b.cells[R][C].Playable() {
			mr, mc := move.Meta()
			return mr == R && mc == C
		}
	}
	return true
}

func (b Board) isFree(move Coord) bool {
	if !move.Valid() {
		return false
	}
	R, C := move.Meta()
	meta := b.cells[R][C]
	if !meta.Playable() {
		return false
	}
	r, c := move.Inner()
	return meta.sub[r][c] == Empty
}

// Apply places player's mark on an empty cell of a playable sub-board.
// It does not check the sub-board constraint of the previous move, see Play.
func (b Board) Apply(move Coord, player Player) (Board, error) {
	if !player.IsSide() {
		return b, errors.WithMessagef(ErrInvalidMove, "player '%s' cannot move", player)
	}
	if !move.Valid() {
		return b, errors.WithMessagef(ErrInvalidMove, "cell '%s' is out of the board", move)
	}
	if !b.isFree(move) {
		return b, errors.WithMessagef(ErrInvalidMove, "cell '%s' is not free", move)
	}
	return b.Place(move, player), nil
}

// Play applies move only if it is in LegalMoves(last).
func (b Board) Play(move Coord, last Coord, player Player) (Board, error) {
	if !player.IsSide() {
		return b, errors.WithMessagef(ErrInvalidMove, "player '%s' cannot move", player)
	}
	if !b.IsLegal(move, last) {
		return b, errors.WithMessagef(ErrInvalidMove, "cell '%s' is not playable after '%s'", move, last)
	}
	return b.Place(move, player), nil
}

// Place is Apply without validation, for callers that took move from
// LegalMoves.
func (b Board) Place(move Coord, player Player) Board {
	R, C := move.Meta()
	r, c := move.Inner()
	sub := *b.cells[R][C].sub
	sub[r][c] = player
	switch {
	case LineComplete(sub, player):
		b.cells[R][C] = MetaCell{owner: player}
	case sub.Full():
		b.cells[R][C] = MetaCell{owner: Drawn}
	default:
		b.cells[R][C] = MetaCell{sub: &sub}
	}
	return b
}

// Equal compares two boards by value.
func (b Board) Equal(other Board) bool {
	for r := range b.cells {
		for c := range b.cells[r] {
			lhs, rhs := b.cells[r][c], other.cells[r][c]
			if lhs.Playable() != rhs.Playable() || lhs.Owner() != rhs.Owner() {
				return false
			}
			if lhs.Playable() && *lhs.sub != *rhs.sub {
				return false
			}
		}
	}
	return true
}

// Key is a compact identity of the position, usable as a map or cache key.
func (b Board) Key() string {
	var sb strings.Builder
	sb.Grow(9 + Size*Size)
	for r := range b.cells {
		for c := range b.cells[r] {
			sb.WriteByte(b.cells[r][c].Owner().Symbol())
		}
	}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if !b.cells[row/3][col/3].Playable() {
				sb.WriteByte('-')
				continue
			}
			sb.WriteByte(b.At(Coord{Row: row, Col: col}).Symbol())
		}
	}
	return sb.String()
}

const rowSeparator = "------+-------+------"

// String draws the 9x9 grid; decided sub-boards are filled with the symbol
// of their owner.
func (b Board) String() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		if row == 3 || row == 6 {
			sb.WriteString(rowSeparator)
			sb.WriteByte('\n')
		}
		for col := 0; col < Size; col++ {
			if col == 3 || col == 6 {
				sb.WriteString("| ")
			}
			sb.WriteByte(b.At(Coord{Row: row, Col: col}).Symbol())
			if col < Size-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
