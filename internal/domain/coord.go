package domain

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const Size = 9

// Coord addresses a cell in the absolute 9x9 grid.
type Coord struct {
	Row int
	Col int
}

// NoMove is the last move of a fresh game.
var NoMove = Coord{Row: -1, Col: -1}

func (c Coord) IsNone() bool {
	return c == NoMove
}

func (c Coord) Valid() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Meta returns the position of the owning sub-board in the meta grid.
func (c Coord) Meta() (int, int) {
	return c.Row / 3, c.Col / 3
}

// Inner returns the position inside the owning sub-board. It is also the
// meta position the opponent is sent to.
func (c Coord) Inner() (int, int) {
	return c.Row % 3, c.Col % 3
}

// Index is the row-major rank of c; moves are always ordered by it.
func (c Coord) Index() int {
	return c.Row*Size + c.Col
}

func (c Coord) String() string {
	return strconv.Itoa(c.Row) + "," + strconv.Itoa(c.Col)
}

func ParseCoord(s string) (Coord, error) {
	row, col, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return NoMove, errors.Errorf("malformed coordinate '%s'", s)
	}
	r, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return NoMove, errors.WithMessage(err, "parse row")
	}
	c, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil {
		return NoMove, errors.WithMessage(err, "parse column")
	}
	coord := Coord{Row: r, Col: c}
	if !coord.Valid() {
		return NoMove, errors.Errorf("coordinate '%s' is out of the board", s)
	}
	return coord, nil
}
