package domain

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrMalformedBoard = errors.New("malformed board")

func parseSymbol(ch byte) (Player, bool) {
	for p, s := range symbols {
		if s == ch {
			return Player(p), true
		}
	}
	return Empty, false
}

// ParseBoard reads the format written by Board.String. Separators and
// whitespace are ignored. A sub-board whose nine cells all carry the same
// X, O or # symbol is decided for that owner; any other sub-board is rebuilt
// cell by cell and decided the way Apply would decide it.
func ParseBoard(s string) (Board, error) {
	var cells [Size][Size]Player
	row := 0
	for _, line := range strings.Split(s, "\n") {
		values := make([]Player, 0, Size)
		for i := 0; i < len(line); i++ {
			switch ch := line[i]; ch {
			case ' ', '\t', '|', '-', '+', '\r':
				continue
			default:
				p, ok := parseSymbol(ch)
				if !ok {
					return Board{}, errors.WithMessagef(ErrMalformedBoard, "unknown symbol '%c'", ch)
				}
				values = append(values, p)
			}
		}
		if len(values) == 0 {
			continue
		}
		if len(values) != Size {
			return Board{}, errors.WithMessagef(ErrMalformedBoard, "row %d has %d cells", row, len(values))
		}
		if row == Size {
			return Board{}, errors.WithMessage(ErrMalformedBoard, "too many rows")
		}
		copy(cells[row][:], values)
		row++
	}
	if row != Size {
		return Board{}, errors.WithMessagef(ErrMalformedBoard, "expected %d rows, got %d", Size, row)
	}

	var b Board
	for R := range b.cells {
		for C := range b.cells[R] {
			var sub Grid
			for r := range sub {
				for c := range sub[r] {
					sub[r][c] = cells[3*R+r][3*C+c]
				}
			}
			meta, err := decide(sub)
			if err != nil {
				return Board{}, errors.WithMessagef(err, "sub-board %d,%d", R, C)
			}
			b.cells[R][C] = meta
		}
	}
	return b, nil
}

func decide(sub Grid) (MetaCell, error) {
	first := sub[0][0]
	uniform := true
	for r := range sub {
		for c := range sub[r] {
			if sub[r][c] != first {
				uniform = false
			}
		}
	}
	if uniform && first != Empty {
		return MetaCell{owner: first}, nil
	}
	for r := range sub {
		for c := range sub[r] {
			if sub[r][c] == Drawn {
				return MetaCell{}, errors.WithMessage(ErrMalformedBoard, "drawn marker inside a playable sub-board")
			}
		}
	}
	switch {
	case LineComplete(sub, Mine):
		return MetaCell{owner: Mine}, nil
	case LineComplete(sub, Theirs):
		return MetaCell{owner: Theirs}, nil
	case sub.Full():
		return MetaCell{owner: Drawn}, nil
	default:
		return MetaCell{sub: &sub}, nil
	}
}
