package domain

// Player is the value of a cell, of a decided sub-board or of a game result.
// Drawn never appears inside a sub-board.
type Player int8

const (
	Empty Player = iota
	Mine
	Theirs
	Drawn
)

var symbols = [...]byte{'.', 'X', 'O', '#'}

func (p Player) Opponent() Player {
	switch p {
	case Mine:
		return Theirs
	case Theirs:
		return Mine
	default:
		return p
	}
}

// IsSide reports whether p is one of the two moving sides.
func (p Player) IsSide() bool {
	return p == Mine || p == Theirs
}

func (p Player) Symbol() byte {
	if p < Empty || p > Drawn {
		return '?'
	}
	return symbols[p]
}

func (p Player) String() string {
	switch p {
	case Empty:
		return "empty"
	case Mine:
		return "mine"
	case Theirs:
		return "theirs"
	case Drawn:
		return "drawn"
	default:
		return "unknown"
	}
}
