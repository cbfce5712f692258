package domain

// Grid is a 3x3 block of values: the cells of a sub-board or the outcomes
// of the meta grid.
type Grid [3][3]Player

var winConditions = [8][3]uint8{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// LineComplete reports whether a full row, column or diagonal of g belongs
// to player. Empty and Drawn never form a line.
func LineComplete(g Grid, player Player) bool {
	if !player.IsSide() {
		return false
	}
	for _, condition := range winConditions {
		isComplete := true
		for _, v := range condition {
			if g[v/3][v%3] != player {
				isComplete = false
				break
			}
		}
		if isComplete {
			return true
		}
	}
	return false
}

// MajorityOwner resolves a grid without a line: player if it owns strictly
// more cells than the opponent, the opponent if it owns strictly fewer,
// Drawn otherwise.
func MajorityOwner(g Grid, player Player) Player {
	var own, opp int
	for _, row := range g {
		for _, v := range row {
			switch v {
			case player:
				own++
			case player.Opponent():
				opp++
			}
		}
	}
	switch {
	case own > opp:
		return player
	case opp > own:
		return player.Opponent()
	default:
		return Drawn
	}
}

func (g Grid) Full() bool {
	for _, row := range g {
		for _, v := range row {
			if v == Empty {
				return false
			}
		}
	}
	return true
}
