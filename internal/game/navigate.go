// internal/game/navigate.go
//
// Cursor movement across letter cells. Manual left/right navigation and
// auto-advance after a correct input or hint both go through NextEligible,
// so the two can never diverge and the cursor never rests on a symbol.

package game

// NextEligible scans in direction (+1 or -1) starting just past from,
// skipping symbol cells. Returns the first letter-cell index found and
// true, or false when none remain in that direction.
func (g *Game) NextEligible(from, direction int) (int, bool) {
	if direction >= 0 {
		direction = 1
	} else {
		direction = -1
	}
	for i := from + direction; i >= 0 && i < len(g.cells); i += direction {
		if !g.cells[i].IsSymbol {
			return i, true
		}
	}
	return 0, false
}

// MoveCursor shifts the selection one eligible cell in direction, if any.
func (g *Game) MoveCursor(direction int) {
	if next, ok := g.NextEligible(g.cursor, direction); ok {
		g.cursor = next
	}
}
