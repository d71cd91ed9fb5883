// internal/game/state.go
//
// Read-side helpers for State.
// A State is never patched field by field by the sync layer: every update
// arrives as a whole snapshot and replaces the previous one via Apply.

package game

// Size returns the number of tiles on the board.
func (s State) Size() int { return s.Rows * s.Columns }

// Index converts a (row, col) pair to a grid index.
func (s State) Index(row, col int) int { return row*s.Columns + col }

// Position converts a grid index to its (row, col) pair.
func (s State) Position(index int) (row, col int) {
	if s.Columns <= 0 {
		return 0, 0
	}
	return index / s.Columns, index % s.Columns
}

// InBounds reports whether index addresses a tile of this board.
func (s State) InBounds(index int) bool { return index >= 0 && index < len(s.Grid) }

// Tile returns the tile at index, or false when index is out of range.
func (s State) Tile(index int) (Tile, bool) {
	if !s.InBounds(index) {
		return Tile{}, false
	}
	return s.Grid[index], true
}

// Finished reports whether the game reached its terminal status.
func (s State) Finished() bool { return s.Status == StatusGameOver }

// Clone returns a deep copy so callers can hold on to a snapshot
// while the producer keeps mutating its own grid.
func (s State) Clone() State {
	out := s
	if s.Grid != nil {
		out.Grid = make(Grid, len(s.Grid))
		copy(out.Grid, s.Grid)
	}
	return out
}

// Apply replaces the receiver with next. Nothing from the receiver is merged.
func (s State) Apply(next State) State { return next.Clone() }

// Count walks the grid and returns the number of revealed, marked and mined tiles.
func (g Grid) Count() (open, marked, mines int) {
	for _, t := range g {
		if t.Revealed {
			open++
		}
		if t.Marked {
			marked++
		}
		if t.Mine {
			mines++
		}
	}
	return open, marked, mines
}
