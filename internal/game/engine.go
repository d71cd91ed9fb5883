// internal/game/engine.go
//
// Local authoritative minesweeper engine.
// Responsibilities:
//   - Build a board: validate dimensions, place mines, compute clues.
//   - Apply reveals (with flood reveal) and mark toggles.
//   - Track state transitions: PLAYING → GAME_OVER (WON or LOST).
//
// Notes:
//   - Mine placement is rejection sampling over [0, rows*columns); the default
//     source is time-seeded, so boards are not reproducible unless a source or
//     a fixed layout is injected.
//   - Flood reveal runs on an explicit stack. Every neighbour it pops goes through
//     the same reveal step as a direct reveal, so a flood that reaches a mine ends
//     the game. With correct clues this cannot happen, but it is not prevented.
//   - The win check only compares counters; it does not verify that the marked
//     tiles are the mined ones.
package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Engine owns one game's grid and is its only writer in offline mode.
// It is not safe for concurrent use.
type Engine struct {
	rows, cols int
	mines      int
	grid       Grid
	status     Status
	outcome    Outcome
	open       int
	marked     int

	rng    *rand.Rand
	layout []int
}

// Option customises engine construction.
type Option func(*Engine)

// WithRand injects the random source used for mine placement.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithMines places mines at exactly the given indices instead of sampling.
// The number of indices must equal the requested mine count.
func WithMines(indices ...int) Option {
	return func(e *Engine) { e.layout = append([]int(nil), indices...) }
}

// New builds a size×size board with the given number of mines.
func New(size, mines int, opts ...Option) (*Engine, error) {
	return NewRect(size, size, mines, opts...)
}

// NewRect builds a rows×cols board with the given number of mines.
// Returns ErrInvalidConfiguration if mines >= rows*cols.
func NewRect(rows, cols, mines int, opts ...Option) (*Engine, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: board must be at least 1x1, got %dx%d", ErrInvalidConfiguration, rows, cols)
	}
	if mines < 0 || mines >= rows*cols {
		return nil, fmt.Errorf("%w: mine count %d must be in [0, %d)", ErrInvalidConfiguration, mines, rows*cols)
	}

	e := &Engine{
		rows:   rows,
		cols:   cols,
		mines:  mines,
		grid:   newGrid(rows * cols),
		status: StatusPlaying,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.layout != nil {
		if err := e.placeLayout(e.layout); err != nil {
			return nil, err
		}
	} else {
		if e.rng == nil {
			e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		e.placeMines(mines)
	}
	e.calculateClues()
	return e, nil
}

// newGrid allocates an all-default grid with fixed tile indices.
func newGrid(n int) Grid {
	g := make(Grid, n)
	for i := range g {
		g[i].Index = i
	}
	return g
}

// placeMines samples indices uniformly, letting the set absorb duplicates,
// until it holds mineCount distinct indices.
func (e *Engine) placeMines(mineCount int) {
	total := e.rows * e.cols
	picked := make(map[int]struct{}, mineCount)
	for len(picked) < mineCount {
		picked[e.rng.Intn(total)] = struct{}{}
	}
	for i := range picked {
		e.grid[i].Mine = true
	}
}

// placeLayout applies a fixed mine layout.
func (e *Engine) placeLayout(indices []int) error {
	if len(indices) != e.mines {
		return fmt.Errorf("%w: layout has %d mines, want %d", ErrInvalidConfiguration, len(indices), e.mines)
	}
	for _, i := range indices {
		if i < 0 || i >= len(e.grid) {
			return fmt.Errorf("%w: mine index %d out of range", ErrInvalidConfiguration, i)
		}
		if e.grid[i].Mine {
			return fmt.Errorf("%w: duplicate mine index %d", ErrInvalidConfiguration, i)
		}
		e.grid[i].Mine = true
	}
	return nil
}

// calculateClues sets every non-mine tile's clue to the number of mined neighbours.
func (e *Engine) calculateClues() {
	for i := range e.grid {
		if e.grid[i].Mine {
			e.grid[i].Clue = 0
			continue
		}
		clue := 0
		e.eachNeighbour(i, func(n int) {
			if e.grid[n].Mine {
				clue++
			}
		})
		e.grid[i].Clue = clue
	}
}

// eachNeighbour calls fn for every in-bounds neighbour of index (no wraparound).
func (e *Engine) eachNeighbour(index int, fn func(n int)) {
	row, col := index/e.cols, index%e.cols
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if r < 0 || r >= e.rows || c < 0 || c >= e.cols {
				continue
			}
			fn(r*e.cols + c)
		}
	}
}

// RevealTile opens the tile at index.
//
// No-op when the tile is revealed, marked, out of range, or the game is over.
// Revealing a mine ends the game as LOST and reveals the whole grid.
// Revealing a zero-clue tile flood-reveals its neighbourhood.
func (e *Engine) RevealTile(index int) {
	if !e.revealOne(index) {
		return
	}
	if e.grid[index].Clue != 0 || e.status != StatusPlaying {
		return
	}
	e.floodReveal(index)
}

// revealOne applies the reveal rules to a single tile and reports whether a
// safe tile was newly opened.
func (e *Engine) revealOne(index int) bool {
	if index < 0 || index >= len(e.grid) || e.status == StatusGameOver {
		return false
	}
	t := &e.grid[index]
	if t.Revealed || t.Marked {
		return false
	}
	if t.Mine {
		e.finish(OutcomeLost)
		return false
	}
	t.Revealed = true
	e.open++
	e.checkWinCondition()
	return true
}

// floodReveal opens the connected zero-clue region around start and its
// numbered border. Each tile is pushed only by a zero-clue tile that was just
// opened, and revealOne refuses tiles already open, so the walk terminates.
func (e *Engine) floodReveal(start int) {
	stack := []int{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e.eachNeighbour(cur, func(n int) {
			if e.status != StatusPlaying {
				return
			}
			if e.revealOne(n) && e.grid[n].Clue == 0 {
				stack = append(stack, n)
			}
		})
		if e.status != StatusPlaying {
			return
		}
	}
}

// MarkTile toggles the mark on an unrevealed tile while the game is playing.
func (e *Engine) MarkTile(index int) {
	if index < 0 || index >= len(e.grid) || e.status != StatusPlaying {
		return
	}
	t := &e.grid[index]
	if t.Revealed {
		return
	}
	if t.Marked {
		e.marked--
	} else {
		e.marked++
	}
	t.Marked = !t.Marked
	e.checkWinCondition()
}

// checkWinCondition ends the game as WON once every safe tile is open and
// the number of marks equals the number of mines.
func (e *Engine) checkWinCondition() {
	if e.status != StatusPlaying {
		return
	}
	if e.open == len(e.grid)-e.mines && e.marked == e.mines {
		e.finish(OutcomeWon)
	}
}

// finish moves the game to its terminal status and reveals every tile.
func (e *Engine) finish(o Outcome) {
	e.status = StatusGameOver
	e.outcome = o
	e.revealAll()
}

// revealAll opens every tile; used for both the loss and the win reveal.
func (e *Engine) revealAll() {
	for i := range e.grid {
		e.grid[i].Revealed = true
	}
	e.open = len(e.grid)
}

// Status reports the current status.
func (e *Engine) Status() Status { return e.status }

// Outcome reports how the game ended, or OutcomeNone while playing.
func (e *Engine) Outcome() Outcome { return e.outcome }

// Dimensions returns the board's rows and columns.
func (e *Engine) Dimensions() (rows, cols int) { return e.rows, e.cols }

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	g := make(Grid, len(e.grid))
	copy(g, e.grid)
	return State{
		Rows:        e.rows,
		Columns:     e.cols,
		Grid:        g,
		Status:      e.status,
		Outcome:     e.outcome,
		MineCount:   e.mines,
		OpenTiles:   e.open,
		MarkedTiles: e.marked,
	}
}

// Restore rebuilds an engine from a snapshot, e.g. one read back from a store.
// The grid is taken as-is (clues are not recomputed); dimensions and counters
// must agree with the tiles.
func Restore(s State) (*Engine, error) {
	if s.Rows < 1 || s.Columns < 1 || len(s.Grid) != s.Rows*s.Columns {
		return nil, fmt.Errorf("%w: grid of %d tiles does not match %dx%d", ErrInvalidConfiguration, len(s.Grid), s.Rows, s.Columns)
	}
	open, marked, mines := s.Grid.Count()
	if mines != s.MineCount || mines >= len(s.Grid) {
		return nil, fmt.Errorf("%w: %d mines on the grid, state says %d", ErrInvalidConfiguration, mines, s.MineCount)
	}
	if open != s.OpenTiles || marked != s.MarkedTiles {
		return nil, fmt.Errorf("%w: counters do not match the grid", ErrInvalidConfiguration)
	}
	switch s.Status {
	case StatusPlaying, StatusGameOver:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidConfiguration, s.Status)
	}

	g := make(Grid, len(s.Grid))
	copy(g, s.Grid)
	for i := range g {
		g[i].Index = i
	}
	return &Engine{
		rows:    s.Rows,
		cols:    s.Columns,
		mines:   s.MineCount,
		grid:    g,
		status:  s.Status,
		outcome: s.Outcome,
		open:    open,
		marked:  marked,
	}, nil
}
