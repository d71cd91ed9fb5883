// internal/game/types.go
//
// Core type definitions for the minesweeper engine.
// Defines:
//   - Tile: one cell of the board (identity + mutable flags).
//   - Grid: row-major sequence of tiles.
//   - Status / Outcome: playing vs. terminal, and how the terminal state was reached.
//   - State: the read-only snapshot handed to renderers and replaced on every update.

package game

import "errors"

// ErrInvalidConfiguration is returned when a board cannot be built
// (mine count not below the cell count, non-positive dimensions, bad fixed layout).
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Status is the coarse game status.
// Win and loss share the same terminal status; Outcome tells them apart.
type Status string

const (
	StatusPlaying  Status = "PLAYING"
	StatusGameOver Status = "GAME_OVER"
)

// Outcome distinguishes a terminal win from a terminal loss.
// It is empty while the game is still being played.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWon  Outcome = "WON"
	OutcomeLost Outcome = "LOST"
)

// Tile is a single cell. Index never changes after creation.
type Tile struct {
	Index    int  `json:"index"`
	Revealed bool `json:"revealed"`
	Mine     bool `json:"mine"`
	Clue     int  `json:"clue"` // mines among the up-to-8 neighbours; 0 for mines
	Marked   bool `json:"marked"`
}

// Grid is the ordered tile sequence, index = row*columns + col.
type Grid []Tile

// State is a full snapshot of one game.
type State struct {
	Rows        int     `json:"rows"`
	Columns     int     `json:"columns"`
	Grid        Grid    `json:"grid"`
	Status      Status  `json:"status"`
	Outcome     Outcome `json:"outcome,omitempty"`
	MineCount   int     `json:"mineCount"`
	OpenTiles   int     `json:"openTiles"`
	MarkedTiles int     `json:"markedTiles"`
}
