// internal/wire/wire.go
//
// JSON shape exchanged between the authority and remote clients.
//
//	POST {base}/jsonnew?rows=R&columns=C&mines=M
//	POST {base}/json?row=R&column=C&marking=bool
//	→ { "tiles": Tile[R][C], "gameStatus": "PLAYING" | "GAME_OVER", "outcome": "WON" | "LOST" }
//
// Responsibilities:
//   - Encode an engine snapshot for the wire (FromState).
//   - Decode and validate a reply at the boundary (Decode, Snapshot.State);
//     every shape violation becomes an ErrMalformed error instead of a zero value
//     leaking into the game state.
//   - Describe the shape as a JSON Schema document (Schema).
//
// "outcome" is additive; peers that do not send it are still accepted.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Liquidine/bp-r3f/internal/game"
)

// ErrMalformed marks a payload that does not match the snapshot schema.
var ErrMalformed = errors.New("malformed snapshot")

// legacyGameOver is the spelling some authorities use for the terminal status.
const legacyGameOver = "GAME OVER"

// Tile is one cell as sent on the wire. Pointers let Decode tell a missing
// field apart from a false/zero one.
type Tile struct {
	Revealed *bool `json:"revealed" jsonschema:"required"`
	Mine     *bool `json:"mine" jsonschema:"required"`
	Clue     *int  `json:"clue" jsonschema:"required,minimum=0,maximum=8"`
	Marked   *bool `json:"marked" jsonschema:"required"`
}

// Snapshot is the full board reply.
type Snapshot struct {
	Tiles      [][]Tile `json:"tiles" jsonschema:"required"`
	GameStatus *string  `json:"gameStatus" jsonschema:"required,enum=PLAYING,enum=GAME_OVER,enum=GAME OVER"`
	Outcome    string   `json:"outcome,omitempty" jsonschema:"enum=WON,enum=LOST"`
}

// FromState converts an engine snapshot into its wire form, row by row.
func FromState(s game.State) Snapshot {
	tiles := make([][]Tile, s.Rows)
	for r := 0; r < s.Rows; r++ {
		row := make([]Tile, s.Columns)
		for c := 0; c < s.Columns; c++ {
			t := s.Grid[s.Index(r, c)]
			row[c] = Tile{
				Revealed: boolPtr(t.Revealed),
				Mine:     boolPtr(t.Mine),
				Clue:     intPtr(t.Clue),
				Marked:   boolPtr(t.Marked),
			}
		}
		tiles[r] = row
	}
	status := string(s.Status)
	return Snapshot{Tiles: tiles, GameStatus: &status, Outcome: string(s.Outcome)}
}

// Decode reads one snapshot from r. It only checks that the body is JSON of
// the right general shape; call State to validate the content.
func Decode(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}

// State validates the snapshot and flattens it into a game.State.
// Counters are recomputed from the tiles.
func (s Snapshot) State() (game.State, error) {
	status, err := parseStatus(s.GameStatus)
	if err != nil {
		return game.State{}, err
	}
	outcome, err := parseOutcome(s.Outcome, status)
	if err != nil {
		return game.State{}, err
	}
	if len(s.Tiles) == 0 || len(s.Tiles[0]) == 0 {
		return game.State{}, fmt.Errorf("%w: tiles missing or empty", ErrMalformed)
	}

	rows, cols := len(s.Tiles), len(s.Tiles[0])
	grid := make(game.Grid, 0, rows*cols)
	for r, row := range s.Tiles {
		if len(row) != cols {
			return game.State{}, fmt.Errorf("%w: row %d has %d tiles, want %d", ErrMalformed, r, len(row), cols)
		}
		for c, t := range row {
			if t.Revealed == nil || t.Mine == nil || t.Clue == nil || t.Marked == nil {
				return game.State{}, fmt.Errorf("%w: tile (%d,%d) is missing fields", ErrMalformed, r, c)
			}
			if *t.Clue < 0 || *t.Clue > 8 {
				return game.State{}, fmt.Errorf("%w: tile (%d,%d) has clue %d", ErrMalformed, r, c, *t.Clue)
			}
			grid = append(grid, game.Tile{
				Index:    len(grid),
				Revealed: *t.Revealed,
				Mine:     *t.Mine,
				Clue:     *t.Clue,
				Marked:   *t.Marked,
			})
		}
	}

	open, marked, mines := grid.Count()
	return game.State{
		Rows:        rows,
		Columns:     cols,
		Grid:        grid,
		Status:      status,
		Outcome:     outcome,
		MineCount:   mines,
		OpenTiles:   open,
		MarkedTiles: marked,
	}, nil
}

func parseStatus(raw *string) (game.Status, error) {
	if raw == nil {
		return "", fmt.Errorf("%w: gameStatus missing", ErrMalformed)
	}
	switch strings.ToUpper(strings.TrimSpace(*raw)) {
	case string(game.StatusPlaying):
		return game.StatusPlaying, nil
	case string(game.StatusGameOver), legacyGameOver:
		return game.StatusGameOver, nil
	}
	return "", fmt.Errorf("%w: unknown gameStatus %q", ErrMalformed, *raw)
}

func parseOutcome(raw string, status game.Status) (game.Outcome, error) {
	switch game.Outcome(strings.ToUpper(raw)) {
	case game.OutcomeNone:
		return game.OutcomeNone, nil
	case game.OutcomeWon:
		if status != game.StatusGameOver {
			break
		}
		return game.OutcomeWon, nil
	case game.OutcomeLost:
		if status != game.StatusGameOver {
			break
		}
		return game.OutcomeLost, nil
	}
	return "", fmt.Errorf("%w: outcome %q with status %s", ErrMalformed, raw, status)
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
