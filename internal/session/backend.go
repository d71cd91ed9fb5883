package session

import (
	"context"

	"github.com/Liquidine/bp-r3f/internal/game"
	"github.com/Liquidine/bp-r3f/internal/remote"
)

// Backend is where moves are applied: the local engine or the remote authority.
// Every call returns the full post-move state.
type Backend interface {
	Start(ctx context.Context) (game.State, error)
	Reveal(ctx context.Context, index int) (game.State, error)
	Mark(ctx context.Context, index int) (game.State, error)
}

// LocalBackend runs the game in-process. A new engine is built on every Start.
type LocalBackend struct {
	Rows, Columns, Mines int
	Options              []game.Option

	engine *game.Engine
}

// Start builds a fresh board.
func (b *LocalBackend) Start(context.Context) (game.State, error) {
	e, err := game.NewRect(b.Rows, b.Columns, b.Mines, b.Options...)
	if err != nil {
		return game.State{}, err
	}
	b.engine = e
	return e.Snapshot(), nil
}

// Reveal opens the tile at index.
func (b *LocalBackend) Reveal(_ context.Context, index int) (game.State, error) {
	if b.engine == nil {
		return game.State{}, ErrNotStarted
	}
	b.engine.RevealTile(index)
	return b.engine.Snapshot(), nil
}

// Mark toggles the mark on the tile at index.
func (b *LocalBackend) Mark(_ context.Context, index int) (game.State, error) {
	if b.engine == nil {
		return game.State{}, ErrNotStarted
	}
	b.engine.MarkTile(index)
	return b.engine.Snapshot(), nil
}

// RemoteBackend forwards moves to the authority. Indices are converted to
// (row, column) with the board's column count.
type RemoteBackend struct {
	Client               *remote.Client
	Rows, Columns, Mines int
}

// Start asks the authority for a new board.
func (b *RemoteBackend) Start(ctx context.Context) (game.State, error) {
	return b.Client.StartNewGame(ctx, b.Rows, b.Columns, b.Mines)
}

// Reveal sends an opening interaction.
func (b *RemoteBackend) Reveal(ctx context.Context, index int) (game.State, error) {
	return b.Client.SendInteraction(ctx, index/b.Columns, index%b.Columns, false)
}

// Mark sends a marking interaction.
func (b *RemoteBackend) Mark(ctx context.Context, index int) (game.State, error) {
	return b.Client.SendInteraction(ctx, index/b.Columns, index%b.Columns, true)
}
