package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liquidine/bp-r3f/internal/game"
)

func newSQLite(t *testing.T) Store {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "data", "mines.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))
	return NewSQLiteStore(db)
}

func eachStore(t *testing.T, fn func(t *testing.T, st Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLite(t)) })
}

func TestStore_NotFound(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		_, err := st.Get(context.Background(), "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_SaveGetRoundTrip(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		e, err := game.NewRect(3, 4, 2, game.WithMines(10, 11))
		require.NoError(t, err)
		e.MarkTile(11)
		e.RevealTile(0)
		require.NoError(t, st.Save(ctx, "s1", e))

		got, err := st.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, e.Snapshot(), got.Snapshot())
	})
}

func TestStore_GetReturnsDetachedEngine(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		e, err := game.New(3, 1, game.WithMines(8))
		require.NoError(t, err)
		require.NoError(t, st.Save(ctx, "s1", e))

		g1, err := st.Get(ctx, "s1")
		require.NoError(t, err)
		g1.MarkTile(0)

		g2, err := st.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Zero(t, g2.Snapshot().MarkedTiles)

		require.NoError(t, st.Save(ctx, "s1", g1))
		g3, err := st.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 1, g3.Snapshot().MarkedTiles)
	})
}

func TestStore_NewGameReplacesOld(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		small, err := game.New(2, 1)
		require.NoError(t, err)
		big, err := game.New(5, 3)
		require.NoError(t, err)

		require.NoError(t, st.Save(ctx, "s1", small))
		require.NoError(t, st.Save(ctx, "s2", small))
		require.NoError(t, st.Save(ctx, "s1", big))

		got, err := st.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 25, got.Snapshot().Size())
		other, err := st.Get(ctx, "s2")
		require.NoError(t, err)
		assert.Equal(t, 4, other.Snapshot().Size())
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "mines.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}
