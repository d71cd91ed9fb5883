// internal/store/sqlite.go
//
// SQLite-backed Store.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded sql/*.sql migrations (idempotent, recorded in _migrations).
//   - Persisting each session's live game as a JSON snapshot.
//
// Note: only the current game of a session is kept; a new game replaces the row.

package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/Liquidine/bp-r3f/internal/game"
)

//go:embed sql/*.sql
var migrations embed.FS

// OpenDB opens (and creates if missing) a SQLite database file.
// The parent directory is created for relative paths such as ./data/mines.db.
func OpenDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// Migrate applies every embedded migration not yet recorded in _migrations,
// in lexical order, each inside its own transaction.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(migrations, "sql", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a Store over a migrated database.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

// Save upserts the session's snapshot.
func (s *sqliteStore) Save(ctx context.Context, id string, e *game.Engine) error {
	body, err := json.Marshal(e.Snapshot())
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO games (session_id, state, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(session_id) DO UPDATE SET state=excluded.state, updated_at=excluded.updated_at`,
		id, string(body), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

// Get loads and restores the session's snapshot.
func (s *sqliteStore) Get(ctx context.Context, id string) (*game.Engine, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM games WHERE session_id=?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}

	var st game.State
	if err := json.Unmarshal([]byte(body), &st); err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	e, err := game.Restore(st)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", id, err)
	}
	return e, nil
}
