// main.go
//
// Entry point of the minesweeper authority.
// Responsibilities:
//   - Load configuration (.env + environment).
//   - Configure the global zerolog logger.
//   - Pick the live-game store (memory or SQLite) and serve HTTP.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Liquidine/bp-r3f/internal/config"
	"github.com/Liquidine/bp-r3f/internal/httpserver"
	"github.com/Liquidine/bp-r3f/internal/store"
)

func main() {
	cfg := config.Load()
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	st, closeStore := openStore(cfg)
	defer closeStore()

	srv := httpserver.New(st, cfg.Server())
	log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("starting mines server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openStore returns the configured store and a function releasing it.
func openStore(cfg config.Config) (store.Store, func()) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := store.OpenDB(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
		}
		if err := store.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
		return store.NewSQLiteStore(db), func() { _ = db.Close() }
	case config.StoreMemory:
	default:
		log.Warn().Str("store", cfg.Store).Msg("unknown STORE; using memory")
	}
	return store.NewMemoryStore(), func() {}
}
