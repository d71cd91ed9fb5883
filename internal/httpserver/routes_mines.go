// internal/httpserver/routes_mines.go
//
// HTTP routes for the minesweeper game.
//   - POST /mines/jsonnew?rows=&columns=&mines= → start a game for the caller's session
//   - POST /mines/json?row=&column=&marking=    → reveal (marking=false) or toggle a mark
//   - GET  /mines/schema                        → JSON Schema of the reply body
//
// Every game reply is the full post-move snapshot (see package wire).
// A new game replaces whatever game the session had.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/Liquidine/bp-r3f/internal/game"
	"github.com/Liquidine/bp-r3f/internal/store"
	"github.com/Liquidine/bp-r3f/internal/wire"
)

// mountMines registers all /mines routes.
func (s *Server) mountMines(r chi.Router) {
	r.Route("/mines", func(r chi.Router) {
		r.Post("/jsonnew", s.handleNewGame)
		r.Post("/json", s.handleInteract)
		r.Get("/schema", handleSchema)
	})
}

// handleNewGame validates the board parameters, builds a fresh board and
// binds it to the session.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, ok1 := intParam(q, "rows")
	cols, ok2 := intParam(q, "columns")
	mines, ok3 := intParam(q, "mines")
	if !ok1 || !ok2 || !ok3 {
		http.Error(w, `{"error":"bad_parameters"}`, http.StatusBadRequest)
		return
	}
	if rows < 1 || cols < 1 || rows > s.cfg.MaxDimension || cols > s.cfg.MaxDimension {
		http.Error(w, `{"error":"bad_dimensions"}`, http.StatusBadRequest)
		return
	}
	e, err := s.newEngine(rows, cols, mines)
	if errors.Is(err, game.ErrInvalidConfiguration) {
		http.Error(w, `{"error":"bad_mine_count"}`, http.StatusBadRequest)
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("new game")
		http.Error(w, `{"error":"new_game_failed"}`, http.StatusInternalServerError)
		return
	}

	id := s.sessionID(w, r)
	s.mu.Lock()
	err = s.store.Save(r.Context(), id, e)
	s.mu.Unlock()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("session", id).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	hlog.FromRequest(r).Info().Str("session", id).Int("rows", rows).Int("columns", cols).Int("mines", mines).Msg("new game")
	writeSnapshot(w, e.Snapshot())
}

// handleInteract applies one reveal or mark to the session's game and
// returns the resulting snapshot.
func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	row, ok1 := intParam(q, "row")
	col, ok2 := intParam(q, "column")
	marking := false
	if v := q.Get("marking"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			ok2 = false
		}
		marking = b
	}
	if !ok1 || !ok2 {
		http.Error(w, `{"error":"bad_parameters"}`, http.StatusBadRequest)
		return
	}

	id := s.sessionID(w, r)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"no_game"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("session", id).Msg("load game")
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}

	rows, cols := e.Dimensions()
	if row < 0 || col < 0 || row >= rows || col >= cols {
		http.Error(w, `{"error":"out_of_grid"}`, http.StatusBadRequest)
		return
	}
	index := row*cols + col
	if marking {
		e.MarkTile(index)
	} else {
		e.RevealTile(index)
	}

	if err := s.store.Save(r.Context(), id, e); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("session", id).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	st := e.Snapshot()
	if st.Finished() {
		hlog.FromRequest(r).Info().Str("session", id).Str("outcome", string(st.Outcome)).Msg("game over")
	}
	writeSnapshot(w, st)
}

// handleSchema serves the JSON Schema of the snapshot body.
func handleSchema(w http.ResponseWriter, r *http.Request) {
	b, err := wire.Schema()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("build schema")
		http.Error(w, `{"error":"schema_failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(b)
}

func writeSnapshot(w http.ResponseWriter, st game.State) {
	_ = json.NewEncoder(w).Encode(wire.FromState(st))
}

// intParam parses a required integer query parameter.
func intParam(q url.Values, name string) (int, bool) {
	v := q.Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}
