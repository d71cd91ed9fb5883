package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liquidine/bp-r3f/internal/game"
	"github.com/Liquidine/bp-r3f/internal/store"
	"github.com/Liquidine/bp-r3f/internal/wire"
)

func newTestServer(t *testing.T, mines ...int) *Server {
	t.Helper()
	s := New(store.NewMemoryStore(), Config{SessionSecret: "test-secret", MaxDimension: 16})
	if len(mines) > 0 {
		s.newEngine = func(rows, cols, n int) (*game.Engine, error) {
			return game.NewRect(rows, cols, n, game.WithMines(mines...))
		}
	}
	return s
}

func do(s *Server, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) game.State {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap, err := wire.Decode(rec.Body)
	require.NoError(t, err)
	st, err := snap.State()
	require.NoError(t, err)
	return st
}

// newGame starts a game and returns the session cookie bound to it.
func newGame(t *testing.T, s *Server, query string) (*http.Cookie, game.State) {
	t.Helper()
	rec := do(s, http.MethodPost, "/mines/jsonnew?"+query)
	c := sessionCookie(t, rec)
	return c, decodeState(t, rec)
}

func TestDiagnostics(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(s, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "POST /mines/jsonnew")

	rec = do(s, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_found"`)
}

func TestNotFound_EscapesPath(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/nope%22quoted%5C")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, `/nope"quoted\`, body["path"])
}

func TestSchemaRoute(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/mines/schema")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/schema+json", rec.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Minesweeper Snapshot", doc["title"])
}

func TestCORSPreflight(t *testing.T) {
	s := New(store.NewMemoryStore(), Config{ClientOrigin: "https://vr.example", SessionSecret: "x"})
	rec := do(s, http.MethodOptions, "/mines/json")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://vr.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestNewGame_RejectsBadParameters(t *testing.T) {
	s := newTestServer(t)
	for _, q := range []string{
		"",
		"rows=3&columns=3",
		"rows=a&columns=3&mines=1",
		"rows=0&columns=3&mines=1",
		"rows=3&columns=-2&mines=1",
		"rows=17&columns=3&mines=1",
		"rows=3&columns=3&mines=9",
		"rows=3&columns=3&mines=-1",
	} {
		rec := do(s, http.MethodPost, "/mines/jsonnew?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestNewGame_BindsSession(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodPost, "/mines/jsonnew?rows=2&columns=3&mines=1")
	c := sessionCookie(t, rec)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	st := decodeState(t, rec)
	assert.Equal(t, 2, st.Rows)
	assert.Equal(t, 3, st.Columns)
	assert.Equal(t, 1, st.MineCount)
	assert.Equal(t, game.StatusPlaying, st.Status)
	assert.Zero(t, st.OpenTiles)

	// A valid cookie is reused rather than reissued.
	rec = do(s, http.MethodPost, "/mines/jsonnew?rows=2&columns=2&mines=1", c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSecureCookies(t *testing.T) {
	s := New(store.NewMemoryStore(), Config{SessionSecret: "x", SecureCookies: true})
	c := sessionCookie(t, do(s, http.MethodPost, "/mines/jsonnew?rows=2&columns=2&mines=1"))
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
}

func TestInteract_NoGame(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodPost, "/mines/json?row=0&column=0&marking=false")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_game")

	forged := &http.Cookie{Name: sessionCookieName, Value: "not.a.jwt"}
	rec = do(s, http.MethodPost, "/mines/json?row=0&column=0", forged)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEqual(t, "not.a.jwt", sessionCookie(t, rec).Value)
}

func TestInteract_TokenFromOtherSecretIsRejected(t *testing.T) {
	other := New(store.NewMemoryStore(), Config{SessionSecret: "other"})
	c, _ := newGame(t, other, "rows=2&columns=2&mines=1")

	s := newTestServer(t)
	rec := do(s, http.MethodPost, "/mines/json?row=0&column=0", c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInteract_RejectsBadParameters(t *testing.T) {
	s := newTestServer(t, 4)
	c, _ := newGame(t, s, "rows=3&columns=3&mines=1")
	for _, q := range []string{
		"row=x&column=1",
		"row=1",
		"row=0&column=0&marking=maybe",
		"row=3&column=0",
		"row=0&column=3",
		"row=-1&column=0",
	} {
		rec := do(s, http.MethodPost, "/mines/json?"+q, c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestInteract_PlayToLoss(t *testing.T) {
	s := newTestServer(t, 4)
	c, _ := newGame(t, s, "rows=3&columns=3&mines=1")

	st := decodeState(t, do(s, http.MethodPost, "/mines/json?row=1&column=1&marking=true", c))
	assert.True(t, st.Grid[4].Marked)

	st = decodeState(t, do(s, http.MethodPost, "/mines/json?row=0&column=0&marking=false", c))
	assert.True(t, st.Grid[0].Revealed)
	assert.Equal(t, 1, st.Grid[0].Clue)
	assert.Equal(t, 1, st.OpenTiles)

	// A marked mine cannot be opened until unmarked.
	st = decodeState(t, do(s, http.MethodPost, "/mines/json?row=1&column=1", c))
	assert.Equal(t, game.StatusPlaying, st.Status)
	decodeState(t, do(s, http.MethodPost, "/mines/json?row=1&column=1&marking=true", c))

	st = decodeState(t, do(s, http.MethodPost, "/mines/json?row=1&column=1", c))
	assert.Equal(t, game.StatusGameOver, st.Status)
	assert.Equal(t, game.OutcomeLost, st.Outcome)
	assert.Equal(t, 9, st.OpenTiles)
}

func TestInteract_PlayToWin(t *testing.T) {
	s := newTestServer(t, 4)
	c, _ := newGame(t, s, "rows=3&columns=3&mines=1")

	decodeState(t, do(s, http.MethodPost, "/mines/json?row=1&column=1&marking=true", c))
	var st game.State
	for i := 0; i < 9; i++ {
		if i == 4 {
			continue
		}
		q := "/mines/json?row=" + string(rune('0'+i/3)) + "&column=" + string(rune('0'+i%3))
		st = decodeState(t, do(s, http.MethodPost, q, c))
	}
	assert.Equal(t, game.StatusGameOver, st.Status)
	assert.Equal(t, game.OutcomeWon, st.Outcome)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t)
	a, _ := newGame(t, s, "rows=4&columns=4&mines=3")
	b, _ := newGame(t, s, "rows=2&columns=5&mines=1")
	require.NotEqual(t, a.Value, b.Value)

	st := decodeState(t, do(s, http.MethodPost, "/mines/json?row=0&column=0&marking=true", a))
	assert.Equal(t, 4, st.Columns)
	assert.True(t, st.Grid[0].Marked)

	st = decodeState(t, do(s, http.MethodPost, "/mines/json?row=1&column=4&marking=true", b))
	assert.Equal(t, 5, st.Columns)
	assert.Equal(t, 1, st.MarkedTiles)
}

func TestNewGameReplacesOld(t *testing.T) {
	s := newTestServer(t)
	c, _ := newGame(t, s, "rows=4&columns=4&mines=3")
	rec := do(s, http.MethodPost, "/mines/jsonnew?rows=2&columns=2&mines=1", c)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodPost, "/mines/json?row=3&column=3&marking=true", c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBearerToken(t *testing.T) {
	s := newTestServer(t, 0)
	c, _ := newGame(t, s, "rows=1&columns=2&mines=1")

	req := httptest.NewRequest(http.MethodPost, "/mines/json?row=0&column=1", nil)
	req.Header.Set("Authorization", "Bearer "+c.Value)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	st := decodeState(t, rec)
	assert.True(t, st.Grid[1].Revealed)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
}
