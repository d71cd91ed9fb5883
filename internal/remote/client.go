// internal/remote/client.go
//
// Thin client to a remote authoritative minesweeper service.
// Responsibilities:
//   - Translate (rows, columns, mines) and (row, column, marking) into the
//     service's POST endpoints.
//   - Validate each reply at the boundary and turn it into a fresh game.State.
//
// Notes:
//   - The client applies no game rules; the service is the only source of truth.
//   - No retries. Failures come back as ErrTransport (request never got a reply)
//     or ErrProtocol (the reply was not a valid snapshot).
//   - Requests carry no sequence numbers: two interactions in flight may resolve
//     in either order, and the caller decides which reply it keeps.
//   - A cookie jar keeps the service's session cookie, which is how the
//     service ties successive interactions to one game.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"

	"github.com/Liquidine/bp-r3f/internal/game"
	"github.com/Liquidine/bp-r3f/internal/wire"
)

var (
	// ErrTransport wraps failures to reach the service.
	ErrTransport = errors.New("transport error")
	// ErrProtocol wraps replies that are not valid snapshots.
	ErrProtocol = errors.New("protocol error")
)

// Config is the endpoint configuration injected at construction.
type Config struct {
	BaseURL string        // e.g. http://localhost:8080/mines
	Timeout time.Duration // per request; zero means no timeout
}

// Client issues start/interact requests against one service.
// Safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (its Jar and Timeout are kept as given).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New validates cfg and builds a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("remote: invalid base URL %q", cfg.BaseURL)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	c := &Client{
		base: base,
		http: &http.Client{Jar: jar, Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StartNewGame asks the service for a new rows×columns board with the given mine count.
func (c *Client) StartNewGame(ctx context.Context, rows, columns, mines int) (game.State, error) {
	q := url.Values{}
	q.Set("rows", strconv.Itoa(rows))
	q.Set("columns", strconv.Itoa(columns))
	q.Set("mines", strconv.Itoa(mines))

	st, err := c.post(ctx, "jsonnew", q)
	if err != nil {
		return game.State{}, err
	}
	if st.Rows != rows || st.Columns != columns {
		return game.State{}, fmt.Errorf("%w: jsonnew: asked for %dx%d, got %dx%d", ErrProtocol, rows, columns, st.Rows, st.Columns)
	}
	return st, nil
}

// SendInteraction reveals (marking=false) or toggles the mark on (marking=true)
// the tile at (row, column) and returns the service's post-move snapshot.
func (c *Client) SendInteraction(ctx context.Context, row, column int, marking bool) (game.State, error) {
	q := url.Values{}
	q.Set("row", strconv.Itoa(row))
	q.Set("column", strconv.Itoa(column))
	q.Set("marking", strconv.FormatBool(marking))
	return c.post(ctx, "json", q)
}

// post sends one request and decodes the snapshot reply.
func (c *Client) post(ctx context.Context, endpoint string, q url.Values) (game.State, error) {
	u := *c.base
	u.Path = u.Path + "/" + endpoint
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return game.State{}, fmt.Errorf("%w: %s: %v", ErrTransport, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("endpoint", endpoint).Msg("mines request failed")
		return game.State{}, fmt.Errorf("%w: %s: %v", ErrTransport, endpoint, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("endpoint", endpoint).
		Str("query", u.RawQuery).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("mines request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return game.State{}, fmt.Errorf("%w: %s: status %d: %s", ErrProtocol, endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	snap, err := wire.Decode(resp.Body)
	if err != nil {
		return game.State{}, fmt.Errorf("%w: %s: %w", ErrProtocol, endpoint, err)
	}
	st, err := snap.State()
	if err != nil {
		return game.State{}, fmt.Errorf("%w: %s: %w", ErrProtocol, endpoint, err)
	}
	return st, nil
}
