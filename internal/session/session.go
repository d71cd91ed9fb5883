// internal/session/session.go
//
// Dual-mode state synchronisation between the interaction layer and a game backend.
// Responsibilities:
//   - Route reveal/mark handlers to a Backend (local engine or remote authority)
//     through one code path.
//   - Hold the last-known game.State for the renderer, replacing it wholesale
//     on every result.
//   - Gate interaction behind a loading flag until the first snapshot arrives.
//   - Drive the per-frame interaction debouncer.
//
// Threading:
//   - Frame, Start, Reveal, Mark and the read accessors belong to the frame thread.
//   - In async (remote) mode each request runs on its own goroutine; its result
//     is parked in a mailbox and applied by the next Frame, so the state is only
//     ever written on the frame thread.
//   - Requests are not queued or ordered. When two are in flight, the one that
//     resolves last overwrites the state. Nothing retries.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Liquidine/bp-r3f/internal/game"
	"github.com/Liquidine/bp-r3f/internal/interaction"
	"github.com/Liquidine/bp-r3f/internal/remote"
)

// ErrNotStarted is returned by a backend asked to move before Start.
var ErrNotStarted = errors.New("game not started")

// Channel names used by BindControllers.
const (
	ChannelLeft  = "left"
	ChannelRight = "right"
)

// TileSize is the edge length of a tile in the VR scene.
const TileSize = 1.4

type op string

const (
	opStart  op = "start"
	opReveal op = "reveal"
	opMark   op = "mark"
)

type result struct {
	op    op
	index int
	state game.State
	err   error
}

// Session is one player's view of a game, offline or online.
type Session struct {
	backend Backend
	async   bool

	ctx    context.Context
	cancel context.CancelFunc

	state   game.State
	loading bool
	err     error
	pending int

	mu      sync.Mutex
	mailbox []result

	debouncer *interaction.Debouncer
}

// Option customises a Session.
type Option func(*Session)

// WithResolver sets the tile volumes used by the debouncer.
func WithResolver(r interaction.Resolver) Option {
	return func(s *Session) { s.debouncer.SetResolver(r) }
}

// New wraps a backend. With async set, backend calls run on goroutines and
// their results are applied on the next Frame. Without WithResolver the
// debouncer resolves nothing.
func New(b Backend, async bool, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		backend:   b,
		async:     async,
		ctx:       ctx,
		cancel:    cancel,
		debouncer: interaction.NewDebouncer(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewLocal plays a size×size game with the in-process engine.
func NewLocal(size, mines int, opts ...Option) *Session {
	b := &LocalBackend{Rows: size, Columns: size, Mines: mines}
	base := []Option{WithResolver(interaction.Layout{Rows: size, Columns: size, TileSize: TileSize})}
	return New(b, false, append(base, opts...)...)
}

// NewRemote plays a rows×columns game against the authority behind c.
func NewRemote(c *remote.Client, rows, columns, mines int, opts ...Option) *Session {
	b := &RemoteBackend{Client: c, Rows: rows, Columns: columns, Mines: mines}
	base := []Option{WithResolver(interaction.Layout{Rows: rows, Columns: columns, TileSize: TileSize})}
	return New(b, true, append(base, opts...)...)
}

// BindControllers wires the two VR controllers: the left one marks, the right one reveals.
func (s *Session) BindControllers(left, right interaction.Source) {
	s.debouncer.Bind(ChannelLeft, left, s.Mark)
	s.debouncer.Bind(ChannelRight, right, s.Reveal)
}

// Debouncer exposes the interaction debouncer for custom bindings.
func (s *Session) Debouncer() *interaction.Debouncer { return s.debouncer }

// Start begins a new game. Interaction is suppressed until the first
// snapshot (or a failure) comes back. The start request ends when either ctx
// or the session is done; later moves run under the session's context only.
func (s *Session) Start(ctx context.Context) {
	s.loading = true
	s.debouncer.Reset()
	s.dispatch(opStart, -1, func(sessionCtx context.Context) (game.State, error) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(sessionCtx, cancel)
		defer stop()
		return s.backend.Start(ctx)
	})
}

// Reveal opens the tile at index. Ignored while loading or out of range.
func (s *Session) Reveal(index int) {
	if !s.accepts(index) {
		return
	}
	s.dispatch(opReveal, index, func(ctx context.Context) (game.State, error) {
		return s.backend.Reveal(ctx, index)
	})
}

// Mark toggles the mark on the tile at index. Ignored while loading or out of range.
func (s *Session) Mark(index int) {
	if !s.accepts(index) {
		return
	}
	s.dispatch(opMark, index, func(ctx context.Context) (game.State, error) {
		return s.backend.Mark(ctx, index)
	})
}

func (s *Session) accepts(index int) bool {
	return !s.loading && s.state.InBounds(index)
}

// Frame applies every result resolved since the last frame, then runs the
// interaction scan unless the session is loading.
func (s *Session) Frame() {
	s.drain()
	if s.loading {
		return
	}
	s.debouncer.Tick()
}

func (s *Session) dispatch(o op, index int, call func(context.Context) (game.State, error)) {
	if !s.async {
		st, err := call(s.ctx)
		s.apply(result{op: o, index: index, state: st, err: err})
		return
	}
	s.pending++
	go func() {
		st, err := call(s.ctx)
		s.mu.Lock()
		s.mailbox = append(s.mailbox, result{op: o, index: index, state: st, err: err})
		s.mu.Unlock()
	}()
}

func (s *Session) drain() {
	s.mu.Lock()
	batch := s.mailbox
	s.mailbox = nil
	s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}

	for _, r := range batch {
		s.pending--
		s.apply(r)
	}
}

func (s *Session) apply(r result) {
	if r.op == opStart {
		s.loading = false
	}
	if r.err != nil {
		s.err = r.err
		log.Warn().Err(r.err).Str("op", string(r.op)).Int("index", r.index).Msg("mines backend call failed")
		return
	}
	s.err = nil
	s.state = s.state.Apply(r.state)
	if s.state.Finished() {
		log.Info().Str("outcome", string(s.state.Outcome)).Msg("game over")
	}
}

// State returns a copy of the last-known snapshot.
func (s *Session) State() game.State { return s.state.Clone() }

// Loading reports whether the session is waiting for its first snapshot.
func (s *Session) Loading() bool { return s.loading }

// Err returns the failure of the most recent backend call, or nil if it succeeded.
func (s *Session) Err() error { return s.err }

// Pending returns the number of requests dispatched but not yet applied.
func (s *Session) Pending() int { return s.pending }

// Close cancels requests still in flight. Nothing resolved after Close is applied.
func (s *Session) Close() { s.cancel() }
