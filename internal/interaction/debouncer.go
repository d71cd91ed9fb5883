// internal/interaction/debouncer.go
//
// Per-channel edge detector turning "hitbox overlaps a tile while the trigger
// is held", polled every frame, into exactly one action per contact episode.
//
// A channel is engaged from the frame its handler fires until the first frame
// in which its hitbox touches no tile at all. While engaged it never fires
// again, even if the hitbox slides onto a different tile with the trigger
// still held; that tile is skipped until the hitbox leaves the board.
//
// The debouncer is driven from the frame loop only and does no locking.
package interaction

// Input is what the scene supplies for one controller each frame.
type Input interface {
	// TriggerHeld reports whether the trigger is currently pressed.
	TriggerHeld() bool
	// Hitbox returns the controller's collision probe; false when it has none.
	Hitbox() (Box, bool)
}

// Source returns the channel's current input, or nil when the controller is
// not connected.
type Source func() Input

// Handler receives the index of the tile a channel acted on.
type Handler func(index int)

type channel struct {
	name    string
	source  Source
	handler Handler

	engaged bool
	tile    int // valid while engaged
}

// Debouncer runs the per-frame interaction scan for a set of channels.
type Debouncer struct {
	resolver Resolver
	channels []*channel
}

// NewDebouncer returns a debouncer resolving hitboxes with r.
func NewDebouncer(r Resolver) *Debouncer {
	return &Debouncer{resolver: r}
}

// SetResolver swaps the tile volumes, e.g. after the board was rebuilt.
// Channel engagement is kept.
func (d *Debouncer) SetResolver(r Resolver) { d.resolver = r }

// Bind registers a channel. Channels are evaluated in bind order.
// Binding an existing name replaces its source and handler and disengages it.
func (d *Debouncer) Bind(name string, src Source, h Handler) {
	for _, ch := range d.channels {
		if ch.name == name {
			ch.source, ch.handler = src, h
			ch.engaged = false
			return
		}
	}
	d.channels = append(d.channels, &channel{name: name, source: src, handler: h})
}

// Tick evaluates every channel once. Call it once per frame.
func (d *Debouncer) Tick() {
	for _, ch := range d.channels {
		d.step(ch)
	}
}

func (d *Debouncer) step(ch *channel) {
	if ch.source == nil || d.resolver == nil {
		return
	}
	in := ch.source()
	if in == nil {
		return
	}
	held := in.TriggerHeld()
	hitbox, ok := in.Hitbox()
	if !ok {
		return
	}

	index, hit := d.resolver.Resolve(hitbox)
	if !hit {
		ch.engaged = false
		return
	}
	if ch.engaged || !held {
		return
	}
	ch.engaged, ch.tile = true, index
	if ch.handler != nil {
		ch.handler(index)
	}
}

// Engaged returns the tile the named channel is holding, if any.
func (d *Debouncer) Engaged(name string) (int, bool) {
	for _, ch := range d.channels {
		if ch.name == name && ch.engaged {
			return ch.tile, true
		}
	}
	return -1, false
}

// Reset disengages every channel.
func (d *Debouncer) Reset() {
	for _, ch := range d.channels {
		ch.engaged = false
	}
}
