package interaction

// Resolver maps a hitbox to the tile it touches.
type Resolver interface {
	// Resolve returns the lowest tile index whose volume intersects hitbox.
	Resolve(hitbox Box) (index int, ok bool)
}

// Bounds is a resolver over tile volumes supplied by the renderer,
// indexed like the grid.
type Bounds []Box

// Resolve scans tiles in index order and stops at the first intersection, so a
// hitbox straddling several tiles resolves to the lowest index.
func (b Bounds) Resolve(hitbox Box) (int, bool) {
	for i, tile := range b {
		if tile.Intersects(hitbox) {
			return i, true
		}
	}
	return -1, false
}

// Layout computes tile volumes for a flat board lying in the XZ plane:
// column runs along +X, row along +Z, and the board is offset by half its
// extent so that Origin sits at its middle.
type Layout struct {
	Rows, Columns int
	TileSize      float64 // edge length of a tile
	Gap           float64 // space between neighbouring tiles
	Thickness     float64 // Y extent; defaults to TileSize when zero
	Origin        Vec3
}

// DefaultLayout is the 9x9 board of the VR scene (1.4 unit tiles, no gap).
func DefaultLayout() Layout {
	return Layout{Rows: 9, Columns: 9, TileSize: 1.4}
}

func (l Layout) spacing() float64 { return l.TileSize + l.Gap }

// Len returns the number of tiles.
func (l Layout) Len() int { return l.Rows * l.Columns }

// TileCenter returns the centre of the tile at index.
func (l Layout) TileCenter(index int) Vec3 {
	s := l.spacing()
	row, col := index/l.Columns, index%l.Columns
	return l.Origin.Add(Vec3{
		X: float64(col)*s - float64(l.Columns)*s/2,
		Z: float64(row)*s - float64(l.Rows)*s/2,
	})
}

// TileBounds returns the volume of the tile at index.
func (l Layout) TileBounds(index int) Box {
	h := l.Thickness
	if h == 0 {
		h = l.TileSize
	}
	return BoxAround(l.TileCenter(index), Vec3{l.TileSize, h, l.TileSize})
}

// Bounds materialises every tile volume, e.g. to hand to the renderer.
func (l Layout) Bounds() Bounds {
	out := make(Bounds, l.Len())
	for i := range out {
		out[i] = l.TileBounds(i)
	}
	return out
}

// Resolve computes each tile's volume in index order and returns the first
// one the hitbox intersects.
func (l Layout) Resolve(hitbox Box) (int, bool) {
	if l.Columns <= 0 {
		return -1, false
	}
	for i := 0; i < l.Len(); i++ {
		if l.TileBounds(i).Intersects(hitbox) {
			return i, true
		}
	}
	return -1, false
}
