// internal/interaction/box.go
//
// Axis-aligned bounding volumes used to test a controller's hitbox against
// the board's tiles.
package interaction

import "math"

// Vec3 is a point or extent in scene units.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Scale returns v*k.
func (v Vec3) Scale(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }

// Box is an axis-aligned bounding box. A box with Min > Max on any axis is empty.
type Box struct {
	Min, Max Vec3
}

// BoxAround returns the box of the given size centred on c.
func BoxAround(c, size Vec3) Box {
	half := size.Scale(0.5)
	return Box{
		Min: Vec3{c.X - half.X, c.Y - half.Y, c.Z - half.Z},
		Max: c.Add(half),
	}
}

// BoxFromPoints returns the smallest box containing every point.
// With no points the result is empty.
func BoxFromPoints(points ...Vec3) Box {
	b := Box{
		Min: Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for _, p := range points {
		b.Min = Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)}
		b.Max = Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)}
	}
	return b
}

// Empty reports whether the box contains no points.
func (b Box) Empty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// Intersects reports whether b and o overlap. Touching faces count as overlap.
func (b Box) Intersects(o Box) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return !(o.Max.X < b.Min.X || o.Min.X > b.Max.X ||
		o.Max.Y < b.Min.Y || o.Min.Y > b.Max.Y ||
		o.Max.Z < b.Min.Z || o.Min.Z > b.Max.Z)
}

// Center returns the midpoint of the box.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}
