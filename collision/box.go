package collision

import (
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned box collider.
type Box struct {
	Min, Max r3.Vec
	Layer    uint32
	Material Surface

	destroyed atomic.Bool
}

// DefaultLayer is used for boxes created without a layer.
const DefaultLayer uint32 = 1

// NewBox returns a box spanning min..max on the given layer.
func NewBox(min, max r3.Vec, layer uint32, surface Surface) *Box {
	if layer == 0 {
		layer = DefaultLayer
	}
	return &Box{Min: min, Max: max, Layer: layer, Material: surface}
}

// LayerMask returns the layer bits queries are matched against.
func (b *Box) LayerMask() uint32 {
	return b.Layer
}

// Surface implements Collider.
func (b *Box) Surface() Surface {
	return b.Material
}

// Destroyed implements Collider.
func (b *Box) Destroyed() bool {
	return b.destroyed.Load()
}

// Destroy marks the box as removed. Scenes skip destroyed boxes.
func (b *Box) Destroy() {
	b.destroyed.Store(true)
}

// Contains reports whether p lies inside or on the box.
func (b *Box) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Raycast implements Collider using the slab method.
func (b *Box) Raycast(origin, dir r3.Vec, maxDistance float64) (Hit, bool) {
	if b.Destroyed() {
		return Hit{}, false
	}

	tmin := math.Inf(-1)
	tmax := math.Inf(1)
	var normal r3.Vec

	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if math.Abs(d[axis]) < 1e-12 {
			// Parallel to the slab
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return Hit{}, false
			}
			continue
		}

		inv := 1 / d[axis]
		t0 := (lo[axis] - o[axis]) * inv
		t1 := (hi[axis] - o[axis]) * inv
		sign := -1.0
		if t0 > t1 {
			t0, t1 = t1, t0
			sign = 1
		}
		if t0 > tmin {
			tmin = t0
			normal = axisNormal(axis, sign)
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return Hit{}, false
		}
	}

	// Origin inside (or behind) the entry face
	if tmin < 0 || tmin > maxDistance {
		return Hit{}, false
	}

	return Hit{
		Collider: b,
		Point:    r3.Add(origin, r3.Scale(tmin, dir)),
		Normal:   normal,
		Distance: tmin,
	}, true
}

func axisNormal(axis int, sign float64) r3.Vec {
	switch axis {
	case 0:
		return r3.Vec{X: sign}
	case 1:
		return r3.Vec{Y: sign}
	default:
		return r3.Vec{Z: sign}
	}
}
