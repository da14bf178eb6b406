// Package collision defines the batched ray-query contract the ballistics core
// consumes, plus a small axis-aligned box scene used by the headless runner.
package collision

import "gonum.org/v1/gonum/spatial/r3"

// Surface identifies the physical surface of a collider. The ballistics core
// maps it to a ballistic material.
type Surface string

// Query is one ray in a batch.
type Query struct {
	Origin      r3.Vec
	Direction   r3.Vec // unit length
	Mask        uint32
	MaxDistance float64
}

// Hit is the result of one query. Collider is nil on a miss.
type Hit struct {
	Collider Collider
	Point    r3.Vec
	Normal   r3.Vec
	Distance float64
}

// OK reports whether the query hit something.
func (h Hit) OK() bool {
	return h.Collider != nil
}

// Collider is a shape in the scene.
type Collider interface {
	Surface() Surface
	// Destroyed reports whether the collider was removed from the scene.
	Destroyed() bool
	// Raycast intersects a single ray with this collider only.
	// Rays starting inside the collider do not report it.
	Raycast(origin, dir r3.Vec, maxDistance float64) (Hit, bool)
}

// Raycaster answers batches of queries. hits has the same length as queries
// and hits[i] answers queries[i].
type Raycaster interface {
	RaycastBatch(queries []Query, hits []Hit)
}

// RaycasterFunc adapts a function to Raycaster.
type RaycasterFunc func(queries []Query, hits []Hit)

// RaycastBatch calls f.
func (f RaycasterFunc) RaycastBatch(queries []Query, hits []Hit) {
	f(queries, hits)
}
