package collision

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// sceneChunk is the number of queries one errgroup goroutine answers.
const sceneChunk = 64

// Scene is a brute-force list of colliders answering batched queries.
// Colliders must not be added while a batch is in flight.
type Scene struct {
	colliders []Collider
	limit     int
}

// NewScene creates an empty scene.
func NewScene(colliders ...Collider) *Scene {
	return &Scene{
		colliders: colliders,
		limit:     runtime.GOMAXPROCS(0),
	}
}

// Add appends a collider.
func (s *Scene) Add(c Collider) {
	s.colliders = append(s.colliders, c)
}

// Colliders returns the scene's colliders.
func (s *Scene) Colliders() []Collider {
	return s.colliders
}

// RaycastBatch implements Raycaster. Large batches are split across goroutines.
func (s *Scene) RaycastBatch(queries []Query, hits []Hit) {
	if len(queries) <= sceneChunk {
		s.raycastRange(queries, hits)
		return
	}

	var eg errgroup.Group
	eg.SetLimit(s.limit)
	for start := 0; start < len(queries); start += sceneChunk {
		end := min(start+sceneChunk, len(queries))
		eg.Go(func() error {
			s.raycastRange(queries[start:end], hits[start:end])
			return nil
		})
	}
	_ = eg.Wait()
}

// Raycast answers a single query.
func (s *Scene) Raycast(q Query) Hit {
	best := Hit{}
	bestDist := q.MaxDistance
	for _, c := range s.colliders {
		if c.Destroyed() {
			continue
		}
		if layered, ok := c.(interface{ LayerMask() uint32 }); ok && layered.LayerMask()&q.Mask == 0 {
			continue
		}
		hit, ok := c.Raycast(q.Origin, q.Direction, bestDist)
		if !ok || hit.Distance > bestDist {
			continue
		}
		best = hit
		bestDist = hit.Distance
	}
	return best
}

func (s *Scene) raycastRange(queries []Query, hits []Hit) {
	for i := range queries {
		hits[i] = s.Raycast(queries[i])
	}
}
