// Package visual keeps one ECS entity per in-flight bullet so a renderer or
// recorder can read tracer poses without touching simulation state.
package visual

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is the last pose pushed by the simulation.
type Pose struct {
	Position r3.Vec
	Velocity r3.Vec
}

// Tracer identifies the round an entity belongs to.
type Tracer struct {
	Weapon  string
	Born    uint64 // frame the tracer was spawned
	Updated uint64 // frame of the last pose
	Updates int
}

// Store owns the tracer world. Not safe for concurrent use; the simulation
// calls handles from its single-threaded phases only.
type Store struct {
	world   *ecs.World
	mapper  *ecs.Map2[Pose, Tracer]
	filter  *ecs.Filter2[Pose, Tracer]
	poseMap *ecs.Map1[Pose]
	tracMap *ecs.Map1[Tracer]

	frame     uint64
	live      int
	destroyed int
}

// NewStore creates an empty store.
func NewStore() *Store {
	world := ecs.NewWorld()
	return &Store{
		world:   world,
		mapper:  ecs.NewMap2[Pose, Tracer](world),
		filter:  ecs.NewFilter2[Pose, Tracer](world),
		poseMap: ecs.NewMap1[Pose](world),
		tracMap: ecs.NewMap1[Tracer](world),
	}
}

// SetFrame sets the frame number stamped on spawns and pose updates.
func (s *Store) SetFrame(frame uint64) {
	s.frame = frame
}

// Spawn creates a tracer and returns its handle, which implements
// ballistics.Visual.
func (s *Store) Spawn(weapon string, origin, velocity r3.Vec) *Handle {
	pose := Pose{Position: origin, Velocity: velocity}
	tracer := Tracer{Weapon: weapon, Born: s.frame, Updated: s.frame}
	e := s.mapper.NewEntity(&pose, &tracer)
	s.live++
	return &Handle{store: s, entity: e}
}

// Len returns the number of live tracers.
func (s *Store) Len() int {
	return s.live
}

// Destroyed returns how many tracers have been removed.
func (s *Store) Destroyed() int {
	return s.destroyed
}

// Each calls fn for every live tracer.
func (s *Store) Each(fn func(Pose, Tracer)) {
	query := s.filter.Query()
	for query.Next() {
		pose, tracer := query.Get()
		fn(*pose, *tracer)
	}
}

// Handle is one bullet's tracer.
type Handle struct {
	store  *Store
	entity ecs.Entity
}

// UpdatePose implements ballistics.Visual.
func (h *Handle) UpdatePose(position, velocity r3.Vec) {
	s := h.store
	if !s.world.Alive(h.entity) {
		return
	}
	pose := s.poseMap.Get(h.entity)
	pose.Position = position
	pose.Velocity = velocity

	tracer := s.tracMap.Get(h.entity)
	tracer.Updated = s.frame
	tracer.Updates++
}

// Destroy implements ballistics.Visual. Destroying twice is a no-op.
func (h *Handle) Destroy() {
	s := h.store
	if !s.world.Alive(h.entity) {
		return
	}
	s.world.RemoveEntity(h.entity)
	s.live--
	s.destroyed++
}

// Pose returns the tracer's current pose; ok is false once destroyed.
func (h *Handle) Pose() (Pose, bool) {
	if !h.store.world.Alive(h.entity) {
		return Pose{}, false
	}
	return *h.store.poseMap.Get(h.entity), true
}
