package ballistics

import (
	"log/slog"
	"math/rand/v2"

	"github.com/pthm-cable/salvo/collision"
	"github.com/pthm-cable/salvo/jobs"
)

// DefaultBatchCapacity is the number of bullets one batch holds.
const DefaultBatchCapacity = 512

// BatchOptions configures a Batch.
type BatchOptions struct {
	Capacity    int
	Grain       int
	Pool        *jobs.Pool
	Raycaster   collision.Raycaster
	Materials   MaterialLookup
	Environment Environment
	Logger      *slog.Logger
}

// BatchStats counts what a batch did since the last ResetStats.
type BatchStats struct {
	Passes    int
	Hits      int
	Entries   int
	Exits     int
	Ricochets int
	Stopped   int
	Freed     int
	Impacts   int
	Surfaces  int
	Recovered int
}

// Batch drives up to Capacity bullets through the sub-step pipeline:
// integration task → raycast → gather → resolution task → raycast → gather ...
type Batch struct {
	arena     *Arena
	pool      *jobs.Pool
	raycaster collision.Raycaster
	materials MaterialLookup
	logger    *slog.Logger
	grain     int

	// Read by the parallel tasks; only written between phases.
	env       Environment
	timeStep  float64
	frameSeed uint64

	indices []int
	queries []collision.Query
	hits    []collision.Hit
	records []InteractionRecord
	spare   []InteractionRecord
	rngs    []rand.PCG

	impacts  []Deferred[ImpactInfo]
	surfaces []Deferred[SurfaceInfo]

	stats BatchStats
}

// NewBatch allocates a batch and all of its fixed-capacity buffers.
func NewBatch(opts BatchOptions) *Batch {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultBatchCapacity
	}
	grain := opts.Grain
	if grain <= 0 {
		grain = jobs.DefaultGrain
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Batch{
		arena:     NewArena(capacity),
		pool:      opts.Pool,
		raycaster: opts.Raycaster,
		materials: opts.Materials,
		logger:    logger,
		grain:     grain,
		env:       opts.Environment.normalized(),
		indices:   make([]int, capacity),
		queries:   make([]collision.Query, capacity),
		hits:      make([]collision.Hit, capacity),
		records:   make([]InteractionRecord, capacity),
		spare:     make([]InteractionRecord, capacity),
		rngs:      make([]rand.PCG, capacity),
		impacts:   make([]Deferred[ImpactInfo], 0, capacity),
		surfaces:  make([]Deferred[SurfaceInfo], 0, capacity),
	}
}

// Arena exposes the batch's slot storage.
func (b *Batch) Arena() *Arena {
	return b.arena
}

// Insert adds a bullet. ErrBatchFull means the caller must use another batch.
func (b *Batch) Insert(req SpawnRequest) (int, error) {
	return b.arena.Insert(req)
}

// ActiveCount returns the number of live bullets.
func (b *Batch) ActiveCount() int {
	return b.arena.ActiveCount()
}

// Record returns the interaction record at a partition position.
func (b *Batch) Record(i int) InteractionRecord {
	return b.records[i]
}

// Stats returns the counters accumulated since the last ResetStats.
func (b *Batch) Stats() BatchStats {
	return b.stats
}

// ResetStats zeroes the counters.
func (b *Batch) ResetStats() {
	b.stats = BatchStats{}
}

// SetEnvironment replaces the physical settings. Must not be called while a
// task of this batch is in flight.
func (b *Batch) SetEnvironment(env Environment) {
	b.env = env.normalized()
}

// SetFrameSeed sets the base seed the per-slot random streams derive from.
// It takes effect at the next InitializeUpdate.
func (b *Batch) SetFrameSeed(seed uint64) {
	b.frameSeed = seed
}

// InitializeUpdate starts a sub-step of timeStep seconds: it snapshots the
// live slots, schedules the integration task and chains the raycast after it.
// The returned result covers every live bullet; the handle is nil when the
// batch is empty.
func (b *Batch) InitializeUpdate(timeStep float64) (*jobs.Handle, InteractionsResult) {
	n := b.arena.CopyUsedIndices(b.indices)
	b.timeStep = timeStep
	result := InteractionsResult{Active: n, Total: n}
	if n == 0 {
		return nil, result
	}

	// Same seed and slot, same jitter for the whole sub-step
	for _, slot := range b.indices[:n] {
		b.rngs[slot].Seed(b.frameSeed, uint64(slot))
	}

	integrate := b.pool.ScheduleParallel(n, b.grain, b.integrateRange)
	return b.scheduleRaycast(n, integrate), result
}

// ProcessInteractions schedules the resolution task over result.Total records
// and chains a raycast for the result.Active bullets that need a new query.
func (b *Batch) ProcessInteractions(result InteractionsResult, env Environment) *jobs.Handle {
	b.env = env.normalized()
	if result.Total == 0 {
		return nil
	}

	resolve := b.pool.ScheduleParallel(result.Total, b.grain, b.resolveRange)
	if result.Active == 0 {
		return resolve
	}
	return b.scheduleRaycast(result.Active, resolve)
}

// scheduleRaycast chains the external batched raycast over the first n queries.
func (b *Batch) scheduleRaycast(n int, after *jobs.Handle) *jobs.Handle {
	return b.pool.Schedule(func() {
		b.raycast(n)
	}, after)
}

func (b *Batch) raycast(n int) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("raycast panicked", "component", "raycaster", "queries", n, "panic", r)
			clear(b.hits[:n])
		}
	}()
	b.raycaster.RaycastBatch(b.queries[:n], b.hits[:n])
}

// Reset destroys every live bullet's visual and frees all slots.
func (b *Batch) Reset() {
	n := b.arena.CopyUsedIndices(b.indices)
	for i := 0; i < n; i++ {
		slot := b.indices[i]
		b.destroyVisual(slot)
		b.arena.MarkFree(slot)
	}
	b.impacts = b.impacts[:0]
	b.surfaces = b.surfaces[:0]
}

// requestStop flags a bullet for cancellation at the next gather.
func (b *Batch) requestStop(slot int, gen uint32) {
	if !b.arena.Used(slot) || b.arena.gen[slot] != gen {
		return
	}
	b.arena.cold[slot].stopRequested = true
}
