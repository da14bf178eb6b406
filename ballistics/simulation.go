package ballistics

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/salvo/collision"
	"github.com/pthm-cable/salvo/jobs"
)

// ErrNoParams is returned by Enqueue for a request without bullet params.
var ErrNoParams = errors.New("ballistics: spawn request has no params")

// DefaultKeepEmpty is how many empty batches DisposeUnusedBatches keeps.
const DefaultKeepEmpty = 1

// Options configures a Simulation.
type Options struct {
	BatchCapacity int
	Grain         int
	// Workers sizes the pool created when Pool is nil.
	Workers int
	Pool    *jobs.Pool

	Raycaster   collision.Raycaster
	Materials   MaterialLookup
	Environment Environment
	Handlers    Handlers

	Seed   uint64
	Logger *slog.Logger
}

// Stats describes the simulation.
type Stats struct {
	Batches  int
	Bullets  int
	Pending  int
	Frames   uint64
	SubSteps int // sub-steps of the last frame
	Totals   BatchStats
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("batches", s.Batches),
		slog.Int("bullets", s.Bullets),
		slog.Int("pending", s.Pending),
		slog.Uint64("frames", s.Frames),
		slog.Int("substeps", s.SubSteps),
		slog.Int("hits", s.Totals.Hits),
		slog.Int("entries", s.Totals.Entries),
		slog.Int("exits", s.Totals.Exits),
		slog.Int("ricochets", s.Totals.Ricochets),
		slog.Int("stopped", s.Totals.Stopped),
		slog.Int("freed", s.Totals.Freed),
		slog.Int("recovered", s.Totals.Recovered),
	)
}

type batchState struct {
	batch  *Batch
	handle *jobs.Handle
	result InteractionsResult
}

// Simulation owns the batches and drives them through each frame's
// sub-steps. All methods must be called from one goroutine.
type Simulation struct {
	pool      *jobs.Pool
	ownsPool  bool
	raycaster collision.Raycaster
	materials MaterialLookup
	handlers  Handlers
	env       Environment
	logger    *slog.Logger

	batchCapacity int
	grain         int

	batches []*batchState
	pending []SpawnRequest

	seed           uint64
	frame          uint64
	steps          int
	stepsRemaining int
	stepTime       float64

	// Counters of disposed batches
	retired BatchStats
}

// New creates a simulation.
func New(opts Options) (*Simulation, error) {
	if opts.Raycaster == nil {
		return nil, errors.New("ballistics: no raycaster")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Simulation{
		pool:          opts.Pool,
		raycaster:     opts.Raycaster,
		materials:     opts.Materials,
		handlers:      opts.Handlers,
		env:           opts.Environment.normalized(),
		logger:        logger,
		batchCapacity: opts.BatchCapacity,
		grain:         opts.Grain,
		seed:          opts.Seed,
	}
	if s.batchCapacity <= 0 {
		s.batchCapacity = DefaultBatchCapacity
	}
	if s.pool == nil {
		s.pool = jobs.NewPool(opts.Workers)
		s.ownsPool = true
	}
	return s, nil
}

// Close waits for in-flight work and stops the pool if the simulation made it.
func (s *Simulation) Close() {
	s.CompleteStep()
	if s.ownsPool {
		s.pool.Close()
	}
}

// Environment returns the current physical settings.
func (s *Simulation) Environment() Environment {
	return s.env
}

// SetEnvironment replaces the physical settings from the next sub-step on.
func (s *Simulation) SetEnvironment(env Environment) {
	s.env = env.normalized()
}

// SetHandlers replaces the global impact and surface handlers.
func (s *Simulation) SetHandlers(h Handlers) {
	s.handlers = h
}

// SubSteps splits a frame into the fewest sub-steps no longer than maxDelta.
func SubSteps(frameDelta, maxDelta float64) (steps int, stepTime float64) {
	if frameDelta <= 0 || math.IsNaN(frameDelta) {
		return 0, 0
	}
	if maxDelta <= 0 {
		return 1, frameDelta
	}
	// Tolerate rounding so 3 × (1/60) is three steps, not four
	steps = int(math.Ceil(frameDelta/maxDelta - 1e-9))
	if steps < 1 {
		steps = 1
	}
	return steps, frameDelta / float64(steps)
}

// Enqueue queues a bullet to be inserted at the next Consume.
func (s *Simulation) Enqueue(req SpawnRequest) error {
	if req.Params == nil {
		return fmt.Errorf("enqueue: %w", ErrNoParams)
	}
	s.pending = append(s.pending, req)
	return nil
}

// Consume inserts every queued request into the first batch with room,
// opening new batches as needed. It returns the number inserted.
func (s *Simulation) Consume() int {
	if len(s.pending) == 0 {
		return 0
	}
	s.CompleteStep()

	next := 0
	for _, req := range s.pending {
		for {
			if next == len(s.batches) {
				s.addBatch()
			}
			_, err := s.batches[next].batch.Insert(req)
			if err == nil {
				break
			}
			// ErrBatchFull is the only failure
			next++
		}
	}

	n := len(s.pending)
	clear(s.pending)
	s.pending = s.pending[:0]
	return n
}

func (s *Simulation) addBatch() {
	b := NewBatch(BatchOptions{
		Capacity:    s.batchCapacity,
		Grain:       s.grain,
		Pool:        s.pool,
		Raycaster:   s.raycaster,
		Materials:   s.materials,
		Environment: s.env,
		Logger:      s.logger.With("batch", len(s.batches)),
	})
	s.batches = append(s.batches, &batchState{batch: b})
	s.logger.Debug("batch allocated", "batches", len(s.batches), "capacity", s.batchCapacity)
}

// InitializeUpdate starts a frame of frameDelta seconds and puts its first
// sub-step in flight.
func (s *Simulation) InitializeUpdate(frameDelta float64) {
	s.CompleteStep()
	s.frame++
	s.steps, s.stepTime = SubSteps(frameDelta, s.env.MaxDeltaTime)
	s.stepsRemaining = s.steps
	if s.steps == 0 {
		return
	}
	s.startSubStep()
}

func (s *Simulation) startSubStep() bool {
	s.stepsRemaining--
	step := uint64(s.steps - s.stepsRemaining)
	seed := s.seed ^ (s.frame*0x9e3779b97f4a7c15 + step)

	busy := false
	for _, st := range s.batches {
		st.batch.SetFrameSeed(seed)
		st.batch.SetEnvironment(s.env)
		st.handle, st.result = st.batch.InitializeUpdate(s.stepTime)
		if st.result.Total > 0 {
			busy = true
		}
	}
	s.pool.Flush()
	return busy
}

// Update runs one gather on every batch and schedules what follows: the
// resolution task while bullets are still interacting, otherwise the next
// sub-step. The deferred queues are drained on every call, after the next
// tasks are in flight; handlers must only touch bullets through BulletView.
// It reports whether work remains.
func (s *Simulation) Update() bool {
	isLast := s.stepsRemaining == 0
	busy := false
	for _, st := range s.batches {
		st.handle.Complete()
		st.handle = nil

		st.result = st.batch.GatherManagedInteractions(st.result, isLast)
		if st.result.Total > 0 {
			st.handle = st.batch.ProcessInteractions(st.result, s.env)
			busy = true
		}
	}

	if busy {
		s.pool.Flush()
	}
	for !busy && s.stepsRemaining > 0 {
		busy = s.startSubStep()
	}

	s.dispatch()
	return busy
}

// CompleteStep blocks until every in-flight task has finished.
func (s *Simulation) CompleteStep() {
	for _, st := range s.batches {
		st.handle.Complete()
		st.handle = nil
	}
}

// FinishFrame runs the frame started by InitializeUpdate to the end.
func (s *Simulation) FinishFrame() {
	for {
		s.CompleteStep()
		if !s.Update() {
			return
		}
	}
}

// Step consumes queued spawns and simulates one frame.
func (s *Simulation) Step(frameDelta float64) {
	s.Consume()
	s.InitializeUpdate(frameDelta)
	s.FinishFrame()
}

func (s *Simulation) dispatch() {
	for _, st := range s.batches {
		st.batch.HandleScheduledImpacts(s.handlers)
	}
}

// DisposeUnusedBatches drops empty batches beyond the first keepEmpty.
func (s *Simulation) DisposeUnusedBatches(keepEmpty int) int {
	s.CompleteStep()

	kept := s.batches[:0]
	empty, disposed := 0, 0
	for _, st := range s.batches {
		impacts, surfaces := st.batch.PendingImpacts()
		if st.batch.ActiveCount() == 0 && impacts == 0 && surfaces == 0 {
			if empty >= keepEmpty {
				s.retired = addStats(s.retired, st.batch.Stats())
				disposed++
				continue
			}
			empty++
		}
		kept = append(kept, st)
	}
	clear(s.batches[len(kept):])
	s.batches = kept

	if disposed > 0 {
		s.logger.Debug("batches disposed", "disposed", disposed, "batches", len(s.batches))
	}
	return disposed
}

// Reset removes every bullet, in flight or queued, destroying their visuals.
func (s *Simulation) Reset() {
	s.CompleteStep()
	for _, st := range s.batches {
		st.batch.Reset()
		st.result = InteractionsResult{}
	}
	for i := range s.pending {
		s.destroyPending(s.pending[i].Visual)
	}
	clear(s.pending)
	s.pending = s.pending[:0]
	s.steps, s.stepsRemaining = 0, 0
}

func (s *Simulation) destroyPending(v Visual) {
	if v == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("recovered panic in user code", "component", "visual.Destroy", "slot", NoSlot, "panic", r)
		}
	}()
	v.Destroy()
}

// Batches returns the number of allocated batches.
func (s *Simulation) Batches() int {
	return len(s.batches)
}

// ActiveCount returns the number of live bullets across all batches.
func (s *Simulation) ActiveCount() int {
	n := 0
	for _, st := range s.batches {
		n += st.batch.ActiveCount()
	}
	return n
}

// ForEachBatch calls fn for every batch. Tasks must not be in flight.
func (s *Simulation) ForEachBatch(fn func(i int, b *Batch)) {
	for i, st := range s.batches {
		fn(i, st.batch)
	}
}

// Stats returns the simulation's counters.
func (s *Simulation) Stats() Stats {
	st := Stats{
		Batches:  len(s.batches),
		Bullets:  s.ActiveCount(),
		Pending:  len(s.pending),
		Frames:   s.frame,
		SubSteps: s.steps,
		Totals:   s.retired,
	}
	for _, b := range s.batches {
		st.Totals = addStats(st.Totals, b.batch.Stats())
	}
	return st
}

// ResetStats zeroes the per-batch counters.
func (s *Simulation) ResetStats() {
	s.retired = BatchStats{}
	for _, st := range s.batches {
		st.batch.ResetStats()
	}
}

func addStats(a, b BatchStats) BatchStats {
	a.Passes += b.Passes
	a.Hits += b.Hits
	a.Entries += b.Entries
	a.Exits += b.Exits
	a.Ricochets += b.Ricochets
	a.Stopped += b.Stopped
	a.Freed += b.Freed
	a.Impacts += b.Impacts
	a.Surfaces += b.Surfaces
	a.Recovered += b.Recovered
	return a
}
