// Package game drives a headless firing range: configured emitters fire
// rounds into a box scene, the ballistics simulation steps them frame by
// frame, and telemetry is logged and written to disk.
package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/ballistics"
	"github.com/pthm-cable/salvo/collision"
	"github.com/pthm-cable/salvo/config"
	"github.com/pthm-cable/salvo/telemetry"
	"github.com/pthm-cable/salvo/visual"
)

// Options configures a Game beyond what the config file holds.
type Options struct {
	Seed      uint64 // 0 = config seed
	LogStats  bool
	OutputDir string // empty = no file output
	Logger    *slog.Logger
}

// Game holds the complete range state.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger

	sim      *ballistics.Simulation
	scene    *collision.Scene
	tracers  *visual.Store
	emitters []*emitter
	rng      rand.PCG

	frame      uint64
	frameDelta float64

	logStats      bool
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	impacts       *telemetry.ImpactLog
	output        *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
}

// New builds a range from cfg.
func New(cfg *config.Config, opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	g := &Game{
		cfg:        cfg,
		logger:     logger,
		scene:      cfg.BuildScene(),
		tracers:    visual.NewStore(),
		frameDelta: cfg.Derived.FrameDelta,
		logStats:   opts.LogStats,
		collector:  telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.FrameDelta),
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		impacts:    telemetry.NewImpactLog(output != nil),
		output:     output,
	}
	g.rng.Seed(seed, 0x5a17)

	for i, ec := range cfg.Scene.Emitters {
		e, err := newEmitter(cfg, ec)
		if err != nil {
			output.Close()
			return nil, fmt.Errorf("emitter %d: %w", i, err)
		}
		g.emitters = append(g.emitters, e)
	}

	g.sim, err = ballistics.New(ballistics.Options{
		BatchCapacity: cfg.Batch.Capacity,
		Grain:         cfg.Batch.Grain,
		Workers:       cfg.Batch.Workers,
		Raycaster:     g.scene,
		Materials:     cfg.Registry(),
		Environment:   cfg.Env(),
		Handlers:      g.impacts.Handlers(),
		Seed:          seed,
		Logger:        logger,
	})
	if err != nil {
		output.Close()
		return nil, err
	}

	logger.Info("range ready",
		"seed", seed,
		"boxes", len(g.scene.Colliders()),
		"emitters", len(g.emitters),
		"frame_delta", g.frameDelta,
	)
	return g, nil
}

// Update advances the range by one frame.
func (g *Game) Update() {
	g.perf.StartFrame()

	g.perf.StartPhase(telemetry.PhaseSpawn)
	g.frame++
	g.tracers.SetFrame(g.frame)
	g.impacts.SetFrame(g.frame)
	g.collector.RecordSpawned(g.fire())

	g.perf.StartPhase(telemetry.PhaseConsume)
	g.sim.Consume()

	g.perf.StartPhase(telemetry.PhaseSimulate)
	g.sim.InitializeUpdate(g.frameDelta)
	g.sim.FinishFrame()

	g.perf.StartPhase(telemetry.PhaseDispose)
	if every := g.cfg.Simulation.DisposeInterval; every > 0 && g.frame%uint64(every) == 0 {
		if n := g.sim.DisposeUnusedBatches(g.cfg.Simulation.KeepEmptyBatches); n > 0 {
			g.logger.Debug("disposed batches", "count", n, "frame", g.frame)
		}
	}

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perf.EndFrame()
}

// fire enqueues every round due this frame and returns how many were queued.
func (g *Game) fire() int {
	elapsed := float64(g.frame) * g.frameDelta
	n := 0
	for _, e := range g.emitters {
		for range e.due(elapsed) {
			dir := ballistics.SpreadDirection(e.direction, e.cone, &g.rng)
			req := ballistics.SpawnRequest{
				Weapon:    e.weapon,
				Origin:    e.origin,
				Direction: dir,
				Params:    e.params,
				Visual:    g.tracers.Spawn(e.weapon, e.origin, r3.Scale(e.params.Speed, dir)),
			}
			if err := g.sim.Enqueue(req); err != nil {
				g.logger.Error("failed to enqueue round", "weapon", e.weapon, "error", err)
				req.Visual.Destroy()
				continue
			}
			n++
		}
	}
	return n
}

// Frame returns the number of frames simulated.
func (g *Game) Frame() uint64 {
	return g.frame
}

// Simulation returns the underlying ballistics simulation.
func (g *Game) Simulation() *ballistics.Simulation {
	return g.sim
}

// Tracers returns the tracer store.
func (g *Game) Tracers() *visual.Store {
	return g.tracers
}

// Impacts returns the global impact log.
func (g *Game) Impacts() *telemetry.ImpactLog {
	return g.impacts
}

// SetStatsCallback registers fn to receive every flushed stats window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Close stops the simulation workers and closes output files.
func (g *Game) Close() error {
	g.sim.Close()
	return g.output.Close()
}
