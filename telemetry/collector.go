package telemetry

import (
	"github.com/pthm-cable/salvo/ballistics"
)

// Collector turns the simulation's cumulative counters into per-window deltas.
type Collector struct {
	windowFrames int
	frameDelta   float64

	windowStart uint64
	base        ballistics.BatchStats
	spawned     int
	speeds      []float64
	slots       []int
}

// NewCollector creates a collector flushing every windowFrames frames.
func NewCollector(windowFrames int, frameDelta float64) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{
		windowFrames: windowFrames,
		frameDelta:   frameDelta,
	}
}

// RecordSpawned counts bullets handed to the simulation this window.
func (c *Collector) RecordSpawned(n int) {
	c.spawned += n
}

// ShouldFlush reports whether frame closes the current window.
func (c *Collector) ShouldFlush(frame uint64) bool {
	return frame-c.windowStart >= uint64(c.windowFrames)
}

// Flush produces the stats for the window ending at sim's current frame
// and starts a new window.
func (c *Collector) Flush(sim *ballistics.Simulation) WindowStats {
	st := sim.Stats()
	delta := subStats(st.Totals, c.base)
	speeds := c.SampleSpeeds(sim)
	sp := ComputeSpeedStats(speeds)

	ws := WindowStats{
		WindowStartFrame: c.windowStart,
		WindowEndFrame:   st.Frames,
		SimTimeSec:       float64(st.Frames) * c.frameDelta,
		Bullets:          st.Bullets,
		Batches:          st.Batches,
		Pending:          st.Pending,
		Spawned:          c.spawned,
		Passes:           delta.Passes,
		Hits:             delta.Hits,
		Entries:          delta.Entries,
		Exits:            delta.Exits,
		Ricochets:        delta.Ricochets,
		Stopped:          delta.Stopped,
		Freed:            delta.Freed,
		Impacts:          delta.Impacts,
		Surfaces:         delta.Surfaces,
		Recovered:        delta.Recovered,
		SpeedMean:        sp.Mean,
		SpeedP10:         sp.P10,
		SpeedP50:         sp.P50,
		SpeedP90:         sp.P90,
	}

	c.windowStart = st.Frames
	c.base = st.Totals
	c.spawned = 0
	return ws
}

// SampleSpeeds returns the speed of every live bullet. The returned slice
// is reused by the next call.
func (c *Collector) SampleSpeeds(sim *ballistics.Simulation) []float64 {
	c.speeds = c.speeds[:0]
	sim.ForEachBatch(func(_ int, b *ballistics.Batch) {
		arena := b.Arena()
		if cap(c.slots) < arena.Capacity() {
			c.slots = make([]int, arena.Capacity())
		}
		n := arena.CopyUsedIndices(c.slots[:arena.Capacity()])
		for _, slot := range c.slots[:n] {
			c.speeds = append(c.speeds, arena.Hot(slot).Speed())
		}
	})
	return c.speeds
}

func subStats(a, b ballistics.BatchStats) ballistics.BatchStats {
	return ballistics.BatchStats{
		Passes:    a.Passes - b.Passes,
		Hits:      a.Hits - b.Hits,
		Entries:   a.Entries - b.Entries,
		Exits:     a.Exits - b.Exits,
		Ricochets: a.Ricochets - b.Ricochets,
		Stopped:   a.Stopped - b.Stopped,
		Freed:     a.Freed - b.Freed,
		Impacts:   a.Impacts - b.Impacts,
		Surfaces:  a.Surfaces - b.Surfaces,
		Recovered: a.Recovered - b.Recovered,
	}
}
