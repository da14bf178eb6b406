package game

// flushTelemetry writes the frame's impact records and, when the stats
// window closes, logs and writes the window.
func (g *Game) flushTelemetry() {
	if recs := g.impacts.Drain(); len(recs) > 0 {
		if err := g.output.WriteImpacts(recs); err != nil {
			g.logger.Error("failed to write impacts", "error", err)
		}
	}

	if !g.collector.ShouldFlush(g.frame) {
		return
	}

	stats := g.collector.Flush(g.sim)
	perfStats := g.perf.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		g.logger.Info("stats", "window", stats, "perf", perfStats)
	}

	if err := g.output.WriteTelemetry(stats); err != nil {
		g.logger.Error("failed to write telemetry", "error", err)
	}
	if err := g.output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		g.logger.Error("failed to write perf", "error", err)
	}
}
