package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats summarizes simulation activity over a window of frames.
type WindowStats struct {
	WindowStartFrame uint64  `csv:"-"`
	WindowEndFrame   uint64  `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time_sec"`

	Bullets int `csv:"bullets"`
	Batches int `csv:"batches"`
	Pending int `csv:"pending"`
	Spawned int `csv:"spawned"`

	Passes    int `csv:"passes"`
	Hits      int `csv:"hits"`
	Entries   int `csv:"entries"`
	Exits     int `csv:"exits"`
	Ricochets int `csv:"ricochets"`
	Stopped   int `csv:"stopped"`
	Freed     int `csv:"freed"`
	Impacts   int `csv:"impacts"`
	Surfaces  int `csv:"surfaces"`
	Recovered int `csv:"recovered"`

	SpeedMean float64 `csv:"speed_mean"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
}

// LogValue implements slog.LogValuer.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time_sec", s.SimTimeSec),
		slog.Int("bullets", s.Bullets),
		slog.Int("batches", s.Batches),
		slog.Int("spawned", s.Spawned),
		slog.Int("hits", s.Hits),
		slog.Int("entries", s.Entries),
		slog.Int("exits", s.Exits),
		slog.Int("ricochets", s.Ricochets),
		slog.Int("stopped", s.Stopped),
		slog.Int("freed", s.Freed),
		slog.Int("recovered", s.Recovered),
		slog.Float64("speed_p50", s.SpeedP50),
	)
}

// SpeedStats holds the distribution of in-flight bullet speeds.
type SpeedStats struct {
	Mean float64
	P10  float64
	P50  float64
	P90  float64
}

// ComputeSpeedStats summarizes speeds. The input is not modified.
func ComputeSpeedStats(speeds []float64) SpeedStats {
	switch len(speeds) {
	case 0:
		return SpeedStats{}
	case 1:
		v := speeds[0]
		return SpeedStats{Mean: v, P10: v, P50: v, P90: v}
	}
	sorted := slices.Clone(speeds)
	slices.Sort(sorted)
	return SpeedStats{
		Mean: stat.Mean(sorted, nil),
		P10:  stat.Quantile(0.10, stat.LinInterp, sorted, nil),
		P50:  stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P90:  stat.Quantile(0.90, stat.LinInterp, sorted, nil),
	}
}
