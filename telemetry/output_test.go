package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/salvo/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil manager write: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil manager close: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := uint64(1); i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndFrame: i * 60, Hits: int(i)}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.WriteImpacts(nil); err != nil {
		t.Fatalf("WriteImpacts(nil): %v", err)
	}
	if err := om.WriteImpacts([]ImpactRecord{
		{Frame: 3, Kind: "entry", Surface: "wood", Z: 1},
		{Frame: 3, Kind: "impact", Surface: "wood", Thickness: 0.1},
	}); err != nil {
		t.Fatalf("WriteImpacts: %v", err)
	}
	if err := om.WritePerf(PerfStats{FramesPerSecond: 1000}, 60); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var windows []WindowStats
	readCSV(t, filepath.Join(dir, "telemetry.csv"), &windows)
	if len(windows) != 3 || windows[2].WindowEndFrame != 180 || windows[2].Hits != 3 {
		t.Errorf("telemetry rows = %+v", windows)
	}

	var impacts []ImpactRecord
	readCSV(t, filepath.Join(dir, "impacts.csv"), &impacts)
	if len(impacts) != 2 || impacts[1].Kind != "impact" || impacts[1].Thickness != 0.1 {
		t.Errorf("impact rows = %+v", impacts)
	}

	var perf []PerfStatsCSV
	readCSV(t, filepath.Join(dir, "perf.csv"), &perf)
	if len(perf) != 1 || perf[0].FramesPerSec != 1000 {
		t.Errorf("perf rows = %+v", perf)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml: %v", err)
	}
}

func readCSV(t *testing.T, path string, out any) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, out); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
}
