package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/salvo/config"
	"github.com/pthm-cable/salvo/jobs"
)

func newCalibrator(t *testing.T, materialName string) *Calibrator {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	pool := jobs.NewPool(2)
	t.Cleanup(pool.Close)

	c, err := NewCalibrator(cfg, materialName, "pistol", pool)
	if err != nil {
		t.Fatalf("NewCalibrator: %v", err)
	}
	return c
}

func TestNewCalibratorRejects(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	tests := []struct {
		name, material, weapon string
	}{
		{"unknown material", "cheese", "rifle"},
		{"unknown weapon", "wood", "bow"},
		{"stop material", "armor", "rifle"},
		{"ignore material", "foliage", "rifle"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCalibrator(cfg, tc.material, tc.weapon, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDepthInverseToLoss(t *testing.T) {
	c := newCalibrator(t, "wood")

	d1, err := c.Depth(10000)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	d2, err := c.Depth(20000)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if d1 <= 0 || d2 <= 0 {
		t.Fatalf("depths %v, %v must be positive", d1, d2)
	}
	if math.Abs(d1/d2-2) > 1e-6 {
		t.Errorf("depth ratio = %v, want 2", d1/d2)
	}

	// The round loses a little to drag before the slab.
	muzzle := c.params.KineticEnergy(c.params.Speed)
	if e := d1 * 10000; e > muzzle || e < 0.9*muzzle {
		t.Errorf("energy spent in slab %v J, muzzle %v J", e, muzzle)
	}
}

func TestRunFindsTargetDepth(t *testing.T) {
	c := newCalibrator(t, "earth")
	const target = 0.25

	loss, err := c.Run(target, 150)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	depth, err := c.Depth(loss)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if math.Abs(depth-target) > 1e-3*target {
		t.Errorf("depth at loss %v = %v, want %v", loss, depth, target)
	}
	if len(c.Evals) == 0 || len(c.Evals) > 150 {
		t.Errorf("evals = %d", len(c.Evals))
	}
}
