package ballistics_test

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/mock/gomock"
	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"

	"github.com/pthm-cable/salvo/ballistics"
	"github.com/pthm-cable/salvo/ballistics/mocks"
	"github.com/pthm-cable/salvo/collision"
)

func params() *ballistics.BulletParams {
	p := &ballistics.BulletParams{Name: "9mm", Mass: 0.008, Diameter: 0.009, Speed: 100, Lifetime: 10}
	p.Prepare()
	return p
}

func newSim(t *testing.T, opts ballistics.Options) *ballistics.Simulation {
	t.Helper()
	if opts.Raycaster == nil {
		opts.Raycaster = collision.NewScene()
	}
	if opts.Workers == 0 {
		opts.Workers = 2
	}
	sim, err := ballistics.New(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(sim.Close)
	return sim
}

func TestNewRequiresRaycaster(t *testing.T) {
	if _, err := ballistics.New(ballistics.Options{}); err == nil {
		t.Fatal("expected error without a raycaster")
	}
}

func TestEnqueueRejectsMissingParams(t *testing.T) {
	sim := newSim(t, ballistics.Options{})
	err := sim.Enqueue(ballistics.SpawnRequest{})
	if !errors.Is(err, ballistics.ErrNoParams) {
		t.Errorf("err = %v, want ErrNoParams", err)
	}
}

func TestSubSteps(t *testing.T) {
	tests := []struct {
		name      string
		frame     float64
		max       float64
		wantSteps int
	}{
		{name: "one step", frame: 1.0 / 60, max: 1.0 / 60, wantSteps: 1},
		{name: "exact multiple", frame: 3.0 / 60, max: 1.0 / 60, wantSteps: 3},
		{name: "rounds up", frame: 0.04, max: 1.0 / 60, wantSteps: 3},
		{name: "shorter than max", frame: 0.001, max: 1.0 / 60, wantSteps: 1},
		{name: "zero frame", frame: 0, max: 1.0 / 60, wantSteps: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			steps, _ := ballistics.SubSteps(tc.frame, tc.max)
			if steps != tc.wantSteps {
				t.Errorf("SubSteps(%v, %v) = %d, want %d", tc.frame, tc.max, steps, tc.wantSteps)
			}
		})
	}
}

func TestSubStepsCoverFrame(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		frame := rapid.Float64Range(1e-4, 1).Draw(t, "frame")
		maxDelta := rapid.Float64Range(1e-3, 0.1).Draw(t, "max")

		steps, stepTime := ballistics.SubSteps(frame, maxDelta)

		if steps < 1 {
			t.Fatalf("steps = %d", steps)
		}
		if math.Abs(float64(steps)*stepTime-frame) > 1e-12 {
			t.Fatalf("%d × %v does not cover %v", steps, stepTime, frame)
		}
		if stepTime > maxDelta*(1+1e-8) {
			t.Fatalf("step %v longer than max %v", stepTime, maxDelta)
		}
		if float64(steps-1)*maxDelta >= frame {
			t.Fatalf("%d steps is more than needed", steps)
		}
	})
}

// onlyBullet returns the state of the single live bullet.
func onlyBullet(t *testing.T, sim *ballistics.Simulation) *ballistics.HotState {
	t.Helper()
	var hot *ballistics.HotState
	sim.ForEachBatch(func(_ int, b *ballistics.Batch) {
		used := make([]int, b.Arena().Capacity())
		for _, slot := range used[:b.Arena().CopyUsedIndices(used)] {
			if hot != nil {
				t.Fatal("more than one live bullet")
			}
			hot = b.Arena().Hot(slot)
		}
	})
	if hot == nil {
		t.Fatal("no live bullet")
	}
	return hot
}

func TestStepFlightDistance(t *testing.T) {
	sim := newSim(t, ballistics.Options{})
	p := &ballistics.BulletParams{Name: "rifle", Mass: 0.01, Diameter: 0.00762, Speed: 800, Lifetime: 2}
	p.Prepare()
	sim.Enqueue(ballistics.SpawnRequest{Params: p, Direction: r3.Vec{Z: 1}})

	sim.Step(1.0 / 60)

	h := onlyBullet(t, sim)
	want := 800.0 / 60
	if math.Abs(h.Distance-want) > 1e-9 || math.Abs(h.Position.Z-want) > 1e-9 {
		t.Errorf("distance %v position %v, want %v along +Z", h.Distance, h.Position, want)
	}
}

func TestStepKeepsSpeedWithoutForces(t *testing.T) {
	sim := newSim(t, ballistics.Options{})
	sim.Enqueue(ballistics.SpawnRequest{Params: params(), Direction: r3.Vec{Z: 1}})

	for range 4 {
		sim.Step(0.05)
	}

	if got := sim.Stats().SubSteps; got != 3 {
		t.Fatalf("SubSteps = %d, want 3 per frame", got)
	}
	h := onlyBullet(t, sim)
	if h.Velocity != (r3.Vec{Z: 100}) {
		t.Errorf("velocity = %v after 12 sub-steps, want exactly 100 along +Z", h.Velocity)
	}
	if want := 100 * 0.2; math.Abs(h.Distance-want) > 1e-9 {
		t.Errorf("distance = %v, want %v", h.Distance, want)
	}
}

func TestConsumeFirstFitAndDispose(t *testing.T) {
	sim := newSim(t, ballistics.Options{BatchCapacity: 4})
	p := params()
	p.Lifetime = 0.01

	for i := 0; i < 10; i++ {
		if err := sim.Enqueue(ballistics.SpawnRequest{Params: p, Direction: r3.Vec{Z: 1}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := sim.Consume(); n != 10 {
		t.Fatalf("Consume = %d, want 10", n)
	}

	var counts []int
	sim.ForEachBatch(func(_ int, b *ballistics.Batch) {
		counts = append(counts, b.ActiveCount())
	})
	if len(counts) != 3 || counts[0] != 4 || counts[1] != 4 || counts[2] != 2 {
		t.Fatalf("batch fill = %v, want [4 4 2]", counts)
	}

	sim.Step(1.0 / 60)
	if sim.ActiveCount() != 0 {
		t.Fatalf("ActiveCount = %d, want 0 after lifetime ran out", sim.ActiveCount())
	}
	if got := sim.Stats().Totals.Freed; got != 10 {
		t.Errorf("Freed = %d, want 10", got)
	}

	if disposed := sim.DisposeUnusedBatches(ballistics.DefaultKeepEmpty); disposed != 2 {
		t.Errorf("disposed %d batches, want 2", disposed)
	}
	if sim.Batches() != 1 {
		t.Errorf("Batches = %d, want 1", sim.Batches())
	}
	if got := sim.Stats().Totals.Freed; got != 10 {
		t.Errorf("Freed after dispose = %d, want 10", got)
	}
}

func TestFreedSlotsRefilledBeforeNewBatch(t *testing.T) {
	sim := newSim(t, ballistics.Options{BatchCapacity: 2})
	short := params()
	short.Lifetime = 0.01

	sim.Enqueue(ballistics.SpawnRequest{Params: short})
	sim.Enqueue(ballistics.SpawnRequest{Params: params()})
	sim.Step(1.0 / 60)

	sim.Enqueue(ballistics.SpawnRequest{Params: params()})
	sim.Consume()

	if sim.Batches() != 1 || sim.ActiveCount() != 2 {
		t.Errorf("batches %d active %d, want the freed slot reused", sim.Batches(), sim.ActiveCount())
	}
}

func TestPoseOncePerFrame(t *testing.T) {
	ctrl := gomock.NewController(t)
	vis := mocks.NewMockVisual(ctrl)

	sim := newSim(t, ballistics.Options{})
	sim.Enqueue(ballistics.SpawnRequest{Params: params(), Direction: r3.Vec{Z: 1}, Visual: vis})

	// Three sub-steps per frame, one pose per frame
	vis.EXPECT().UpdatePose(gomock.Any(), gomock.Any()).Times(2)
	sim.Step(0.05)
	sim.Step(0.05)

	if got := sim.Stats().SubSteps; got != 3 {
		t.Errorf("SubSteps = %d, want 3", got)
	}

	vis.EXPECT().Destroy().Times(1)
	sim.Reset()
	if sim.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d after Reset", sim.ActiveCount())
	}
}

func TestResetDestroysQueuedVisuals(t *testing.T) {
	ctrl := gomock.NewController(t)
	vis := mocks.NewMockVisual(ctrl)
	vis.EXPECT().Destroy().Times(1)

	sim := newSim(t, ballistics.Options{})
	sim.Enqueue(ballistics.SpawnRequest{Params: params(), Visual: vis})
	sim.Reset()

	if sim.Stats().Pending != 0 {
		t.Error("pending requests survived Reset")
	}
}

func TestPanickingVisualIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	vis := mocks.NewMockVisual(ctrl)
	vis.EXPECT().UpdatePose(gomock.Any(), gomock.Any()).Do(func(_, _ r3.Vec) {
		panic("pose")
	}).Times(1)

	sim := newSim(t, ballistics.Options{})
	sim.Enqueue(ballistics.SpawnRequest{Params: params(), Direction: r3.Vec{Z: 1}, Visual: vis})
	sim.Step(1.0 / 60)

	if got := sim.Stats().Totals.Recovered; got != 1 {
		t.Errorf("Recovered = %d, want 1", got)
	}
	if sim.ActiveCount() != 1 {
		t.Error("bullet lost after visual panic")
	}

	vis.EXPECT().Destroy()
	sim.Reset()
}
