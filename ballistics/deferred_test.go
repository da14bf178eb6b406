package ballistics_test

import (
	"math"
	"testing"

	"go.uber.org/mock/gomock"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/ballistics"
	"github.com/pthm-cable/salvo/ballistics/mocks"
	"github.com/pthm-cable/salvo/collision"
)

// handlingMaterial is a material that also handles its own surface events.
type handlingMaterial struct {
	*mocks.MockMaterial
	*mocks.MockSurfaceHandler
}

func plate(minZ, maxZ float64, surface collision.Surface) *collision.Scene {
	return collision.NewScene(collision.NewBox(
		r3.Vec{X: -10, Y: -10, Z: minZ},
		r3.Vec{X: 10, Y: 10, Z: maxZ},
		0, surface,
	))
}

func TestDispatchChainOrderAndHandled(t *testing.T) {
	ctrl := gomock.NewController(t)
	weapon := mocks.NewMockSurfaceHandler(ctrl)
	mat := handlingMaterial{mocks.NewMockMaterial(ctrl), mocks.NewMockSurfaceHandler(ctrl)}
	global := mocks.NewMockSurfaceHandler(ctrl)
	lookup := mocks.NewMockMaterialLookup(ctrl)

	lookup.EXPECT().Lookup(collision.Surface("steel")).Return(mat, true)
	mat.MockMaterial.EXPECT().Impact(gomock.Any()).Return(ballistics.ImpactOutcome{Kind: ballistics.ImpactStop})

	gomock.InOrder(
		weapon.EXPECT().HandleSurface(gomock.Any(), ballistics.HandledNone).Return(ballistics.HandledSound),
		mat.MockSurfaceHandler.EXPECT().HandleSurface(gomock.Any(), ballistics.HandledSound).Return(ballistics.HandledDecal),
		global.EXPECT().HandleSurface(gomock.Any(), ballistics.HandledSound|ballistics.HandledDecal).
			DoAndReturn(func(info *ballistics.SurfaceInfo, _ ballistics.Handled) ballistics.Handled {
				if info.Kind != ballistics.SurfaceStop {
					t.Errorf("kind = %v, want stop", info.Kind)
				}
				if info.Point.Z != 1 {
					t.Errorf("point = %v, want the plate face", info.Point)
				}
				return ballistics.HandledNone
			}),
	)

	sim := newSim(t, ballistics.Options{
		Raycaster: plate(1, 2, "steel"),
		Materials: lookup,
		Handlers:  ballistics.Handlers{Surface: global},
	})
	sim.Enqueue(ballistics.SpawnRequest{Weapon: weapon, Params: params(), Direction: r3.Vec{Z: 1}})
	sim.Step(1.0 / 60)

	if got := sim.Stats().Totals.Surfaces; got != 1 {
		t.Errorf("Surfaces = %d, want 1", got)
	}
}

func TestDispatchIsolatesPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	weapon := mocks.NewMockSurfaceHandler(ctrl)
	mat := handlingMaterial{mocks.NewMockMaterial(ctrl), mocks.NewMockSurfaceHandler(ctrl)}
	global := mocks.NewMockSurfaceHandler(ctrl)
	lookup := mocks.NewMockMaterialLookup(ctrl)

	lookup.EXPECT().Lookup(gomock.Any()).Return(mat, true)
	mat.MockMaterial.EXPECT().Impact(gomock.Any()).Return(ballistics.ImpactOutcome{Kind: ballistics.ImpactStop})

	weapon.EXPECT().HandleSurface(gomock.Any(), gomock.Any()).
		DoAndReturn(func(*ballistics.SurfaceInfo, ballistics.Handled) ballistics.Handled {
			panic("weapon handler")
		})
	mat.MockSurfaceHandler.EXPECT().HandleSurface(gomock.Any(), ballistics.HandledNone).Return(ballistics.HandledParticles)
	global.EXPECT().HandleSurface(gomock.Any(), ballistics.HandledParticles).Return(ballistics.HandledNone)

	sim := newSim(t, ballistics.Options{
		Raycaster: plate(1, 2, "steel"),
		Materials: lookup,
		Handlers:  ballistics.Handlers{Surface: global},
	})
	sim.Enqueue(ballistics.SpawnRequest{Weapon: weapon, Params: params(), Direction: r3.Vec{Z: 1}})
	sim.Step(1.0 / 60)

	if got := sim.Stats().Totals.Recovered; got != 1 {
		t.Errorf("Recovered = %d, want 1", got)
	}
}

func TestDispatchReverseScheduleOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	mat := mocks.NewMockMaterial(ctrl)
	mat.EXPECT().Impact(gomock.Any()).Return(ballistics.ImpactOutcome{Kind: ballistics.ImpactStop}).Times(3)
	lookup := mocks.NewMockMaterialLookup(ctrl)
	lookup.EXPECT().Lookup(gomock.Any()).Return(mat, true).Times(3)

	var order []any
	global := mocks.NewMockSurfaceHandler(ctrl)
	global.EXPECT().HandleSurface(gomock.Any(), gomock.Any()).
		DoAndReturn(func(info *ballistics.SurfaceInfo, _ ballistics.Handled) ballistics.Handled {
			order = append(order, info.Bullet.Weapon)
			return ballistics.HandledNone
		}).Times(3)

	sim := newSim(t, ballistics.Options{
		Raycaster: plate(1, 2, "steel"),
		Materials: lookup,
		Handlers:  ballistics.Handlers{Surface: global},
	})
	for _, name := range []string{"first", "second", "third"} {
		sim.Enqueue(ballistics.SpawnRequest{Weapon: name, Params: params(), Direction: r3.Vec{Z: 1}})
	}
	sim.Step(1.0 / 60)

	want := []any{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("dispatched %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("dispatched %v, want %v", order, want)
		}
	}
}

func TestImpactsBeforeSurfacesAndStopFromHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	mat := mocks.NewMockMaterial(ctrl)
	mat.EXPECT().Impact(gomock.Any()).Return(ballistics.ImpactOutcome{Kind: ballistics.ImpactPenetrate})
	mat.EXPECT().EnergyLossPerUnit(gomock.Any()).Return(0.0)
	mat.EXPECT().Spread(gomock.Any()).Return(0.0).AnyTimes()
	lookup := mocks.NewMockMaterialLookup(ctrl)
	lookup.EXPECT().Lookup(gomock.Any()).Return(mat, true)

	var events []string
	impacts := mocks.NewMockImpactHandler(ctrl)
	impacts.EXPECT().HandleImpact(gomock.Any(), ballistics.HandledNone).
		DoAndReturn(func(info *ballistics.ImpactInfo, _ ballistics.Handled) ballistics.Handled {
			if !info.HasExit || math.Abs(info.ExitPoint.Z-1.1) > 1e-9 {
				t.Errorf("impact exit = %v (has %v), want z=1.1", info.ExitPoint, info.HasExit)
			}
			events = append(events, "impact")
			return ballistics.HandledDamage
		})
	surfaces := mocks.NewMockSurfaceHandler(ctrl)
	surfaces.EXPECT().HandleSurface(gomock.Any(), ballistics.HandledNone).
		DoAndReturn(func(info *ballistics.SurfaceInfo, _ ballistics.Handled) ballistics.Handled {
			events = append(events, info.Kind.String())
			info.Bullet.Stop()
			return ballistics.HandledNone
		})

	sim := newSim(t, ballistics.Options{
		Raycaster: plate(1, 1.1, "wood"),
		Materials: lookup,
		Handlers:  ballistics.Handlers{Impact: impacts, Surface: surfaces},
	})
	sim.Enqueue(ballistics.SpawnRequest{Params: params(), Direction: r3.Vec{Z: 1}})
	sim.Step(1.0 / 60)

	// Dispatched right after the entry pass, so the stop lands before the
	// exit is resolved and no exit event follows.
	if len(events) != 2 || events[0] != "impact" || events[1] != "entry" {
		t.Fatalf("events = %v, want [impact entry]", events)
	}
	if sim.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d, want the stopped bullet freed within the frame", sim.ActiveCount())
	}
	if st := sim.Stats(); st.Totals.Exits != 0 {
		t.Errorf("exits = %d, want 0", st.Totals.Exits)
	}
}
