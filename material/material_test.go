package material

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/ballistics"
)

func TestStandardImpact(t *testing.T) {
	steel := Params{RicochetAngle: 20, RicochetSpeed: 0.6, MinPenetrationEnergy: 1000, EnergyLoss: 50000}

	tests := []struct {
		name     string
		params   Params
		velocity r3.Vec
		energy   float64
		want     ballistics.ImpactKind
	}{
		{name: "head on penetrates", params: steel, velocity: r3.Vec{Z: 800}, energy: 3000, want: ballistics.ImpactPenetrate},
		{name: "head on too weak", params: steel, velocity: r3.Vec{Z: 100}, energy: 40, want: ballistics.ImpactStop},
		{name: "grazing ricochets", params: steel, velocity: r3.Vec{X: 800, Z: 100}, energy: 3000, want: ballistics.ImpactRicochet},
		{name: "ignore wins", params: Params{Ignore: true, Stop: true}, velocity: r3.Vec{Z: 1}, want: ballistics.ImpactIgnore},
		{name: "stop", params: Params{Stop: true}, velocity: r3.Vec{Z: 1}, energy: 1e6, want: ballistics.ImpactStop},
		{name: "no ricochet angle", params: Params{}, velocity: r3.Vec{X: 1000, Z: 1}, energy: 10, want: ballistics.ImpactPenetrate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewStandard(tc.name, tc.params)
			got := m.Impact(&ballistics.ImpactContext{
				Velocity: tc.velocity,
				Normal:   r3.Vec{Z: -1},
				Energy:   tc.energy,
			})
			if got.Kind != tc.want {
				t.Errorf("Impact = %v, want %v", got.Kind, tc.want)
			}
			if got.Kind == ballistics.ImpactRicochet && got.SpeedFactor != tc.params.RicochetSpeed {
				t.Errorf("SpeedFactor = %v, want %v", got.SpeedFactor, tc.params.RicochetSpeed)
			}
		})
	}
}

func TestRegistryDefault(t *testing.T) {
	r := NewRegistry()
	wood := NewStandard("wood", Params{EnergyLoss: 2000})
	r.Register("wood", wood)

	if m, ok := r.Lookup("wood"); !ok || m != wood {
		t.Errorf("Lookup(wood) = %v, %v", m, ok)
	}
	if _, ok := r.Lookup("stone"); ok {
		t.Error("unmapped surface found without a default")
	}

	fallback := NewStandard("default", Params{})
	r.SetDefault(fallback)
	if m, ok := r.Lookup("stone"); !ok || m != fallback {
		t.Errorf("Lookup(stone) = %v, %v, want default", m, ok)
	}

	r.Register("wood", nil)
	if m, _ := r.Lookup("wood"); m != fallback {
		t.Error("removed mapping should fall back to default")
	}
	if got := r.Surfaces(); len(got) != 0 {
		t.Errorf("Surfaces = %v, want none", got)
	}
}
