package ballistics

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/collision"
)

func TestEnvironmentNormalized(t *testing.T) {
	tests := []struct {
		name        string
		env         Environment
		wantGravity r3.Vec
	}{
		{name: "zero stays forceless", env: Environment{}, wantGravity: r3.Vec{}},
		{name: "enabled without vector", env: Environment{GravityEnabled: true}, wantGravity: r3.Vec{Y: -9.81}},
		{name: "custom vector kept", env: Environment{GravityEnabled: true, Gravity: r3.Vec{Y: -1.62}}, wantGravity: r3.Vec{Y: -1.62}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.env.normalized()
			if got.Gravity != tc.wantGravity {
				t.Errorf("Gravity = %v, want %v", got.Gravity, tc.wantGravity)
			}
			if got.MaxDeltaTime != 1.0/60 || got.Scale != 1 || got.ContactEpsilon != 1e-3 {
				t.Errorf("defaults not filled: %+v", got)
			}
		})
	}
}

func TestEnabledGravityWithoutVectorPullsDown(t *testing.T) {
	b := newTestBatch(t, collision.NewScene(), nil)
	b.SetEnvironment(Environment{GravityEnabled: true})
	slot, _ := b.Insert(SpawnRequest{Params: testParams(), Direction: r3.Vec{Z: 1}})

	runSubStep(t, b, 1.0/60, true)

	if v := b.Arena().Hot(slot).Velocity; v.Y >= 0 {
		t.Errorf("velocity %v, want a downward component", v)
	}
}
