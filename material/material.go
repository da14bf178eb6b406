// Package material provides the surface → ballistic material lookup used by
// the simulation and a configurable standard material.
package material

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/ballistics"
)

// Params configures a Standard material.
type Params struct {
	// RicochetAngle is the grazing angle in degrees, measured from the
	// surface plane, below which rounds glance off.
	RicochetAngle float64 `yaml:"ricochet_angle"`
	RicochetSpeed float64 `yaml:"ricochet_speed"` // speed factor kept after a ricochet
	// MinPenetrationEnergy is the energy in J a round needs to enter;
	// weaker rounds are stopped at the surface.
	MinPenetrationEnergy float64 `yaml:"min_penetration_energy"`
	EnergyLoss           float64 `yaml:"energy_loss"` // J per meter travelled inside
	Spread               float64 `yaml:"spread"`      // radians
	Stop                 bool    `yaml:"stop"`        // absorbs every round at the surface
	Ignore               bool    `yaml:"ignore"`      // rounds pass as if it were not there
}

// Standard is a homogeneous material driven by Params.
type Standard struct {
	Name   string
	Params Params

	ricochetSin float64
}

// NewStandard creates a material.
func NewStandard(name string, p Params) *Standard {
	return &Standard{
		Name:        name,
		Params:      p,
		ricochetSin: math.Sin(p.RicochetAngle * math.Pi / 180),
	}
}

// Impact implements ballistics.Material.
func (m *Standard) Impact(ctx *ballistics.ImpactContext) ballistics.ImpactOutcome {
	switch {
	case m.Params.Ignore:
		return ballistics.ImpactOutcome{Kind: ballistics.ImpactIgnore}
	case m.Params.Stop:
		return ballistics.ImpactOutcome{Kind: ballistics.ImpactStop}
	}

	if m.ricochetSin > 0 && grazingSin(ctx.Velocity, ctx.Normal) < m.ricochetSin {
		return ballistics.ImpactOutcome{Kind: ballistics.ImpactRicochet, SpeedFactor: m.Params.RicochetSpeed}
	}
	if ctx.Energy < m.Params.MinPenetrationEnergy {
		return ballistics.ImpactOutcome{Kind: ballistics.ImpactStop}
	}
	return ballistics.ImpactOutcome{Kind: ballistics.ImpactPenetrate}
}

// Spread implements ballistics.Material.
func (m *Standard) Spread(*ballistics.ImpactContext) float64 {
	return m.Params.Spread
}

// EnergyLossPerUnit implements ballistics.Material.
func (m *Standard) EnergyLossPerUnit(*ballistics.ImpactContext) float64 {
	return m.Params.EnergyLoss
}

// grazingSin is the sine of the angle between v and the plane with normal n.
func grazingSin(v, n r3.Vec) float64 {
	speed := r3.Norm(v)
	nn := r3.Norm(n)
	if speed == 0 || nn == 0 {
		return 1
	}
	return math.Abs(r3.Dot(v, n)) / (speed * nn)
}
