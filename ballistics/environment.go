package ballistics

import "gonum.org/v1/gonum/spatial/r3"

// Environment holds the world-wide physical settings.
type Environment struct {
	GravityEnabled bool
	Gravity        r3.Vec

	AirResistanceEnabled bool
	AirDensity           float64
	Wind                 r3.Vec

	SpinEnabled  bool
	AirViscosity float64

	// MaxDeltaTime bounds the length of one sub-step.
	MaxDeltaTime float64
	// Scale converts physical distance to scene distance.
	Scale float64

	// SelfHitEpsilon is how close to a just-computed exit point a re-hit of
	// the same collider must be to be discarded.
	SelfHitEpsilon float64
	// SurfaceOffset pushes a bullet past a surface it interacted with.
	SurfaceOffset float64
	// PenetrationProbe caps the exit search length through a struck collider.
	PenetrationProbe float64
	// ContactEpsilon is the largest gap between an exit and the next entry
	// still resolved in the same pass.
	ContactEpsilon float64
}

// DefaultEnvironment returns the default settings.
func DefaultEnvironment() Environment {
	return Environment{
		GravityEnabled:   true,
		Gravity:          r3.Vec{Y: -9.81},
		AirDensity:       1.22,
		AirViscosity:     1.48e-5,
		MaxDeltaTime:     1.0 / 60.0,
		Scale:            1,
		SelfHitEpsilon:   1e-3,
		SurfaceOffset:    1e-4,
		PenetrationProbe: 10,
		ContactEpsilon:   1e-3,
	}
}

// normalized fills zero fields with defaults. Forces stay off unless
// enabled, so a zero Environment flies in a vacuum without gravity.
func (e Environment) normalized() Environment {
	d := DefaultEnvironment()
	if e.GravityEnabled && e.Gravity == (r3.Vec{}) {
		e.Gravity = d.Gravity
	}
	if e.MaxDeltaTime <= 0 {
		e.MaxDeltaTime = d.MaxDeltaTime
	}
	if e.Scale <= 0 {
		e.Scale = d.Scale
	}
	if e.AirDensity <= 0 {
		e.AirDensity = d.AirDensity
	}
	if e.AirViscosity <= 0 {
		e.AirViscosity = d.AirViscosity
	}
	if e.SelfHitEpsilon <= 0 {
		e.SelfHitEpsilon = d.SelfHitEpsilon
	}
	if e.SurfaceOffset <= 0 {
		e.SurfaceOffset = d.SurfaceOffset
	}
	if e.PenetrationProbe <= 0 {
		e.PenetrationProbe = d.PenetrationProbe
	}
	if e.ContactEpsilon <= 0 {
		e.ContactEpsilon = d.ContactEpsilon
	}
	return e
}
