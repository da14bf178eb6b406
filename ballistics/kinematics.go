package ballistics

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/collision"
)

// fallbackAxis is the query direction for bullets without a usable velocity.
var fallbackAxis = r3.Vec{Z: 1}

var upAxis = r3.Vec{Y: 1}

// direction returns the unit vector of v, or fallbackAxis when v is zero or
// not finite.
func direction(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return fallbackAxis
	}
	return r3.Scale(1/n, v)
}

// acceleration sums gravity, drag and spin drift for velocity v.
func acceleration(h *HotState, v r3.Vec, env *Environment) r3.Vec {
	var a r3.Vec
	if env.GravityEnabled {
		a = env.Gravity
	}
	if env.AirResistanceEnabled && h.Drag > 0 && h.Mass > 0 {
		rel := r3.Sub(v, env.Wind)
		speed := r3.Norm(rel)
		a = r3.Add(a, r3.Scale(-env.AirDensity*h.Drag*speed/h.Mass, rel))
	}
	if env.SpinEnabled && h.Spin != 0 {
		// Lateral drift, perpendicular to flight and the up axis
		a = r3.Add(a, r3.Scale(h.Spin*env.AirViscosity, r3.Cross(v, upAxis)))
	}
	return a
}

// flyVelocity integrates velocity over t seconds of open-air flight (Heun)
// and returns the new velocity and the physical displacement.
func flyVelocity(h *HotState, t float64, env *Environment) (r3.Vec, r3.Vec) {
	v0 := h.Velocity
	a0 := acceleration(h, v0, env)
	if a0 == (r3.Vec{}) {
		return v0, r3.Scale(t, v0)
	}
	v1 := r3.Add(v0, r3.Scale(t, a0))
	a1 := acceleration(h, v1, env)
	v1 = r3.Add(v0, r3.Scale(t/2, r3.Add(a0, a1)))
	disp := r3.Scale(t/2, r3.Add(v0, v1))
	return v1, disp
}

// depletion moves a bullet of the given mass and speed through a material
// absorbing loss energy per unit distance for up to t seconds. It returns the
// distance covered, the final speed and the time actually spent moving.
func depletion(mass, speed, loss, t float64) (dist, speedAfter, used float64) {
	if loss <= 0 || mass <= 0 {
		return speed * t, speed, t
	}
	decel := loss / mass
	tStop := speed / decel
	if t >= tStop {
		return speed * speed / (2 * decel), 0, tStop
	}
	return speed*t - 0.5*decel*t*t, speed - decel*t, t
}

// depleteOver covers dist through a material and returns the time used and
// the speed left. ok is false when the energy runs out first.
func depleteOver(mass, speed, loss, dist float64) (used, speedAfter float64, ok bool) {
	if loss <= 0 || mass <= 0 {
		if speed <= 0 {
			return 0, 0, false
		}
		return dist / speed, speed, true
	}
	energy := 0.5 * mass * speed * speed
	remaining := energy - loss*dist
	decel := loss / mass
	if remaining <= 0 {
		return speed / decel, 0, false
	}
	speedAfter = math.Sqrt(2 * remaining / mass)
	return (speed - speedAfter) / decel, speedAfter, true
}

// projectedTravel returns the physical distance the bullet covers in t seconds.
func projectedTravel(h *HotState, t float64, env *Environment) float64 {
	if t <= 0 {
		return 0
	}
	speed := h.Speed()
	if h.InsideMaterial() {
		d, _, _ := depletion(h.Mass, speed, h.EnergyLossPerUnit, t)
		return d
	}
	_, disp := flyVelocity(h, t, env)
	return r3.Norm(disp)
}

// buildQuery makes the collision query covering the bullet's remaining
// flight time in this sub-step.
func buildQuery(h *HotState, env *Environment) collision.Query {
	return collision.Query{
		Origin:      h.Position,
		Direction:   direction(h.Velocity),
		Mask:        h.Mask,
		MaxDistance: projectedTravel(h, h.FlightTime, env) * env.Scale,
	}
}

// advance integrates a bullet freely over t seconds.
func advance(h *HotState, t float64, env *Environment) {
	if t <= 0 {
		return
	}
	if h.InsideMaterial() {
		speed := h.Speed()
		dir := direction(h.Velocity)
		dist, speedAfter, _ := depletion(h.Mass, speed, h.EnergyLossPerUnit, t)
		h.Position = r3.Add(h.Position, r3.Scale(dist*env.Scale, dir))
		h.Distance += dist
		h.Velocity = r3.Scale(speedAfter, dir)
		if speedAfter <= 0 {
			// Spent inside the material
			h.stop()
		}
		return
	}

	v1, disp := flyVelocity(h, t, env)
	h.Position = r3.Add(h.Position, r3.Scale(env.Scale, disp))
	h.Distance += r3.Norm(disp)
	h.Velocity = v1
}

// reflect mirrors d about the plane with normal n.
func reflect(d, n r3.Vec) r3.Vec {
	return r3.Sub(d, r3.Scale(2*r3.Dot(d, n), n))
}

// randFloat returns a uniform float in [0, 1).
func randFloat(src *rand.PCG) float64 {
	return float64(src.Uint64()>>11) * 0x1p-53
}

// spreadDirection tilts the unit vector dir by a random angle of up to
// spread radians around a random perpendicular axis.
func spreadDirection(dir r3.Vec, spread float64, src *rand.PCG) r3.Vec {
	if spread <= 0 {
		return dir
	}

	helper := upAxis
	if math.Abs(dir.Y) > 0.99 {
		helper = r3.Vec{X: 1}
	}
	b1 := r3.Unit(r3.Cross(dir, helper))
	b2 := r3.Cross(dir, b1)

	phi := 2 * math.Pi * randFloat(src)
	axis := r3.Add(r3.Scale(math.Cos(phi), b1), r3.Scale(math.Sin(phi), b2))
	theta := spread * math.Sqrt(randFloat(src))

	return r3.Unit(r3.NewRotation(theta, axis).Rotate(dir))
}

// SpreadDirection returns dir (normalized) tilted by a random angle of up to
// cone radians, drawn from src.
func SpreadDirection(dir r3.Vec, cone float64, src *rand.PCG) r3.Vec {
	return spreadDirection(r3.Unit(dir), cone, src)
}
