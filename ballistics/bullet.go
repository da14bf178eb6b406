// Package ballistics is the batched bullet-update engine: slot arenas holding
// per-bullet hot and cold state, the per-batch integrate/gather/resolve pipeline,
// and the Simulation that drives batches through fixed-size sub-steps.
package ballistics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/collision"
)

// OpenAir is the energy-loss-per-unit sentinel for a bullet outside any material.
const OpenAir = -1.0

// NoSlot marks "no bullet" in slot-indexed buffers.
const NoSlot = -1

// stoppedSentinel is written to lifetime and flight time by stop.
const stoppedSentinel = -1.0

// BulletParams holds the immutable ballistic parameters of a round.
// Params are shared between all bullets fired with them; call Prepare after
// changing fields.
type BulletParams struct {
	Name            string  `yaml:"name"`
	Mass            float64 `yaml:"mass"`             // kg
	Diameter        float64 `yaml:"diameter"`         // m
	Speed           float64 `yaml:"speed"`            // muzzle speed, m/s
	Lifetime        float64 `yaml:"lifetime"`         // seconds
	Spin            float64 `yaml:"spin"`             // rad/s around the flight axis
	DragCoefficient float64 `yaml:"drag_coefficient"` // Cd
	HitMask         uint32  `yaml:"hit_mask"`

	// DragFactor is 0.5*Cd*A, multiplied by air density at runtime.
	DragFactor float64 `yaml:"-"`
	// SpinFactor is the lateral drift coefficient per unit viscosity.
	SpinFactor float64 `yaml:"-"`
}

// Prepare computes derived coefficients and fills defaults.
func (p *BulletParams) Prepare() {
	if p.HitMask == 0 {
		p.HitMask = math.MaxUint32
	}
	radius := p.Diameter / 2
	area := math.Pi * radius * radius
	p.DragFactor = 0.5 * p.DragCoefficient * area
	if p.Mass > 0 {
		p.SpinFactor = p.Spin * p.Diameter / p.Mass
	} else {
		p.SpinFactor = 0
	}
}

// KineticEnergy returns the kinetic energy of the round at the given speed.
func (p *BulletParams) KineticEnergy(speed float64) float64 {
	return 0.5 * p.Mass * speed * speed
}

// Visual is the handle of whatever represents a bullet on screen.
// UpdatePose is called at most once per frame; Destroy exactly once before
// the bullet's slot is recycled.
type Visual interface {
	UpdatePose(position, velocity r3.Vec)
	Destroy()
}

// SpawnRequest asks the simulation to fire one bullet.
type SpawnRequest struct {
	// Weapon is the owning weapon. If it implements ImpactHandler or
	// SurfaceHandler it receives this bullet's interactions first.
	Weapon    any
	Origin    r3.Vec
	Direction r3.Vec
	Params    *BulletParams
	Visual    Visual
}

// HotState is the plain numeric per-bullet state mutated by parallel tasks.
type HotState struct {
	Position          r3.Vec
	Velocity          r3.Vec
	Lifetime          float64 // remaining seconds
	FlightTime        float64 // seconds left to integrate in the current sub-step
	Mass              float64
	Drag              float64
	Spin              float64
	Distance          float64 // accumulated, physical units
	EnergyLossPerUnit float64 // < 0 in open air
	Mask              uint32
}

// InsideMaterial reports whether the bullet is travelling through a material.
func (h *HotState) InsideMaterial() bool {
	return h.EnergyLossPerUnit >= 0
}

// Stopped reports whether the bullet was stopped or its lifetime ran out.
func (h *HotState) Stopped() bool {
	return h.Lifetime < 0 && h.FlightTime < 0
}

// Expired reports whether the bullet has no lifetime left.
func (h *HotState) Expired() bool {
	return h.Lifetime <= 0
}

// Speed returns the velocity magnitude.
func (h *HotState) Speed() float64 {
	return r3.Norm(h.Velocity)
}

// KineticEnergy returns 0.5*m*v².
func (h *HotState) KineticEnergy() float64 {
	return 0.5 * h.Mass * r3.Norm2(h.Velocity)
}

// stop cancels the bullet. Stopping twice is a no-op.
func (h *HotState) stop() {
	if h.Stopped() {
		return
	}
	h.Lifetime = stoppedSentinel
	h.FlightTime = stoppedSentinel
}

// ColdState is the reference-bearing per-bullet state, only touched by the
// single-threaded gather and dispatch phases.
type ColdState struct {
	Weapon any
	Params *BulletParams
	Visual Visual

	// Material currently occupied, nil in open air.
	Material   Material
	Collider   collision.Collider
	ExitPoint  r3.Vec
	ExitNormal r3.Vec
	HasExit    bool

	// Last exit, used to drop the collision backend's re-hit of the exit face.
	LastExitCollider collision.Collider
	LastExitPoint    r3.Vec

	stopRequested bool
}

// leaveMaterial clears material occupancy.
func (c *ColdState) leaveMaterial() {
	c.Material = nil
	c.Collider = nil
	c.HasExit = false
	c.ExitPoint = r3.Vec{}
	c.ExitNormal = r3.Vec{}
}
