package main

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/ballistics"
	"github.com/pthm-cable/salvo/collision"
	"github.com/pthm-cable/salvo/config"
	"github.com/pthm-cable/salvo/jobs"
	"github.com/pthm-cable/salvo/material"
)

const (
	slabFront     = 1.0   // m from the muzzle
	slabThickness = 100.0 // deep enough that no round exits
	slabSurface   = collision.Surface("calibration")
)

// Eval is one objective evaluation.
type Eval struct {
	Eval       int     `csv:"eval"`
	EnergyLoss float64 `csv:"energy_loss"`
	Depth      float64 `csv:"depth"`
	Error      float64 `csv:"error"`
}

// Calibrator searches for the energy loss per unit that stops a weapon's
// round at a target depth in a slab of one material.
type Calibrator struct {
	env    ballistics.Environment
	params *ballistics.BulletParams
	base   material.Params
	pool   *jobs.Pool

	Evals []Eval
}

// NewCalibrator prepares a calibration of materialName against weaponName.
func NewCalibrator(cfg *config.Config, materialName, weaponName string, pool *jobs.Pool) (*Calibrator, error) {
	base, ok := cfg.Materials[materialName]
	if !ok {
		return nil, fmt.Errorf("unknown material %q", materialName)
	}
	if base.Stop || base.Ignore {
		return nil, fmt.Errorf("material %q does not take penetration", materialName)
	}
	params, ok := cfg.Weapon(weaponName)
	if !ok {
		return nil, fmt.Errorf("unknown weapon %q", weaponName)
	}

	// Spread and ricochet would make the depth noisy or unreachable.
	base.Spread = 0
	base.RicochetAngle = 0
	base.MinPenetrationEnergy = 0

	return &Calibrator{env: cfg.Env(), params: params, base: base, pool: pool}, nil
}

// Depth fires one round straight into the slab and returns how far past
// the front face it came to rest.
func (c *Calibrator) Depth(energyLoss float64) (float64, error) {
	mat := c.base
	mat.EnergyLoss = energyLoss
	reg := material.NewRegistry()
	reg.Register(slabSurface, material.NewStandard(string(slabSurface), mat))

	sim, err := ballistics.New(ballistics.Options{
		BatchCapacity: 1,
		Pool:          c.pool,
		Raycaster: collision.NewScene(collision.NewBox(
			r3.Vec{X: -50, Y: -50, Z: slabFront},
			r3.Vec{X: 50, Y: 50, Z: slabFront + slabThickness},
			0, slabSurface,
		)),
		Materials:   reg,
		Environment: c.env,
	})
	if err != nil {
		return 0, err
	}
	defer sim.Close()

	p := &restProbe{}
	if err := sim.Enqueue(ballistics.SpawnRequest{Direction: r3.Vec{Z: 1}, Params: c.params, Visual: p}); err != nil {
		return 0, err
	}

	// One sub-step per frame so the resting pose is pushed before release.
	dt := sim.Environment().MaxDeltaTime
	frames := int(math.Ceil(c.params.Lifetime/dt)) + 2
	for range frames {
		sim.Step(dt)
		if p.destroyed {
			break
		}
	}
	if !p.destroyed {
		return 0, errors.New("round did not come to rest")
	}
	return p.position.Z - slabFront, nil
}

// Run minimizes the squared relative depth error over log(energy loss),
// starting from the material's current loss. It returns the best loss found.
func (c *Calibrator) Run(target float64, maxEvals int) (float64, error) {
	if target <= 0 {
		return 0, errors.New("target depth must be positive")
	}
	start := c.base.EnergyLoss
	if start <= 0 {
		start = c.params.KineticEnergy(c.params.Speed) / target
	}

	best, bestErr := start, math.Inf(1)
	var evalErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			loss := math.Exp(x[0])
			depth, err := c.Depth(loss)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			rel := (depth - target) / target
			f := rel * rel
			c.Evals = append(c.Evals, Eval{Eval: len(c.Evals) + 1, EnergyLoss: loss, Depth: depth, Error: rel})
			if f < bestErr {
				best, bestErr = loss, f
			}
			return f
		},
	}

	settings := &optimize.Settings{FuncEvaluations: maxEvals}
	method := &optimize.NelderMead{SimplexSize: 0.5}
	if _, err := optimize.Minimize(problem, []float64{math.Log(start)}, settings, method); err != nil && bestErr == math.Inf(1) {
		return 0, fmt.Errorf("calibration failed: %w", errors.Join(err, evalErr))
	}
	return best, nil
}

// restProbe records the last pose pushed to a round.
type restProbe struct {
	position  r3.Vec
	destroyed bool
}

func (p *restProbe) UpdatePose(position, _ r3.Vec) { p.position = position }
func (p *restProbe) Destroy()                      { p.destroyed = true }
